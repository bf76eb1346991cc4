// Package builder is the top-level facade: free-form text in, a validated
// workflow graph out. It chains the extractor, the synthesizer, and the
// repairer behind one engine so every caller gets the same pipeline.
package builder

import (
	"fmt"
	"log/slog"

	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/catalog"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/intent"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/repair"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/synth"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/workflow"
)

// DefaultName is used when the caller does not name the workflow.
const DefaultName = "Generated Workflow"

// Engine runs the text-to-workflow pipeline against one type catalog.
type Engine struct {
	cat *catalog.Catalog
}

// New builds an engine over the given catalog.
func New(cat *catalog.Catalog) (*Engine, error) {
	if cat == nil {
		return nil, fmt.Errorf("type catalog must not be nil")
	}
	return &Engine{cat: cat}, nil
}

// GenerateResult bundles every stage's output of one Generate call.
type GenerateResult struct {
	Workflow *workflow.Workflow `json:"workflow"`
	Intent   *intent.Intent     `json:"intent"`
	Repair   *repair.Result     `json:"repair"`
}

// Extract parses a description into a structured intent.
func (e *Engine) Extract(text string) *intent.Intent {
	return intent.Extract(text)
}

// Synthesize builds a graph from an already-extracted intent.
func (e *Engine) Synthesize(it *intent.Intent, name string) (*workflow.Workflow, error) {
	if name == "" {
		name = DefaultName
	}
	return synth.Synthesize(e.cat, it, name)
}

// ValidateAndRepair runs the full validation-and-repair cycle on a graph.
func (e *Engine) ValidateAndRepair(w *workflow.Workflow, opts repair.Options) (*repair.Result, error) {
	return repair.Repair(e.cat, w, opts)
}

// Generate runs the whole pipeline: extract, synthesize, then repair with
// fixes applied. The returned workflow is the repaired graph; the raw
// synthesized graph is available as Repair.Original.
func (e *Engine) Generate(text, name string) (*GenerateResult, error) {
	it := e.Extract(text)
	slog.Debug("intent extracted",
		"triggers", len(it.Triggers),
		"actions", len(it.Actions),
		"confidence", it.OverallConfidence)

	w, err := e.Synthesize(it, name)
	if err != nil {
		return nil, fmt.Errorf("synthesize workflow: %w", err)
	}
	slog.Debug("workflow synthesized", "nodes", len(w.Nodes), "edges", w.EdgeCount())

	res, err := e.ValidateAndRepair(w, repair.Options{AutoFix: true})
	if err != nil {
		return nil, fmt.Errorf("validate workflow: %w", err)
	}
	slog.Debug("workflow validated",
		"fixed", len(res.Fixed),
		"errors", len(res.ValidationErrors()),
		"warnings", len(res.Warnings()))

	return &GenerateResult{Workflow: res.Workflow, Intent: it, Repair: res}, nil
}
