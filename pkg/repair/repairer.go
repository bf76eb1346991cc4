package repair

import (
	"fmt"
	"log/slog"

	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/catalog"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/workflow"
)

// Options controls a repair call.
type Options struct {
	// AutoFix applies repairs; with it off, passes only report what they
	// would fix.
	AutoFix bool
	// PreserveComplexity additionally normalizes node positions onto a
	// deterministic grid.
	PreserveComplexity bool
}

// Result is the outcome of one repair call. Workflow is a fully independent
// repaired copy; Original echoes the caller's graph untouched for diffing.
type Result struct {
	Workflow   *workflow.Workflow `json:"workflow"`
	Original   *workflow.Workflow `json:"original"`
	Found      []Issue            `json:"issuesFound"`
	Fixed      []Issue            `json:"issuesFixed"`
	Validation []Issue            `json:"validation"`
	Success    bool               `json:"success"`
}

// ValidationErrors returns the error-class findings of the final validation.
func (r *Result) ValidationErrors() []Issue {
	var out []Issue
	for _, i := range r.Validation {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Warnings returns the warning-class findings of the final validation.
func (r *Result) Warnings() []Issue {
	var out []Issue
	for _, i := range r.Validation {
		if i.Severity == SeverityWarning {
			out = append(out, i)
		}
	}
	return out
}

// session carries the mutable state threaded through the repair passes.
type session struct {
	cat     *catalog.Catalog
	w       *workflow.Workflow
	autoFix bool
	// renames maps node IDs rewritten by the identity pass to their
	// replacements, for the connection pass.
	renames map[string]string
}

// pass is one ordered repair step. Each pass observes the already-repaired
// state left by earlier passes and returns what it found and what it fixed.
type pass struct {
	name string
	run  func(*session) (found, fixed []Issue)
}

// Repair validates a workflow graph and, per opts, repairs it. The caller's
// graph is never mutated: all passes operate on an internal deep copy.
//
// Repair is idempotent: running it twice with AutoFix produces the same
// graph the second time with nothing left to fix.
func Repair(cat *catalog.Catalog, w *workflow.Workflow, opts Options) (*Result, error) {
	if cat == nil {
		return nil, fmt.Errorf("type catalog must not be nil")
	}
	if w == nil {
		return nil, fmt.Errorf("workflow must not be nil")
	}

	working, err := w.Clone()
	if err != nil {
		return nil, fmt.Errorf("snapshot workflow: %w", err)
	}

	s := &session{
		cat:     cat,
		w:       working,
		autoFix: opts.AutoFix,
		renames: make(map[string]string),
	}

	passes := []pass{
		{"node identity", passIdentity},
		{"parameter completeness", passParameters},
		{"connection rewrite", passConnections},
	}
	if opts.PreserveComplexity {
		passes = append(passes, pass{"positioning", passPositions})
	}
	passes = append(passes,
		pass{"type validity", passTypes},
		pass{"settings", passSettings},
	)

	result := &Result{Workflow: working, Original: w}
	for _, p := range passes {
		found, fixed := p.run(s)
		if len(found) > 0 {
			slog.Debug("repair pass", "pass", p.name, "found", len(found), "fixed", len(fixed))
		}
		result.Found = append(result.Found, found...)
		result.Fixed = append(result.Fixed, fixed...)
	}

	// Final validation always runs, read-only, against the repaired state.
	result.Validation = validate(s.cat, s.w)

	// A no-op repair of an already-valid graph is a success; so is any call
	// that actually fixed something.
	result.Success = len(result.Fixed) > 0 || len(result.ValidationErrors()) == 0
	return result, nil
}
