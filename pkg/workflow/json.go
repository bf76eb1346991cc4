package workflow

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Marshal renders the workflow in its JSON wire shape.
func Marshal(w *Workflow) ([]byte, error) {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal workflow: %w", err)
	}
	return data, nil
}

// Unmarshal parses a workflow from its JSON wire shape.
func Unmarshal(data []byte) (*Workflow, error) {
	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("unmarshal workflow: %w", err)
	}
	return &w, nil
}

// Clone returns a deep, completely independent copy of the workflow.
// Mutating the copy never affects the original; the repairer relies on this
// to echo the caller's graph untouched.
func (w *Workflow) Clone() (*Workflow, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("clone workflow: %w", err)
	}
	var out Workflow
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("clone workflow: %w", err)
	}
	return &out, nil
}
