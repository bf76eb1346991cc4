package workflow

// DefaultSettings returns the workflow-level execution settings applied to
// every synthesized graph and filled in for repaired ones. Opaque to this
// engine; the execution backend interprets them.
func DefaultSettings() map[string]any {
	return map[string]any{
		"executionOrder":       "v1",
		"executionTimeout":     3600,
		"timezone":             "America/New_York",
		"saveManualExecutions": true,
	}
}
