package synth

import "github.com/leonardsellem/n8n-mcp-server-sub007/pkg/catalog"

// ShouldConnect decides whether a node of type a should be auto-wired into a
// node of type b. This single rule is the entire inference policy, shared by
// synthesis and by editors inserting nodes into existing graphs: a must
// produce output, b must accept input, and b must not be a trigger (a
// trigger is always an entry point, never a downstream step).
func ShouldConnect(a, b catalog.Descriptor) bool {
	return a.Outputs > 0 && b.Inputs > 0 && !b.Trigger
}
