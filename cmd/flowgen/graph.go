package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/workflow"
)

func graphCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph <workflow.json|workflow.dot>",
		Short: "Print a human-readable summary of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			w, err := readWorkflowFile(args[0])
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "dot":
				fmt.Print(workflow.MarshalDOT(w))
			case "text", "":
				fmt.Print(renderText(w))
			default:
				return fmt.Errorf("unknown format %q: use text or dot", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or dot")
	return cmd
}

// truncate shortens s to maxLen chars, appending "…" if needed.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}

// label picks the human-facing name of a node referenced by id or name.
func label(w *workflow.Workflow, ref string) string {
	if n := w.NodeByID(ref); n != nil && n.Name != "" {
		return n.Name
	}
	return ref
}

// renderText produces the human-readable text summary.
func renderText(w *workflow.Workflow) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Workflow: %s  (%d nodes, %d edges)\n", w.Name, len(w.Nodes), w.EdgeCount())

	// Calculate column widths.
	maxNameLen := 4 // minimum "node"
	for _, n := range w.Nodes {
		if len(n.Name) > maxNameLen {
			maxNameLen = len(n.Name)
		}
	}

	fmt.Fprintf(&sb, "\nNodes:\n")
	for _, n := range w.Nodes {
		// Sort parameter keys for determinism.
		keys := make([]string, 0, len(n.Parameters))
		for k := range n.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var paramParts []string
		for _, k := range keys {
			v := truncate(fmt.Sprintf("%v", n.Parameters[k]), 60)
			paramParts = append(paramParts, k+"="+v)
		}
		fmt.Fprintf(&sb, "  %-*s  %-36s  %s\n", maxNameLen, n.Name, n.Type, strings.Join(paramParts, " "))
	}

	fmt.Fprintf(&sb, "\nEdges:\n")
	srcs := make([]string, 0, len(w.Connections))
	for src := range w.Connections {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)

	maxFromLen := 4
	for _, src := range srcs {
		if l := len(label(w, src)); l > maxFromLen {
			maxFromLen = l
		}
	}
	for _, src := range srcs {
		for slot, conns := range w.Connections[src] {
			for _, conn := range conns {
				if slot > 0 || conn.Index > 0 {
					fmt.Fprintf(&sb, "  %-*s  →  %s  [out %d, in %d]\n",
						maxFromLen, label(w, src), label(w, conn.Node), slot, conn.Index)
				} else {
					fmt.Fprintf(&sb, "  %-*s  →  %s\n", maxFromLen, label(w, src), label(w, conn.Node))
				}
			}
		}
	}

	return sb.String()
}
