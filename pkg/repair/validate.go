package repair

import (
	"fmt"
	"sort"

	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/catalog"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/workflow"
)

// validate re-derives the full structural invariant set against a graph and
// reports everything still violated. Read-only; runs whether or not any
// repairs were applied.
//
// Dangling references are error-class; unreachable nodes are warning-class —
// a disconnected scratch node is legal, a broken edge is not.
func validate(cat *catalog.Catalog, w *workflow.Workflow) []Issue {
	var issues []Issue

	if w.Name == "" {
		issues = append(issues, diagnostic(CodeNameMissing, SeverityError, "",
			"workflow has no name"))
	}
	if len(w.Nodes) == 0 {
		issues = append(issues, diagnostic(CodeNoNodes, SeverityError, "",
			"workflow has no nodes"))
		return issues
	}

	byID := make(map[string]*workflow.Node, len(w.Nodes))
	byName := make(map[string]*workflow.Node, len(w.Nodes))
	for i := range w.Nodes {
		node := &w.Nodes[i]

		if !workflow.ValidID(node.ID) {
			issues = append(issues, diagnostic(CodeNodeIDInvalid, SeverityError, node.Name,
				fmt.Sprintf("missing or invalid node id %q", node.ID)))
		} else if _, dup := byID[node.ID]; dup {
			issues = append(issues, diagnostic(CodeNodeIDDuplicate, SeverityError, node.Name,
				fmt.Sprintf("node id %q is used by more than one node", node.ID)))
		}
		byID[node.ID] = node
		if node.Name != "" {
			byName[node.Name] = node
		}

		switch desc, known := cat.Resolve(node.Type); {
		case node.Type == "":
			issues = append(issues, diagnostic(CodeTypeMissing, SeverityError, node.Name,
				"node has no type"))
		case !known:
			issues = append(issues, diagnostic(CodeTypeUnknown, SeverityWarning, node.Name,
				fmt.Sprintf("type %q does not resolve in the catalog", node.Type)))
		default:
			for _, p := range desc.RequiredParams {
				if v, ok := node.Parameters[p]; !ok || v == "" {
					issues = append(issues, diagnostic(CodeParamsMissing, SeverityError, node.Name,
						fmt.Sprintf("required parameter %q is missing or empty", p)))
				}
			}
		}

		if !workflow.ValidPosition(node.Position) {
			issues = append(issues, diagnostic(CodePositionInvalid, SeverityWarning, node.Name,
				fmt.Sprintf("position %v is not a valid canvas coordinate", node.Position)))
		}
	}

	issues = append(issues, validateConnections(cat, w, byID, byName)...)
	issues = append(issues, validateReachability(cat, w, byID, byName)...)
	return issues
}

// validateConnections checks every connection key and edge against the node
// set and the target's declared input arity.
func validateConnections(cat *catalog.Catalog, w *workflow.Workflow, byID, byName map[string]*workflow.Node) []Issue {
	var issues []Issue

	keys := make([]string, 0, len(w.Connections))
	for k := range w.Connections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, ok := byID[key]; !ok {
			if _, isName := byName[key]; isName {
				issues = append(issues, diagnostic(CodeUnknownSource, SeverityError, key,
					fmt.Sprintf("connection keyed by display name %q instead of the node id", key)))
			} else {
				issues = append(issues, diagnostic(CodeUnknownSource, SeverityError, key,
					fmt.Sprintf("connection references non-existent source node %q", key)))
			}
		}
		for _, slot := range w.Connections[key] {
			for _, edge := range slot {
				target, ok := byID[edge.Node]
				if !ok {
					if named, isName := byName[edge.Node]; isName {
						target, ok = named, true
						issues = append(issues, diagnostic(CodeUnknownTarget, SeverityError, edge.Node,
							fmt.Sprintf("edge references node %q by display name instead of id", edge.Node)))
					} else {
						issues = append(issues, diagnostic(CodeUnknownTarget, SeverityError, edge.Node,
							fmt.Sprintf("edge references non-existent target node %q", edge.Node)))
						continue
					}
				}
				if desc, known := cat.Resolve(target.Type); known && edge.Index >= desc.Inputs {
					issues = append(issues, diagnostic(CodeInputOutOfRange, SeverityError, target.Name,
						fmt.Sprintf("edge targets input %d but %q accepts %d", edge.Index, target.Type, desc.Inputs)))
				}
			}
		}
	}
	return issues
}

// validateReachability flags every non-trigger node that no trigger reaches.
func validateReachability(cat *catalog.Catalog, w *workflow.Workflow, byID, byName map[string]*workflow.Node) []Issue {
	isTrigger := func(n *workflow.Node) bool {
		desc, ok := cat.Resolve(n.Type)
		return ok && desc.Trigger
	}

	// BFS from every trigger, resolving targets by id then display name so
	// an unrepaired graph is not drowned in spurious warnings.
	visited := make(map[*workflow.Node]bool)
	var queue []*workflow.Node
	for i := range w.Nodes {
		if n := &w.Nodes[i]; isTrigger(n) {
			visited[n] = true
			queue = append(queue, n)
		}
	}
	resolve := func(ref string) *workflow.Node {
		if n, ok := byID[ref]; ok {
			return n
		}
		return byName[ref]
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		outs := w.OutgoingConnections(cur.ID)
		if outs == nil && cur.Name != "" {
			outs = w.Connections[cur.Name]
		}
		for _, slot := range outs {
			for _, edge := range slot {
				next := resolve(edge.Node)
				if next != nil && !visited[next] {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
	}

	var issues []Issue
	for i := range w.Nodes {
		n := &w.Nodes[i]
		if isTrigger(n) || visited[n] {
			continue
		}
		issues = append(issues, diagnostic(CodeUnreachable, SeverityWarning, n.Name,
			"node is not reachable from any trigger"))
	}
	return issues
}
