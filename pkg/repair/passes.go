package repair

import (
	"fmt"
	"sort"

	"dario.cat/mergo"

	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/catalog"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/workflow"
)

// ─── pass 1: node identity ───────────────────────────────────────────────────

// passIdentity assigns a fresh canonical ID to every node whose ID is
// missing or under-length, recording the rewrite for the connection pass.
func passIdentity(s *session) (found, fixed []Issue) {
	for i := range s.w.Nodes {
		node := &s.w.Nodes[i]
		if workflow.ValidID(node.ID) {
			continue
		}
		issue := fixable(CodeNodeIDInvalid, node.Name,
			fmt.Sprintf("missing or invalid node id %q", node.ID),
			"assign a freshly generated canonical id")
		found = append(found, issue)
		if !s.autoFix {
			continue
		}
		newID := workflow.NewID()
		if node.ID != "" {
			s.renames[node.ID] = newID
		}
		node.ID = newID
		fixed = append(fixed, issue)
	}
	return found, fixed
}

// ─── pass 2: parameter completeness ──────────────────────────────────────────

// passParameters ensures every node has a parameters container and that all
// required parameters of known types carry at least a minimum-viable value,
// mirroring the synthesis-time defaults so hand-edited graphs converge to
// the same shape a freshly synthesized one has.
func passParameters(s *session) (found, fixed []Issue) {
	for i := range s.w.Nodes {
		node := &s.w.Nodes[i]
		desc, known := s.cat.Resolve(node.Type)

		var missing []string
		if known {
			for _, p := range desc.RequiredParams {
				if v, ok := node.Parameters[p]; !ok || v == "" {
					missing = append(missing, p)
				}
			}
		}
		if node.Parameters != nil && len(missing) == 0 {
			continue
		}

		issue := fixable(CodeParamsMissing, node.Name,
			fmt.Sprintf("missing parameters %v", missing),
			"apply the type's default parameters")
		found = append(found, issue)
		if !s.autoFix {
			continue
		}
		applyParamDefaults(node, desc, known)
		fixed = append(fixed, issue)
	}
	return found, fixed
}

// applyParamDefaults fills a node's parameters from its type's bundled
// defaults, backstopping any still-empty required param.
func applyParamDefaults(node *workflow.Node, desc catalog.Descriptor, known bool) {
	if node.Parameters == nil {
		node.Parameters = make(map[string]any)
	}
	if !known {
		return
	}
	_ = mergo.Merge(&node.Parameters, desc.Defaults)
	for _, p := range desc.RequiredParams {
		if v, ok := node.Parameters[p]; !ok || v == "" {
			node.Parameters[p] = "placeholder"
		}
	}
}

// ─── pass 3: connection rewrite ──────────────────────────────────────────────

// passConnections re-keys every connection entry and edge target to the
// canonical node-id lookup: display names and IDs rewritten by pass 1 are
// resolved; anything that resolves to no node at all is deliberately left
// untouched for the final validation to report. Synthesizing a plausible
// target would silently change workflow semantics.
func passConnections(s *session) (found, fixed []Issue) {
	if len(s.w.Connections) == 0 {
		return nil, nil
	}

	byID := make(map[string]*workflow.Node, len(s.w.Nodes))
	byName := make(map[string]*workflow.Node, len(s.w.Nodes))
	for i := range s.w.Nodes {
		n := &s.w.Nodes[i]
		byID[n.ID] = n
		if n.Name != "" {
			byName[n.Name] = n
		}
	}

	resolve := func(ref string) (string, bool) {
		if _, ok := byID[ref]; ok {
			return ref, false
		}
		if renamed, ok := s.renames[ref]; ok {
			return renamed, true
		}
		if n, ok := byName[ref]; ok {
			return n.ID, true
		}
		return ref, false
	}

	keys := make([]string, 0, len(s.w.Connections))
	for k := range s.w.Connections {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rewritten := make(map[string]workflow.Outputs, len(keys))
	for _, key := range keys {
		canonical, rekeyed := resolve(key)
		if rekeyed {
			issue := fixable(CodeConnectionRekeyed, key,
				fmt.Sprintf("connection keyed by %q instead of the node id", key),
				"re-key the connection to the canonical node id")
			found = append(found, issue)
			if s.autoFix {
				fixed = append(fixed, issue)
			} else {
				canonical = key
			}
		}

		outs := make(workflow.Outputs, len(s.w.Connections[key]))
		for si, slot := range s.w.Connections[key] {
			newSlot := make([]workflow.Connection, len(slot))
			for ei, edge := range slot {
				target, retargeted := resolve(edge.Node)
				if retargeted {
					issue := fixable(CodeTargetRewritten, edge.Node,
						fmt.Sprintf("edge targets %q instead of the node id", edge.Node),
						"rewrite the edge target to the canonical node id")
					found = append(found, issue)
					if s.autoFix {
						fixed = append(fixed, issue)
					} else {
						target = edge.Node
					}
				}
				newSlot[ei] = workflow.Connection{Node: target, Index: edge.Index}
			}
			outs[si] = newSlot
		}

		// Merge in case a name key and an id key referred to the same node.
		if existing, ok := rewritten[canonical]; ok {
			for len(existing) < len(outs) {
				existing = append(existing, nil)
			}
			for si := range outs {
				existing[si] = append(existing[si], outs[si]...)
			}
			rewritten[canonical] = existing
			continue
		}
		rewritten[canonical] = outs
	}

	if s.autoFix {
		s.w.Connections = rewritten
	}
	return found, fixed
}

// ─── pass 4: positioning ─────────────────────────────────────────────────────

// gridConfig parameterizes the deterministic layout grid.
type gridConfig struct {
	rowWidth   int
	cellWidth  int
	cellHeight int
	originX    int
	originY    int
}

var defaultGrid = gridConfig{rowWidth: 4, cellWidth: 250, cellHeight: 150, originX: 100, originY: 100}

// position is a pure function of the node index: no two indices map to the
// same coordinate.
func (g gridConfig) position(index int) []int {
	row := index / g.rowWidth
	col := index % g.rowWidth
	return []int{g.originX + col*g.cellWidth, g.originY + row*g.cellHeight}
}

// passPositions assigns a deterministic grid position to any node without a
// valid in-bounds coordinate pair.
func passPositions(s *session) (found, fixed []Issue) {
	for i := range s.w.Nodes {
		node := &s.w.Nodes[i]
		if workflow.ValidPosition(node.Position) {
			continue
		}
		issue := fixable(CodePositionInvalid, node.Name,
			fmt.Sprintf("missing or out-of-canvas position %v", node.Position),
			"assign a deterministic grid position")
		found = append(found, issue)
		if !s.autoFix {
			continue
		}
		node.Position = defaultGrid.position(i)
		fixed = append(fixed, issue)
	}
	return found, fixed
}

// ─── pass 5: type validity ───────────────────────────────────────────────────

// passTypes gives untyped nodes the generic fallback type and rewrites
// known-deprecated types to their current replacement. A rewrite also lays
// in the replacement type's default parameters so a second repair finds
// nothing left to do.
func passTypes(s *session) (found, fixed []Issue) {
	for i := range s.w.Nodes {
		node := &s.w.Nodes[i]

		if node.Type == "" {
			issue := fixable(CodeTypeMissing, node.Name,
				"node has no type", "assign the generic fallback type")
			found = append(found, issue)
			if s.autoFix {
				node.Type = catalog.FallbackType
				fixed = append(fixed, issue)
			}
			continue
		}

		replacement, deprecated := s.cat.Replacement(node.Type)
		if !deprecated {
			continue
		}
		issue := fixable(CodeTypeDeprecated, node.Name,
			fmt.Sprintf("type %q is deprecated", node.Type),
			fmt.Sprintf("rewrite to %q", replacement))
		found = append(found, issue)
		if !s.autoFix {
			continue
		}
		node.Type = replacement
		if desc, ok := s.cat.Resolve(replacement); ok {
			applyParamDefaults(node, desc, true)
		}
		fixed = append(fixed, issue)
	}
	return found, fixed
}

// ─── pass 6: settings ────────────────────────────────────────────────────────

// passSettings fills missing workflow-level settings from the fixed default
// record and initializes a missing staticData container.
func passSettings(s *session) (found, fixed []Issue) {
	defaults := workflow.DefaultSettings()
	var missing []string
	for k := range defaults {
		if _, ok := s.w.Settings[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)

	if len(missing) > 0 {
		issue := fixable(CodeSettingsMissing, "",
			fmt.Sprintf("missing workflow settings %v", missing),
			"fill from the default settings record")
		found = append(found, issue)
		if s.autoFix {
			if s.w.Settings == nil {
				s.w.Settings = make(map[string]any, len(defaults))
			}
			_ = mergo.Merge(&s.w.Settings, defaults)
			fixed = append(fixed, issue)
		}
	}

	if s.w.StaticData == nil {
		issue := fixable(CodeSettingsMissing, "",
			"missing staticData container", "initialize an empty container")
		found = append(found, issue)
		if s.autoFix {
			s.w.StaticData = make(map[string]any)
			fixed = append(fixed, issue)
		}
	}
	return found, fixed
}
