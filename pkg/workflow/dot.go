package workflow

import (
	"fmt"
	"sort"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"
)

// ParseDOT imports a Graphviz DOT sketch as a Workflow.
//
// The sketch convention: the DOT node id becomes the display name, the
// "type" attribute becomes the node type, and every other attribute lands in
// Parameters. Imported nodes carry no canonical IDs and connections are
// keyed by display name — the repairer normalizes both.
func ParseDOT(src string) (*Workflow, error) {
	graphAst, err := gographviz.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("dot parse error: %w", err)
	}

	// A permissive collector: accept any attribute name without the strict
	// validation gographviz.Graph performs.
	collector := newSketchCollector()
	if err := gographviz.Analyse(graphAst, collector); err != nil {
		return nil, fmt.Errorf("dot analyse error: %w", err)
	}

	w := &Workflow{Name: collector.name}
	for _, name := range collector.order {
		attrs := collector.nodes[name]
		node := Node{Name: name, Type: attrs["type"]}
		for k, v := range attrs {
			if k == "type" {
				continue
			}
			if node.Parameters == nil {
				node.Parameters = make(map[string]any)
			}
			node.Parameters[k] = v
		}
		w.AddNode(node)
	}
	for _, e := range collector.edges {
		w.Connect(e.from, 0, e.to, 0)
	}
	return w, nil
}

type sketchEdge struct {
	from, to string
}

// sketchCollector implements gographviz.Interface without attribute
// validation.
type sketchCollector struct {
	name  string
	order []string
	nodes map[string]map[string]string
	edges []sketchEdge
	// defaults holds graph-level node [...] attributes.
	defaults map[string]string
}

func newSketchCollector() *sketchCollector {
	return &sketchCollector{
		nodes:    make(map[string]map[string]string),
		defaults: make(map[string]string),
	}
}

func (c *sketchCollector) SetStrict(_ bool) error { return nil }
func (c *sketchCollector) SetDir(_ bool) error    { return nil }
func (c *sketchCollector) SetName(n string) error { c.name = unquote(n); return nil }
func (c *sketchCollector) String() string         { return c.name }

func (c *sketchCollector) AddNode(_ string, name string, attrs map[string]string) error {
	id := unquote(name)
	if _, ok := c.nodes[id]; !ok {
		c.order = append(c.order, id)
		c.nodes[id] = make(map[string]string, len(c.defaults))
		for k, v := range c.defaults {
			c.nodes[id][k] = v
		}
	}
	for k, v := range attrs {
		c.nodes[id][k] = unquote(v)
	}
	return nil
}

func (c *sketchCollector) AddEdge(src, dst string, _ bool, _ map[string]string) error {
	from, to := unquote(src), unquote(dst)
	// Edge endpoints may name nodes that never appear on their own line.
	for _, id := range []string{from, to} {
		if _, ok := c.nodes[id]; !ok {
			c.order = append(c.order, id)
			c.nodes[id] = make(map[string]string)
		}
	}
	c.edges = append(c.edges, sketchEdge{from: from, to: to})
	return nil
}

func (c *sketchCollector) AddPortEdge(src, _, dst, _ string, directed bool, attrs map[string]string) error {
	return c.AddEdge(src, dst, directed, attrs)
}

func (c *sketchCollector) AddAttr(_ string, _, _ string) error { return nil }

func (c *sketchCollector) AddSubGraph(_, _ string, _ map[string]string) error { return nil }

// unquote strips surrounding double-quotes from a DOT value.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// MarshalDOT renders the workflow as a canonical DOT digraph, one line per
// node and per edge, for visualization.
func MarshalDOT(w *Workflow) string {
	var sb strings.Builder

	name := w.Name
	if name == "" {
		name = "workflow"
	}
	fmt.Fprintf(&sb, "digraph %s {\n", dotQuote(name))

	for _, n := range w.Nodes {
		label := n.Name
		if label == "" {
			label = n.ID
		}
		parts := []string{"type=" + dotQuote(n.Type)}
		keys := make([]string, 0, len(n.Parameters))
		for k := range n.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, k+"="+dotQuote(fmt.Sprintf("%v", n.Parameters[k])))
		}
		fmt.Fprintf(&sb, "    %s [%s]\n", dotQuote(label), strings.Join(parts, " "))
	}

	// Deterministic edge order: sort source keys, keep slot order.
	srcs := make([]string, 0, len(w.Connections))
	for src := range w.Connections {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)
	for _, src := range srcs {
		fromLabel := src
		if n := w.NodeByID(src); n != nil && n.Name != "" {
			fromLabel = n.Name
		}
		for _, slot := range w.Connections[src] {
			for _, conn := range slot {
				toLabel := conn.Node
				if n := w.NodeByID(conn.Node); n != nil && n.Name != "" {
					toLabel = n.Name
				}
				fmt.Fprintf(&sb, "    %s -> %s\n", dotQuote(fromLabel), dotQuote(toLabel))
			}
		}
	}

	fmt.Fprintf(&sb, "}\n")
	return sb.String()
}

// dotQuote returns the value as a DOT-safe string, quoting if necessary.
func dotQuote(s string) string {
	needsQuote := s == "" ||
		strings.ContainsAny(s, " \t\n\\\"{}[]<>=;,./:#")
	if needsQuote {
		escaped := strings.ReplaceAll(s, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, `"`, `\"`)
		return `"` + escaped + `"`
	}
	return s
}
