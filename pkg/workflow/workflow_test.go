package workflow_test

import (
	"strings"
	"testing"

	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/workflow"
)

func TestNewID(t *testing.T) {
	a, b := workflow.NewID(), workflow.NewID()
	if !workflow.ValidID(a) || !workflow.ValidID(b) {
		t.Fatalf("generated IDs not canonical: %q %q", a, b)
	}
	if a == b {
		t.Error("two generated IDs collide")
	}
}

func TestValidID(t *testing.T) {
	if workflow.ValidID("") {
		t.Error("empty ID should be invalid")
	}
	if workflow.ValidID("abc") {
		t.Error("short ID should be invalid")
	}
	if !workflow.ValidID("abcdefgh") {
		t.Error("8-char ID should be valid")
	}
}

func TestValidPosition(t *testing.T) {
	cases := []struct {
		pos  []int
		want bool
	}{
		{nil, false},
		{[]int{100}, false},
		{[]int{100, 200}, true},
		{[]int{-1, 200}, false},
		{[]int{100, workflow.CanvasMax + 1}, false},
		{[]int{0, 0}, true},
	}
	for _, tc := range cases {
		if got := workflow.ValidPosition(tc.pos); got != tc.want {
			t.Errorf("ValidPosition(%v) = %v, want %v", tc.pos, got, tc.want)
		}
	}
}

func TestConnectGrowsSlots(t *testing.T) {
	w := &workflow.Workflow{}
	w.Connect("a", 1, "b", 0)
	outs := w.Connections["a"]
	if len(outs) != 2 {
		t.Fatalf("output slots = %d, want 2", len(outs))
	}
	if len(outs[0]) != 0 {
		t.Errorf("slot 0 should be empty")
	}
	if len(outs[1]) != 1 || outs[1][0].Node != "b" {
		t.Errorf("slot 1 = %+v, want one edge to b", outs[1])
	}
	if w.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", w.EdgeCount())
	}
}

func TestOutgoingConnections(t *testing.T) {
	w := &workflow.Workflow{
		Nodes: []workflow.Node{
			{ID: "11111111", Name: "A"},
			{ID: "22222222", Name: "B"},
		},
	}
	// A keyed canonically, B keyed by display name (unrepaired sketch).
	w.Connect("11111111", 0, "22222222", 0)
	w.Connect("B", 0, "11111111", 0)

	if outs := w.OutgoingConnections("11111111"); len(outs) == 0 || outs[0][0].Node != "22222222" {
		t.Errorf("by id: %+v", outs)
	}
	if outs := w.OutgoingConnections("22222222"); len(outs) == 0 || outs[0][0].Node != "11111111" {
		t.Errorf("display-name fallback: %+v", outs)
	}
	if outs := w.OutgoingConnections("33333333"); outs != nil {
		t.Errorf("unknown ref: %+v", outs)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	w := &workflow.Workflow{
		Name: "wf",
		Nodes: []workflow.Node{
			{ID: "11111111", Name: "A", Type: "n8n-nodes-base.noOp",
				Parameters: map[string]any{"k": "v"}},
		},
	}
	w.Connect("11111111", 0, "11111111", 0)

	c, err := w.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	c.Nodes[0].Parameters["k"] = "changed"
	c.Connect("11111111", 0, "other", 0)

	if w.Nodes[0].Parameters["k"] != "v" {
		t.Error("clone mutation leaked into original parameters")
	}
	if w.EdgeCount() != 1 {
		t.Error("clone mutation leaked into original connections")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	w := &workflow.Workflow{
		Name:  "round",
		Nodes: []workflow.Node{{ID: "12345678", Name: "A", Type: "t", Position: []int{100, 200}}},
	}
	data, err := workflow.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := workflow.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Name != "round" || len(got.Nodes) != 1 || got.Nodes[0].ID != "12345678" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestParseDOT(t *testing.T) {
	src := `digraph sketch {
		fetch  [type="n8n-nodes-base.httpRequest", url="https://api.example.com"]
		notify [type="n8n-nodes-base.slack"]
		fetch -> notify
	}`
	w, err := workflow.ParseDOT(src)
	if err != nil {
		t.Fatalf("ParseDOT: %v", err)
	}
	if w.Name != "sketch" {
		t.Errorf("name = %q, want sketch", w.Name)
	}
	if len(w.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(w.Nodes))
	}
	fetch := w.NodeByName("fetch")
	if fetch == nil {
		t.Fatal("node fetch not found")
	}
	if fetch.Type != "n8n-nodes-base.httpRequest" {
		t.Errorf("fetch type = %q", fetch.Type)
	}
	if fetch.Parameters["url"] != "https://api.example.com" {
		t.Errorf("fetch url param = %v", fetch.Parameters["url"])
	}
	if fetch.ID != "" {
		t.Errorf("imported node should carry no canonical ID, got %q", fetch.ID)
	}
	// Connections are keyed by display name until repaired.
	if outs, ok := w.Connections["fetch"]; !ok || len(outs[0]) != 1 || outs[0][0].Node != "notify" {
		t.Errorf("connections = %+v, want fetch -> notify", w.Connections)
	}
}

func TestParseDOT_EdgeOnlyNodes(t *testing.T) {
	w, err := workflow.ParseDOT(`digraph g { a -> b }`)
	if err != nil {
		t.Fatalf("ParseDOT: %v", err)
	}
	if len(w.Nodes) != 2 {
		t.Fatalf("nodes = %d, want 2", len(w.Nodes))
	}
}

func TestMarshalDOT(t *testing.T) {
	w := &workflow.Workflow{
		Name: "wf",
		Nodes: []workflow.Node{
			{ID: "aaaaaaaa-1", Name: "Start", Type: "n8n-nodes-base.manualTrigger"},
			{ID: "bbbbbbbb-1", Name: "Notify", Type: "n8n-nodes-base.slack"},
		},
	}
	w.Connect("aaaaaaaa-1", 0, "bbbbbbbb-1", 0)

	out := workflow.MarshalDOT(w)
	if !strings.Contains(out, "digraph wf {") {
		t.Errorf("missing header: %s", out)
	}
	if !strings.Contains(out, `Start -> Notify`) {
		t.Errorf("missing edge by display name: %s", out)
	}
}
