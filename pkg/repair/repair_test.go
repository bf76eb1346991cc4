package repair_test

import (
	"bytes"
	"testing"

	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/catalog"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/repair"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/workflow"
)

func mustRepair(t *testing.T, w *workflow.Workflow, opts repair.Options) *repair.Result {
	t.Helper()
	res, err := repair.Repair(catalog.Default(), w, opts)
	if err != nil {
		t.Fatalf("Repair: %v", err)
	}
	return res
}

func hasCode(issues []repair.Issue, code repair.Code) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func countCode(issues []repair.Issue, code repair.Code) int {
	n := 0
	for _, i := range issues {
		if i.Code == code {
			n++
		}
	}
	return n
}

// validGraph returns a well-formed two-node graph: trigger -> slack.
func validGraph() *workflow.Workflow {
	w := &workflow.Workflow{
		Name: "valid",
		Nodes: []workflow.Node{
			{
				ID: "trig-0001", Name: "Schedule Trigger",
				Type:       "n8n-nodes-base.scheduleTrigger",
				Position:   []int{100, 200},
				Parameters: map[string]any{"rule": "0 9 * * *"},
			},
			{
				ID: "act-00001", Name: "Slack",
				Type:       "n8n-nodes-base.slack",
				Position:   []int{300, 200},
				Parameters: map[string]any{"channel": "general", "text": "hi"},
			},
		},
		Settings:   workflow.DefaultSettings(),
		StaticData: map[string]any{},
	}
	w.Connect("trig-0001", 0, "act-00001", 0)
	return w
}

func TestRepairNilArguments(t *testing.T) {
	if _, err := repair.Repair(nil, &workflow.Workflow{}, repair.Options{}); err == nil {
		t.Error("nil catalog should be rejected")
	}
	if _, err := repair.Repair(catalog.Default(), nil, repair.Options{}); err == nil {
		t.Error("nil workflow should be rejected")
	}
}

func TestRepairValidGraphIsNoOp(t *testing.T) {
	res := mustRepair(t, validGraph(), repair.Options{AutoFix: true})
	if len(res.Fixed) != 0 {
		t.Errorf("fixed = %+v, want none on a valid graph", res.Fixed)
	}
	if errs := res.ValidationErrors(); len(errs) != 0 {
		t.Errorf("validation errors = %+v, want none", errs)
	}
	if !res.Success {
		t.Error("no-op repair of a valid graph should succeed")
	}
}

func TestRepairDoesNotMutateOriginal(t *testing.T) {
	w := validGraph()
	w.Nodes[0].ID = "x" // force a fix
	before, err := workflow.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}

	res := mustRepair(t, w, repair.Options{AutoFix: true})

	after, err := workflow.Marshal(w)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("caller's graph was mutated")
	}
	if res.Original != w {
		t.Error("Original should echo the caller's graph")
	}
	if res.Workflow == w {
		t.Error("repaired graph must be an independent copy")
	}
}

// A node missing its ID plus a connection referencing it by display name:
// the node gets a fresh canonical ID and the connection key follows it.
func TestRepairNameKeyedConnection(t *testing.T) {
	w := &workflow.Workflow{
		Name: "hand built",
		Nodes: []workflow.Node{
			{
				Name:       "My Trigger",
				Type:       "n8n-nodes-base.manualTrigger",
				Position:   []int{100, 200},
				Parameters: map[string]any{},
			},
			{
				ID: "step-0001", Name: "HTTP Request",
				Type:       "n8n-nodes-base.httpRequest",
				Position:   []int{300, 200},
				Parameters: map[string]any{"url": "https://example.com", "method": "GET"},
			},
		},
		Connections: map[string]workflow.Outputs{
			"My Trigger": {{{Node: "step-0001", Index: 0}}},
		},
		Settings:   workflow.DefaultSettings(),
		StaticData: map[string]any{},
	}

	res := mustRepair(t, w, repair.Options{AutoFix: true})

	trigger := res.Workflow.NodeByName("My Trigger")
	if trigger == nil {
		t.Fatal("trigger node lost")
	}
	if !workflow.ValidID(trigger.ID) {
		t.Errorf("trigger id %q not canonical", trigger.ID)
	}
	if _, ok := res.Workflow.Connections["My Trigger"]; ok {
		t.Error("name-keyed connection not re-keyed")
	}
	outs, ok := res.Workflow.Connections[trigger.ID]
	if !ok || len(outs[0]) != 1 || outs[0][0].Node != "step-0001" {
		t.Errorf("connections = %+v, want edge keyed by %q", res.Workflow.Connections, trigger.ID)
	}
	if !hasCode(res.Fixed, repair.CodeNodeIDInvalid) {
		t.Error("fixed list missing the node-id fix")
	}
	if !hasCode(res.Fixed, repair.CodeConnectionRekeyed) {
		t.Error("fixed list missing the connection re-key fix")
	}
	if errs := res.ValidationErrors(); len(errs) != 0 {
		t.Errorf("validation errors = %+v, want none", errs)
	}
}

// A stale ID in an edge target follows the pass-1 rename map.
func TestRepairStaleEdgeTarget(t *testing.T) {
	w := validGraph()
	w.Nodes[1].ID = "x" // under-length, will be regenerated
	w.Connections = map[string]workflow.Outputs{
		"trig-0001": {{{Node: "x", Index: 0}}},
	}

	res := mustRepair(t, w, repair.Options{AutoFix: true})

	slack := res.Workflow.NodeByName("Slack")
	if !workflow.ValidID(slack.ID) || slack.ID == "x" {
		t.Fatalf("slack id = %q, want regenerated", slack.ID)
	}
	outs := res.Workflow.Connections["trig-0001"]
	if len(outs) == 0 || len(outs[0]) != 1 || outs[0][0].Node != slack.ID {
		t.Errorf("edge target = %+v, want %q", outs, slack.ID)
	}
	if !hasCode(res.Fixed, repair.CodeTargetRewritten) {
		t.Error("fixed list missing the edge-target rewrite")
	}
}

// A connection whose target matches no node: reported, never dropped or
// redirected.
func TestRepairDanglingTargetIsNotGuessed(t *testing.T) {
	w := validGraph()
	w.Connect("act-00001", 0, "No Such Node", 0)

	res := mustRepair(t, w, repair.Options{AutoFix: true})

	if n := countCode(res.ValidationErrors(), repair.CodeUnknownTarget); n != 1 {
		t.Errorf("unknown-target errors = %d, want exactly 1", n)
	}
	outs := res.Workflow.Connections["act-00001"]
	if len(outs) == 0 || len(outs[0]) != 1 || outs[0][0].Node != "No Such Node" {
		t.Errorf("dangling edge was altered: %+v", outs)
	}
	if res.Success {
		t.Error("unfixable error with nothing fixed should not be a success")
	}
}

// A scratch node with no connections is a warning, not an error.
func TestRepairUnreachableNodeIsWarning(t *testing.T) {
	w := validGraph()
	w.AddNode(workflow.Node{
		ID: "scratch-1", Name: "Scratch",
		Type:       "n8n-nodes-base.noOp",
		Position:   []int{700, 200},
		Parameters: map[string]any{},
	})

	res := mustRepair(t, w, repair.Options{AutoFix: true})

	if len(res.ValidationErrors()) != 0 {
		t.Errorf("validation errors = %+v, want none", res.ValidationErrors())
	}
	if !hasCode(res.Warnings(), repair.CodeUnreachable) {
		t.Errorf("warnings = %+v, want an unreachable warning", res.Warnings())
	}
	if !res.Success {
		t.Error("warning-class issues alone should not fail the repair")
	}
}

func TestRepairDeprecatedType(t *testing.T) {
	w := validGraph()
	w.Nodes[0].Type = "n8n-nodes-base.cron"
	w.Nodes[0].Parameters = map[string]any{}

	res := mustRepair(t, w, repair.Options{AutoFix: true})

	n := res.Workflow.NodeByName("Schedule Trigger")
	if n.Type != "n8n-nodes-base.scheduleTrigger" {
		t.Errorf("type = %q, want the replacement", n.Type)
	}
	// The rewrite lays in the replacement's defaults so nothing is left
	// for a second pass.
	if v, ok := n.Parameters["rule"]; !ok || v == "" {
		t.Errorf("parameters = %+v, want rule populated", n.Parameters)
	}
	if !hasCode(res.Fixed, repair.CodeTypeDeprecated) {
		t.Error("fixed list missing the deprecation rewrite")
	}
	if errs := res.ValidationErrors(); len(errs) != 0 {
		t.Errorf("validation errors = %+v, want none", errs)
	}
}

func TestRepairMissingTypeGetsFallback(t *testing.T) {
	w := validGraph()
	w.Nodes[1].Type = ""

	res := mustRepair(t, w, repair.Options{AutoFix: true})

	if got := res.Workflow.Nodes[1].Type; got != catalog.FallbackType {
		t.Errorf("type = %q, want %q", got, catalog.FallbackType)
	}
	if !hasCode(res.Fixed, repair.CodeTypeMissing) {
		t.Error("fixed list missing the fallback-type fix")
	}
}

func TestRepairSettingsAndStaticData(t *testing.T) {
	w := validGraph()
	w.Settings = nil
	w.StaticData = nil

	res := mustRepair(t, w, repair.Options{AutoFix: true})

	for k := range workflow.DefaultSettings() {
		if _, ok := res.Workflow.Settings[k]; !ok {
			t.Errorf("setting %q not filled", k)
		}
	}
	if res.Workflow.StaticData == nil {
		t.Error("staticData not initialized")
	}
	if countCode(res.Fixed, repair.CodeSettingsMissing) != 2 {
		t.Errorf("fixed = %+v, want settings and staticData entries", res.Fixed)
	}
}

func TestRepairPositioning(t *testing.T) {
	w := validGraph()
	w.Nodes[0].Position = nil
	w.Nodes[1].Position = []int{workflow.CanvasMax + 500, 200}

	// Without PreserveComplexity the positions stay put and only warnings
	// are emitted.
	res := mustRepair(t, w, repair.Options{AutoFix: true})
	if hasCode(res.Fixed, repair.CodePositionInvalid) {
		t.Error("positions must not be touched without PreserveComplexity")
	}
	if countCode(res.Warnings(), repair.CodePositionInvalid) != 2 {
		t.Errorf("warnings = %+v, want two position warnings", res.Warnings())
	}

	res = mustRepair(t, w, repair.Options{AutoFix: true, PreserveComplexity: true})
	if countCode(res.Fixed, repair.CodePositionInvalid) != 2 {
		t.Errorf("fixed = %+v, want two position fixes", res.Fixed)
	}
	p0, p1 := res.Workflow.Nodes[0].Position, res.Workflow.Nodes[1].Position
	if !workflow.ValidPosition(p0) || !workflow.ValidPosition(p1) {
		t.Errorf("positions %v %v not valid after repositioning", p0, p1)
	}
	if p0[0] == p1[0] && p0[1] == p1[1] {
		t.Error("auto-assigned positions coincide")
	}
}

func TestRepairParameterDefaults(t *testing.T) {
	w := validGraph()
	w.Nodes[1].Parameters = map[string]any{"channel": "ops"} // text missing

	res := mustRepair(t, w, repair.Options{AutoFix: true})

	n := res.Workflow.NodeByName("Slack")
	if n.Parameters["channel"] != "ops" {
		t.Errorf("existing parameter overwritten: %+v", n.Parameters)
	}
	if v, ok := n.Parameters["text"]; !ok || v == "" {
		t.Errorf("required parameter text not defaulted: %+v", n.Parameters)
	}
	if !hasCode(res.Fixed, repair.CodeParamsMissing) {
		t.Error("fixed list missing the parameter fix")
	}
}

func TestRepairFindsWithoutFixing(t *testing.T) {
	w := validGraph()
	w.Nodes[0].ID = ""
	w.Settings = nil

	res := mustRepair(t, w, repair.Options{AutoFix: false})

	if len(res.Fixed) != 0 {
		t.Errorf("fixed = %+v, want none with AutoFix off", res.Fixed)
	}
	if !hasCode(res.Found, repair.CodeNodeIDInvalid) || !hasCode(res.Found, repair.CodeSettingsMissing) {
		t.Errorf("found = %+v, want id and settings findings", res.Found)
	}
	if res.Workflow.Nodes[0].ID != "" {
		t.Error("graph mutated with AutoFix off")
	}
}

func TestRepairIdempotent(t *testing.T) {
	w := &workflow.Workflow{
		Name: "messy",
		Nodes: []workflow.Node{
			{Name: "Start", Type: "n8n-nodes-base.cron"},
			{Name: "Fetch", Type: "n8n-nodes-base.httpRequest"},
			{ID: "short", Name: "Notify", Type: "n8n-nodes-base.slack"},
		},
		Connections: map[string]workflow.Outputs{
			"Start": {{{Node: "Fetch", Index: 0}}},
			"Fetch": {{{Node: "short", Index: 0}}},
		},
	}

	opts := repair.Options{AutoFix: true, PreserveComplexity: true}
	first := mustRepair(t, w, opts)
	if len(first.Fixed) == 0 {
		t.Fatal("first repair should fix something")
	}

	second := mustRepair(t, first.Workflow, opts)
	if len(second.Fixed) != 0 {
		t.Errorf("second repair fixed %+v, want nothing", second.Fixed)
	}
	if len(second.Found) != 0 {
		t.Errorf("second repair found %+v, want nothing", second.Found)
	}

	a, err := workflow.Marshal(first.Workflow)
	if err != nil {
		t.Fatal(err)
	}
	b, err := workflow.Marshal(second.Workflow)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("second repair changed the graph:\nfirst:  %s\nsecond: %s", a, b)
	}
}

func TestRepairedIDsAreUnique(t *testing.T) {
	w := &workflow.Workflow{
		Name: "ids",
		Nodes: []workflow.Node{
			{Name: "A", Type: "n8n-nodes-base.manualTrigger"},
			{Name: "B", Type: "n8n-nodes-base.noOp"},
			{Name: "C", Type: "n8n-nodes-base.noOp"},
		},
	}
	res := mustRepair(t, w, repair.Options{AutoFix: true})
	seen := map[string]bool{}
	for _, n := range res.Workflow.Nodes {
		if !workflow.ValidID(n.ID) {
			t.Errorf("node %q id %q not canonical", n.Name, n.ID)
		}
		if seen[n.ID] {
			t.Errorf("duplicate id %q", n.ID)
		}
		seen[n.ID] = true
	}
}
