// Package synth deterministically builds a workflow graph from an extracted
// intent. One node per extracted item, a linear chain of auto-wired
// connections, and every type's required parameters populated up front.
package synth

import (
	"fmt"

	"dario.cat/mergo"

	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/catalog"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/intent"
	"github.com/leonardsellem/n8n-mcp-server-sub007/pkg/workflow"
)

// Node lane for synthesized graphs: a single horizontal row.
const (
	laneOriginX  = 100
	laneSpacingX = 200
	laneY        = 200
)

// triggerTypes maps extracted trigger kinds to concrete node types.
var triggerTypes = map[intent.TriggerKind]string{
	intent.TriggerSchedule: "n8n-nodes-base.scheduleTrigger",
	intent.TriggerWebhook:  "n8n-nodes-base.webhook",
	intent.TriggerManual:   "n8n-nodes-base.manualTrigger",
	intent.TriggerEmail:    "n8n-nodes-base.emailReadImap",
}

// actionTypes maps the service taxonomy to concrete node types.
var actionTypes = map[string]string{
	"messaging":   "n8n-nodes-base.slack",
	"email":       "n8n-nodes-base.emailSend",
	"http":        "n8n-nodes-base.httpRequest",
	"database":    "n8n-nodes-base.postgres",
	"file":        "n8n-nodes-base.readWriteFile",
	"spreadsheet": "n8n-nodes-base.spreadsheetFile",
}

// transformationTypes maps transformation kinds to concrete node types.
var transformationTypes = map[intent.TransformKind]string{
	intent.TransformFilter:    "n8n-nodes-base.filter",
	intent.TransformMap:       "n8n-nodes-base.set",
	intent.TransformFormat:    "n8n-nodes-base.set",
	intent.TransformCalculate: "n8n-nodes-base.code",
	intent.TransformMerge:     "n8n-nodes-base.merge",
}

// notificationTypes maps notification channels to concrete node types.
var notificationTypes = map[intent.Channel]string{
	intent.ChannelSlack:   "n8n-nodes-base.slack",
	intent.ChannelEmail:   "n8n-nodes-base.emailSend",
	intent.ChannelWebhook: "n8n-nodes-base.httpRequest",
	intent.ChannelSMS:     "n8n-nodes-base.twilio",
}

// Synthesize builds a workflow from an intent. Deterministic for a given
// intent and catalog: categories are emitted in a fixed order (triggers,
// conditions, transformations, actions, notifications), exactly one node per
// extracted item, and consecutive nodes are linked whenever ShouldConnect
// allows. Unknown category mappings degrade to the generic fallback type;
// the only hard failures are missing collaborators.
func Synthesize(cat *catalog.Catalog, it *intent.Intent, name string) (*workflow.Workflow, error) {
	if cat == nil {
		return nil, fmt.Errorf("type catalog must not be nil")
	}
	if it == nil {
		return nil, fmt.Errorf("intent must not be nil")
	}

	b := &chainBuilder{
		cat: cat,
		w: &workflow.Workflow{
			Name:        name,
			Connections: make(map[string]workflow.Outputs),
			Settings:    workflow.DefaultSettings(),
			StaticData:  make(map[string]any),
		},
		names: make(map[string]bool),
	}

	for _, tr := range it.Triggers {
		typeID, ok := triggerTypes[tr.Kind]
		if !ok {
			// Unknown trigger kinds still have to be entry points.
			typeID = "n8n-nodes-base.manualTrigger"
		}
		params := map[string]any{}
		if tr.Schedule != "" {
			params["rule"] = tr.Schedule
		}
		b.add(typeID, params)
	}

	for _, c := range it.Conditions {
		b.add("n8n-nodes-base.if", map[string]any{
			"value1":    fmt.Sprintf("={{ $json.%s }}", c.Field),
			"operation": string(c.Operator),
			"value2":    c.Value,
		})
	}

	for _, x := range it.Transformations {
		typeID, ok := transformationTypes[x.Kind]
		if !ok {
			typeID = catalog.FallbackType
		}
		params := map[string]any{}
		if x.SourceField != "" {
			params["sourceField"] = x.SourceField
		}
		if x.TargetField != "" {
			params["targetField"] = x.TargetField
		}
		if x.Expression != "" {
			params["expression"] = x.Expression
		}
		b.add(typeID, params)
	}

	for _, a := range it.Actions {
		typeID, ok := actionTypes[a.Service]
		if !ok {
			typeID = catalog.FallbackType
		}
		b.add(typeID, actionParams(typeID, a))
	}

	for _, n := range it.Notifications {
		typeID, ok := notificationTypes[n.Channel]
		if !ok {
			typeID = catalog.FallbackType
		}
		b.add(typeID, notificationParams(typeID, n))
	}

	return b.w, nil
}

// actionParams derives node parameters from an extracted action.
func actionParams(typeID string, a intent.Action) map[string]any {
	params := map[string]any{}
	switch typeID {
	case "n8n-nodes-base.slack":
		params["channel"] = a.Target
	case "n8n-nodes-base.emailSend":
		params["toEmail"] = a.Target
	case "n8n-nodes-base.httpRequest":
		params["url"] = a.Target
		params["method"] = a.Operation
	case "n8n-nodes-base.postgres":
		params["table"] = a.Target
		params["operation"] = a.Operation
	case "n8n-nodes-base.readWriteFile":
		params["fileName"] = a.Target
		params["operation"] = a.Operation
	case "n8n-nodes-base.spreadsheetFile":
		params["operation"] = a.Operation
	}
	for k, v := range a.Parameters {
		params[k] = v
	}
	return params
}

// notificationParams derives node parameters from an extracted notification.
func notificationParams(typeID string, n intent.Notification) map[string]any {
	params := map[string]any{}
	switch typeID {
	case "n8n-nodes-base.slack":
		params["channel"] = n.Target
	case "n8n-nodes-base.emailSend":
		params["toEmail"] = n.Target
	case "n8n-nodes-base.httpRequest":
		params["url"] = "https://example.com/" + n.Target
	case "n8n-nodes-base.twilio":
		params["to"] = n.Target
	}
	return params
}

// chainBuilder appends nodes along a single horizontal lane and auto-wires
// each node to its predecessor.
type chainBuilder struct {
	cat   *catalog.Catalog
	w     *workflow.Workflow
	names map[string]bool
}

func (b *chainBuilder) add(typeID string, params map[string]any) {
	desc := b.cat.ResolveOrGeneric(typeID)

	if params == nil {
		params = map[string]any{}
	}
	// Lay the type's bundled defaults under the derived parameters, then
	// backstop any still-empty required param. Synthesis guarantees required
	// parameters; the validator only re-checks.
	_ = mergo.Merge(&params, desc.Defaults)
	for _, p := range desc.RequiredParams {
		if v, ok := params[p]; !ok || v == "" {
			params[p] = "placeholder"
		}
	}

	idx := len(b.w.Nodes)
	node := workflow.Node{
		ID:         workflow.NewID(),
		Name:       b.uniqueName(displayName(desc)),
		Type:       typeID,
		Position:   []int{laneOriginX + laneSpacingX*idx, laneY},
		Parameters: params,
	}
	b.w.AddNode(node)

	if idx > 0 {
		prev := b.w.Nodes[idx-1]
		prevDesc := b.cat.ResolveOrGeneric(prev.Type)
		if ShouldConnect(prevDesc, desc) {
			b.w.Connect(prev.ID, 0, node.ID, 0)
		}
	}
}

func displayName(desc catalog.Descriptor) string {
	if desc.DisplayName != "" {
		return desc.DisplayName
	}
	return desc.Type
}

// uniqueName disambiguates display names within one graph.
func (b *chainBuilder) uniqueName(base string) string {
	name := base
	for i := 2; b.names[name]; i++ {
		name = fmt.Sprintf("%s %d", base, i)
	}
	b.names[name] = true
	return name
}
