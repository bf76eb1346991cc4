// Package intent extracts a structured representation of user intent from a
// free-form automation description. Extraction is rule-based: each category
// applies an ordered table of (pattern, builder, confidence) rules, so the
// rule set stays inspectable independent of the driver.
package intent

// TriggerKind classifies how a workflow starts.
type TriggerKind string

const (
	TriggerSchedule TriggerKind = "schedule"
	TriggerWebhook  TriggerKind = "webhook"
	TriggerManual   TriggerKind = "manual"
	TriggerEmail    TriggerKind = "email"
	TriggerFile     TriggerKind = "file"
	TriggerDatabase TriggerKind = "database"
)

// Operator is a canonical comparison tag.
type Operator string

const (
	OpEquals   Operator = "equals"
	OpContains Operator = "contains"
	OpGreater  Operator = "greater"
	OpLesser   Operator = "lesser"
)

// TransformKind classifies a data transformation.
type TransformKind string

const (
	TransformFilter    TransformKind = "filter"
	TransformMap       TransformKind = "map"
	TransformFormat    TransformKind = "format"
	TransformCalculate TransformKind = "calculate"
	TransformMerge     TransformKind = "merge"
)

// Channel classifies a notification destination.
type Channel string

const (
	ChannelSlack   Channel = "slack"
	ChannelEmail   Channel = "email"
	ChannelWebhook Channel = "webhook"
	ChannelSMS     Channel = "sms"
)

// Trigger is an extracted workflow entry point.
type Trigger struct {
	Kind       TriggerKind `json:"kind"`
	Schedule   string      `json:"schedule,omitempty"`
	SourceText string      `json:"sourceText"`
	Confidence float64     `json:"confidence"`
}

// Action is an extracted step that does work against a service.
type Action struct {
	Service    string         `json:"service"`
	Target     string         `json:"target"`
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Confidence float64        `json:"confidence"`
}

// Condition is an extracted branching predicate.
type Condition struct {
	Field      string   `json:"field"`
	Operator   Operator `json:"operator"`
	Value      string   `json:"value"`
	Logic      string   `json:"logic"`
	Confidence float64  `json:"confidence"`
}

// Transformation is an extracted data-shaping step.
type Transformation struct {
	Kind        TransformKind `json:"kind"`
	SourceField string        `json:"sourceField,omitempty"`
	TargetField string        `json:"targetField,omitempty"`
	Expression  string        `json:"expression,omitempty"`
	Confidence  float64       `json:"confidence"`
}

// Notification is an extracted alerting step.
type Notification struct {
	Channel    Channel `json:"channel"`
	Target     string  `json:"target"`
	Confidence float64 `json:"confidence"`
}

// Intent is the structured extraction of one description. Built once per
// Extract call, immutable afterwards, consumed exactly once by synthesis.
type Intent struct {
	Triggers           []Trigger        `json:"triggers"`
	Actions            []Action         `json:"actions"`
	Conditions         []Condition      `json:"conditions"`
	Transformations    []Transformation `json:"transformations"`
	Notifications      []Notification   `json:"notifications"`
	PrimaryAction      string           `json:"primaryAction"`
	OverallConfidence  float64          `json:"overallConfidence"`
	ComplexityScore    float64          `json:"complexityScore"`
	EstimatedNodeCount int              `json:"estimatedNodeCount"`
}

// Category weights for the overall confidence score.
const (
	weightTrigger        = 0.3
	weightAction         = 0.4
	weightCondition      = 0.1
	weightTransformation = 0.1
	weightNotification   = 0.1
)

// score fills the derived fields from the extracted category lists.
func (it *Intent) score() {
	// Overall confidence: weighted average over the categories present,
	// each contributing its maximum individual confidence.
	var sum, weights float64
	if n := len(it.Triggers); n > 0 {
		sum += weightTrigger * maxConfidence(it.Triggers, func(t Trigger) float64 { return t.Confidence })
		weights += weightTrigger
	}
	if len(it.Actions) > 0 {
		sum += weightAction * maxConfidence(it.Actions, func(a Action) float64 { return a.Confidence })
		weights += weightAction
	}
	if len(it.Conditions) > 0 {
		sum += weightCondition * maxConfidence(it.Conditions, func(c Condition) float64 { return c.Confidence })
		weights += weightCondition
	}
	if len(it.Transformations) > 0 {
		sum += weightTransformation * maxConfidence(it.Transformations, func(x Transformation) float64 { return x.Confidence })
		weights += weightTransformation
	}
	if len(it.Notifications) > 0 {
		sum += weightNotification * maxConfidence(it.Notifications, func(n Notification) float64 { return n.Confidence })
		weights += weightNotification
	}
	if weights > 0 {
		it.OverallConfidence = clamp01(sum / weights)
	}

	raw := float64(len(it.Triggers))*1 +
		float64(len(it.Actions))*2 +
		float64(len(it.Conditions))*1.5 +
		float64(len(it.Transformations))*2.5
	it.ComplexityScore = clamp01(raw / 10)

	it.EstimatedNodeCount = len(it.Triggers) + len(it.Actions) + len(it.Conditions) +
		len(it.Transformations) + len(it.Notifications) + 1

	switch {
	case len(it.Actions) > 0:
		it.PrimaryAction = it.Actions[0].Service
	case len(it.Notifications) > 0:
		it.PrimaryAction = "notify"
	default:
		it.PrimaryAction = "manual"
	}
}

func maxConfidence[T any](items []T, conf func(T) float64) float64 {
	best := 0.0
	for _, item := range items {
		if c := conf(item); c > best {
			best = c
		}
	}
	return best
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
