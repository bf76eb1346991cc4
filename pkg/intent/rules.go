package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// rule is one entry in a category's ordered pattern table. Each rule
// contributes at most one item per description (first match wins); rules are
// independent of each other, so several rules in one table may each fire.
type rule[T any] struct {
	re         *regexp.Regexp
	confidence float64
	build      func(conf float64, m []string) T
}

// firstMatch runs a category's rule table over the text.
func firstMatch[T any](text string, rules []rule[T]) []T {
	var out []T
	for _, r := range rules {
		m := r.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		out = append(out, r.build(r.confidence, m))
	}
	return out
}

// ─── triggers ────────────────────────────────────────────────────────────────

var triggerRules = []rule[Trigger]{
	{
		// "every N <unit>" interval schedules.
		re:         regexp.MustCompile(`\bevery\s+(\d+)\s+([a-z]+)\b`),
		confidence: 0.9,
		build: func(conf float64, m []string) Trigger {
			n, _ := strconv.Atoi(m[1])
			return Trigger{Kind: TriggerSchedule, Schedule: intervalCron(n, m[2]), SourceText: m[0], Confidence: conf}
		},
	},
	{
		// "daily at HH[:MM] [am|pm]" clock-time schedules.
		re:         regexp.MustCompile(`\b(?:daily|every\s+day|each\s+day)\s+at\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`),
		confidence: 0.9,
		build: func(conf float64, m []string) Trigger {
			return Trigger{Kind: TriggerSchedule, Schedule: clockCron(m[1], m[2], m[3]), SourceText: m[0], Confidence: conf}
		},
	},
	{
		// Weekday schedules.
		re:         regexp.MustCompile(`\bevery\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
		confidence: 0.85,
		build: func(conf float64, m []string) Trigger {
			return Trigger{Kind: TriggerSchedule, Schedule: fmt.Sprintf("0 9 * * %d", weekdays[m[1]]), SourceText: m[0], Confidence: conf}
		},
	},
	{
		// Explicit scheduling nouns with no time detail.
		re:         regexp.MustCompile(`\b(?:cron|timer|schedule[ds]?)\b`),
		confidence: 0.6,
		build: func(conf float64, m []string) Trigger {
			return Trigger{Kind: TriggerSchedule, Schedule: fallbackCron, SourceText: m[0], Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\bwhen\s+(?:a\s+)?webhook\b|\bwebhook\s+(?:is\s+)?(?:received|called|fires|arrives)|\bvia\s+webhook\b|\bincoming\s+request\b`),
		confidence: 0.8,
		build: func(conf float64, m []string) Trigger {
			return Trigger{Kind: TriggerWebhook, SourceText: m[0], Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\bwhen\s+(?:an?\s+)?email\s+(?:arrives|comes\s+in|is\s+received)|\bincoming\s+email\b|\bnew\s+email\b|\bon\s+email\s+receipt\b`),
		confidence: 0.8,
		build: func(conf float64, m []string) Trigger {
			return Trigger{Kind: TriggerEmail, SourceText: m[0], Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\bmanual(?:ly)?\b|\bon\s+demand\b|\bwhen\s+i\s+(?:run|click|trigger)\b`),
		confidence: 0.7,
		build: func(conf float64, m []string) Trigger {
			return Trigger{Kind: TriggerManual, SourceText: m[0], Confidence: conf}
		},
	},
}

// fallbackCron is the schedule used when no finer-grained time can be read
// from the text: weekday mornings.
const fallbackCron = "0 9 * * 1-5"

var weekdays = map[string]int{
	"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3,
	"thursday": 4, "friday": 5, "saturday": 6,
}

// intervalCron normalizes "every N <unit>" to a cron expression.
func intervalCron(n int, unit string) string {
	switch strings.TrimSuffix(unit, "s") {
	case "minute":
		return fmt.Sprintf("*/%d * * * *", n)
	case "hour":
		return fmt.Sprintf("0 */%d * * *", n)
	case "day":
		return fmt.Sprintf("0 9 */%d * *", n)
	case "week":
		return "0 9 * * 1"
	case "month":
		return fmt.Sprintf("0 9 1 */%d *", n)
	default:
		return fallbackCron
	}
}

// clockCron normalizes "at HH[:MM] [am|pm]" to a cron expression.
func clockCron(hourStr, minStr, meridiem string) string {
	hour, _ := strconv.Atoi(hourStr)
	minute := 0
	if minStr != "" {
		minute, _ = strconv.Atoi(minStr)
	}
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// ─── actions ─────────────────────────────────────────────────────────────────

var actionRules = []rule[Action]{
	{
		re:         regexp.MustCompile(`\b(?:send|post)\s+(?:an?\s+)?messages?\s+(?:to|in|on)\s+(?:the\s+)?(?:slack\s+)?(?:channel\s+)?#?([\w-]+)`),
		confidence: 0.85,
		build: func(conf float64, m []string) Action {
			return Action{Service: "messaging", Target: orDefault(m[1], "general"), Operation: "send", Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\b(?:send|write)\s+(?:an?\s+)?email(?:\s+to\s+([\w.@+-]+))?`),
		confidence: 0.85,
		build: func(conf float64, m []string) Action {
			return Action{Service: "email", Target: orDefault(m[1], "user@example.com"), Operation: "send", Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`(https?://[^\s"']+)|\b(?:call|fetch|hit)\s+(?:the\s+)?(?:rest\s+)?(?:api|url|endpoint)\b`),
		confidence: 0.8,
		build: func(conf float64, m []string) Action {
			return Action{Service: "http", Target: orDefault(m[1], "https://example.com"), Operation: "GET", Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\b(?:save|insert|store|write|add|log|record)\b[^.!?]*?\b(?:database|db)\b`),
		confidence: 0.8,
		build: func(conf float64, m []string) Action {
			return Action{Service: "database", Target: "records", Operation: "insert", Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\bquery\s+(?:the\s+)?(?:database|db)\b`),
		confidence: 0.8,
		build: func(conf float64, m []string) Action {
			return Action{Service: "database", Target: "records", Operation: "select", Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\b(?:save|write|export)\b[^.!?]*?\bfile\b|\bto\s+a\s+file\b`),
		confidence: 0.75,
		build: func(conf float64, m []string) Action {
			return Action{Service: "file", Target: "data.txt", Operation: "write", Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\b(?:spreadsheet|google\s+sheets?|excel)\b`),
		confidence: 0.8,
		build: func(conf float64, m []string) Action {
			return Action{Service: "spreadsheet", Target: "Sheet1", Operation: "append", Confidence: conf}
		},
	},
}

// ─── conditions ──────────────────────────────────────────────────────────────

var conditionRules = []rule[Condition]{
	{
		// The second field word is lazy so phrasings like "temperature is
		// greater than" leave "is" to the operator alternation.
		re: regexp.MustCompile(`\b(?:if|only\s+if|when)\s+(?:the\s+)?([a-z0-9_.]+(?:\s+[a-z0-9_.]+)??)\s+` +
			`(equals|is\s+equal\s+to|contains|includes|is\s+greater\s+than|greater\s+than|exceeds|is\s+less\s+than|less\s+than|is\s+below)\s+` +
			`"?([^",.!?]+?)"?(?:[,.!?]|\s+(?:then|and|or)\b|$)`),
		confidence: 0.75,
		build: func(conf float64, m []string) Condition {
			return Condition{
				Field:      strings.TrimSpace(m[1]),
				Operator:   normalizeOperator(m[2]),
				Value:      strings.TrimSpace(m[3]),
				Logic:      "and",
				Confidence: conf,
			}
		},
	},
}

// normalizeOperator folds the operator phrasings into the canonical tags.
func normalizeOperator(op string) Operator {
	switch strings.Join(strings.Fields(op), " ") {
	case "contains", "includes":
		return OpContains
	case "is greater than", "greater than", "exceeds":
		return OpGreater
	case "is less than", "less than", "is below":
		return OpLesser
	default:
		return OpEquals
	}
}

// ─── transformations ─────────────────────────────────────────────────────────

var transformationRules = []rule[Transformation]{
	{
		re:         regexp.MustCompile(`\bfilter\s+(?:out\s+)?(?:the\s+)?(\w+)?`),
		confidence: 0.75,
		build: func(conf float64, m []string) Transformation {
			return Transformation{Kind: TransformFilter, SourceField: m[1], Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\b(?:map|transform|convert)\s+(?:the\s+)?(\w+)?(?:\s+(?:to|into)\s+(\w+))?`),
		confidence: 0.7,
		build: func(conf float64, m []string) Transformation {
			return Transformation{Kind: TransformMap, SourceField: m[1], TargetField: m[2], Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\bformat\s+(?:the\s+)?(\w+)?`),
		confidence: 0.7,
		build: func(conf float64, m []string) Transformation {
			return Transformation{Kind: TransformFormat, SourceField: m[1], Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\b(?:calculate|compute|sum)\s+(?:the\s+)?(\w+)?`),
		confidence: 0.75,
		build: func(conf float64, m []string) Transformation {
			return Transformation{Kind: TransformCalculate, SourceField: m[1], Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\b(?:merge|combine)\s+(?:the\s+)?(\w+)?`),
		confidence: 0.7,
		build: func(conf float64, m []string) Transformation {
			return Transformation{Kind: TransformMerge, SourceField: m[1], Confidence: conf}
		},
	},
}

// ─── notifications ───────────────────────────────────────────────────────────

var notificationRules = []rule[Notification]{
	{
		re:         regexp.MustCompile(`\b(?:notify|alert|ping)\s+(?:the\s+)?(me|everyone|team|us|[\w-]+)?`),
		confidence: 0.8,
		build: func(conf float64, m []string) Notification {
			return Notification{Channel: ChannelSlack, Target: normalizeTarget(m[1]), Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\bemail\s+(me|everyone|us|the\s+team)\b`),
		confidence: 0.75,
		build: func(conf float64, m []string) Notification {
			return Notification{Channel: ChannelEmail, Target: normalizeTarget(m[1]), Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\bsms\b|\btext\s+(me|everyone|us)\b`),
		confidence: 0.75,
		build: func(conf float64, m []string) Notification {
			return Notification{Channel: ChannelSMS, Target: normalizeTarget(m[1]), Confidence: conf}
		},
	},
	{
		re:         regexp.MustCompile(`\b(?:send|post|fire)\s+(?:a\s+)?(?:webhook|callback)\b`),
		confidence: 0.7,
		build: func(conf float64, m []string) Notification {
			return Notification{Channel: ChannelWebhook, Target: "webhook", Confidence: conf}
		},
	},
}

// normalizeTarget folds pronoun targets into the canonical audience names.
func normalizeTarget(t string) string {
	switch strings.Join(strings.Fields(t), " ") {
	case "", "me":
		return "user"
	case "everyone", "us", "the team", "team":
		return "team"
	default:
		return t
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
