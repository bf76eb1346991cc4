// Package repair is the shared correctness gate for workflow graphs: it
// reports every structural invariant violation it finds and, when asked,
// deterministically fixes the subset that can be repaired without changing
// workflow semantics. A dangling connection target is never guessed at.
package repair

import "fmt"

// Severity splits validation findings into error-class issues, which block a
// graph, and warning-class issues, which only flag it.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code identifies a class of structural issue.
type Code string

const (
	CodeNodeIDInvalid     Code = "node-id-invalid"
	CodeNodeIDDuplicate   Code = "node-id-duplicate"
	CodeParamsMissing     Code = "params-missing"
	CodeConnectionRekeyed Code = "connection-rekeyed"
	CodeTargetRewritten   Code = "connection-target-rewritten"
	CodeUnknownSource     Code = "connection-source-unknown"
	CodeUnknownTarget     Code = "connection-target-unknown"
	CodeInputOutOfRange   Code = "input-index-out-of-range"
	CodePositionInvalid   Code = "position-invalid"
	CodeTypeMissing       Code = "type-missing"
	CodeTypeDeprecated    Code = "type-deprecated"
	CodeTypeUnknown       Code = "type-unknown"
	CodeSettingsMissing   Code = "settings-missing"
	CodeNameMissing       Code = "workflow-name-missing"
	CodeNoNodes           Code = "workflow-has-no-nodes"
	CodeUnreachable       Code = "node-unreachable"
)

// FixAction describes the repair applied (or applicable) for a fixable
// issue. Issues without one are diagnostics: the driver can only ever report
// them, never act on them.
type FixAction struct {
	Description string `json:"description"`
}

// Issue is one structural finding against a graph.
type Issue struct {
	Code     Code       `json:"code"`
	Severity Severity   `json:"severity"`
	Node     string     `json:"node,omitempty"`
	Message  string     `json:"message"`
	Fix      *FixAction `json:"fix,omitempty"`
}

// Fixable reports whether the issue carries a repair action.
func (i Issue) Fixable() bool { return i.Fix != nil }

func (i Issue) String() string {
	if i.Node != "" {
		return fmt.Sprintf("node %q: %s", i.Node, i.Message)
	}
	return i.Message
}

func fixable(code Code, node, message, fixDesc string) Issue {
	return Issue{
		Code:     code,
		Severity: SeverityError,
		Node:     node,
		Message:  message,
		Fix:      &FixAction{Description: fixDesc},
	}
}

func diagnostic(code Code, sev Severity, node, message string) Issue {
	return Issue{Code: code, Severity: sev, Node: node, Message: message}
}
