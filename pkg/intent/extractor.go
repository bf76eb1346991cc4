package intent

import "strings"

// Extract parses a free-form automation description into an Intent.
//
// Extraction is total: ambiguity lowers confidence, it never fails. Each
// category scans the whole text independently, so a miss in one category
// never suppresses another. If no trigger phrasing is found the intent gets
// a single manual trigger at confidence 0.5, guaranteeing synthesis always
// has an entry point.
func Extract(text string) *Intent {
	t := strings.ToLower(strings.TrimSpace(text))

	it := &Intent{
		Triggers:        firstMatch(t, triggerRules),
		Actions:         firstMatch(t, actionRules),
		Conditions:      firstMatch(t, conditionRules),
		Transformations: firstMatch(t, transformationRules),
		Notifications:   firstMatch(t, notificationRules),
	}

	if len(it.Triggers) == 0 {
		it.Triggers = []Trigger{{Kind: TriggerManual, SourceText: t, Confidence: 0.5}}
	}

	it.score()
	return it
}
