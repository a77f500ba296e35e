package nlp

import (
	"strings"

	"GutAssistant/internal/entity"
)

// Evaluated top to bottom; the first rule with a matching trigger wins.
var intentRules = []IntentRule{
	{Intent: entity.IntentGutHealth, Triggers: []string{"gut", "microbiome", "digestion"}},
	{Intent: entity.IntentProbioticInfo, Triggers: []string{"probiotic", "fermented"}},
	{Intent: entity.IntentFiberInfo, Triggers: []string{"fiber", "prebiotic"}},
	{Intent: entity.IntentDiversityInfo, Triggers: []string{"shannon", "diversity", "risk"}},
	{Intent: entity.IntentDietSuggestion, Triggers: []string{"diet", "food", "eat"}},
	{Intent: entity.IntentHello, Triggers: []string{"hello", "hi", "hey"}},
}

func Rules() []IntentRule {
	out := make([]IntentRule, len(intentRules))
	for i, rule := range intentRules {
		out[i] = IntentRule{
			Intent:   rule.Intent,
			Triggers: append([]string(nil), rule.Triggers...),
		}
	}
	return out
}

// MatchRule returns the first rule whose trigger occurs in lowercasedText.
// Callers are expected to lower-case the text themselves.
func MatchRule(lowercasedText string) (RuleMatch, bool) {
	for rank, rule := range intentRules {
		for _, trigger := range rule.Triggers {
			if strings.Contains(lowercasedText, trigger) {
				return RuleMatch{Intent: rule.Intent, Trigger: trigger, Rank: rank + 1}, true
			}
		}
	}
	return RuleMatch{Intent: entity.IntentUnknown}, false
}

func MatchIntent(lowercasedText string) entity.IntentLabel {
	match, _ := MatchRule(lowercasedText)
	return match.Intent
}
