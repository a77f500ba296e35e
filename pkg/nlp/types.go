package nlp

import "GutAssistant/internal/entity"

// IntentRule fires when any of its triggers is a substring of the
// lower-cased message.
type IntentRule struct {
	Intent   entity.IntentLabel
	Triggers []string
}

type RuleMatch struct {
	Intent  entity.IntentLabel `json:"intent"`
	Trigger string             `json:"trigger"`
	Rank    int                `json:"rank"`
}

type INLPProcessor interface {
	Classify(text string, profile entity.UserProfile) entity.ClassificationResult
	ExtractKeywords(text string) []string
	MatchIntent(lowercasedText string) entity.IntentLabel
	Signature(text string) string
}
