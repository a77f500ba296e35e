package nlp

import (
	"strings"

	"GutAssistant/internal/entity"
)

type NLPProcessor struct {
	extractor *EntityExtractor
	estimator *ConfidenceEstimator
}

func NewProcessor(estimator *ConfidenceEstimator) INLPProcessor {
	if estimator == nil {
		estimator = NewConfidenceEstimator()
	}

	return &NLPProcessor{
		extractor: NewEntityExtractor(),
		estimator: estimator,
	}
}

// Classify never fails: text that matches no rule is labelled unknown.
func (p *NLPProcessor) Classify(text string, profile entity.UserProfile) entity.ClassificationResult {
	match, matched := MatchRule(strings.ToLower(text))

	return entity.ClassificationResult{
		Intent:      match.Intent,
		Keywords:    ExtractKeywords(text),
		Entities:    p.extractor.Extract(text, profile),
		Confidence:  p.estimator.Estimate(match.Intent, matched),
		MatchedRule: match.Trigger,
	}
}

func (p *NLPProcessor) ExtractKeywords(text string) []string {
	return ExtractKeywords(text)
}

func (p *NLPProcessor) MatchIntent(lowercasedText string) entity.IntentLabel {
	return MatchIntent(lowercasedText)
}

func (p *NLPProcessor) Signature(text string) string {
	return Signature(text)
}
