package assistant

import (
	"strings"

	"GutAssistant/internal/entity"
)

// OverrideFromRecord builds the index entry a record contributes, if any.
// Recommendations are left empty; they follow the classified intent at
// resolution time.
func OverrideFromRecord(record entity.FeedbackRecord) (entity.ResponsePayload, bool) {
	if !record.CarriesOverride() {
		return entity.ResponsePayload{}, false
	}

	text := ""
	if record.CustomResponse != nil {
		text = strings.TrimSpace(*record.CustomResponse)
	}
	if text == "" && record.CorrectIntent != nil {
		text = CanonicalTemplate(*record.CorrectIntent)
	}
	if text == "" {
		return entity.ResponsePayload{}, false
	}

	return entity.ResponsePayload{
		ResponseText:    text,
		Recommendations: []string{},
		Provenance:      entity.ProvenanceCorrected,
	}, true
}

// ReplayOverrides rebuilds the signature index from the log. Records must be
// in the order they were appended; later corrections supersede earlier ones.
func ReplayOverrides(records []entity.FeedbackRecord) map[string]entity.ResponsePayload {
	index := make(map[string]entity.ResponsePayload)
	for _, record := range records {
		if payload, ok := OverrideFromRecord(record); ok {
			index[record.MessageSignature] = payload
		}
	}
	return index
}

func ComputeStats(records []entity.FeedbackRecord) entity.LearningStats {
	stats := entity.LearningStats{TotalFeedback: len(records)}
	for _, record := range records {
		if record.IsCorrect {
			stats.PositiveFeedback++
			continue
		}
		stats.NegativeFeedback++
		if record.CustomResponse != nil && strings.TrimSpace(*record.CustomResponse) != "" {
			stats.CustomResponses++
		}
	}
	stats.LearnedOverrides = len(ReplayOverrides(records))
	if stats.TotalFeedback > 0 {
		stats.IntentAccuracy = float64(stats.PositiveFeedback) / float64(stats.TotalFeedback)
	}
	return stats
}
