package entity

import "time"

// FeedbackRecord is one entry of the append-only feedback log. Records are
// never updated or deleted; the override index is derived from them.
type FeedbackRecord struct {
	ID               string       `json:"id"`
	TurnID           string       `json:"turn_id"`
	MessageSignature string       `json:"message_signature"`
	OriginalMessage  string       `json:"original_message"`
	IsCorrect        bool         `json:"is_correct"`
	CustomResponse   *string      `json:"custom_response,omitempty"`
	CorrectIntent    *IntentLabel `json:"correct_intent,omitempty"`
	RecordedAt       time.Time    `json:"recorded_at"`
}

// CarriesOverride reports whether the record replaces the response served for
// its signature.
func (r FeedbackRecord) CarriesOverride() bool {
	if r.IsCorrect {
		return false
	}
	return (r.CustomResponse != nil && *r.CustomResponse != "") || r.CorrectIntent != nil
}

type FeedbackAck struct {
	TurnID       string    `json:"turn_id"`
	RecordID     string    `json:"record_id"`
	IsCorrect    bool      `json:"is_correct"`
	OverrideSet  bool      `json:"override_set"`
	LearningMode bool      `json:"learning_mode"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type LearningStats struct {
	TotalFeedback    int     `json:"total_feedback"`
	PositiveFeedback int     `json:"positive_feedback"`
	NegativeFeedback int     `json:"negative_feedback"`
	LearnedOverrides int     `json:"learned_overrides"`
	CustomResponses  int     `json:"custom_responses"`
	IntentAccuracy   float64 `json:"intent_accuracy"`
}
