package entity

import "time"

type TurnState string

const (
	TurnStatePending   TurnState = "pending"
	TurnStateConfirmed TurnState = "confirmed"
	TurnStateCorrected TurnState = "corrected"
)

type ConversationTurn struct {
	ID             string               `json:"id"`
	SessionID      string               `json:"session_id"`
	Message        Message              `json:"message"`
	Signature      string               `json:"signature"`
	Classification ClassificationResult `json:"classification"`
	Response       ResponsePayload      `json:"response"`
	NeedsFeedback  bool                 `json:"needs_feedback"`
	WasCorrect     *bool                `json:"was_correct,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
}

func (t ConversationTurn) State() TurnState {
	if t.NeedsFeedback || t.WasCorrect == nil {
		return TurnStatePending
	}
	if *t.WasCorrect {
		return TurnStateConfirmed
	}
	return TurnStateCorrected
}
