package assistant

import (
	"context"

	"GutAssistant/internal/entity"
)

type TurnStore interface {
	SaveTurn(ctx context.Context, turn entity.ConversationTurn) error
	GetTurn(ctx context.Context, turnID string) (entity.ConversationTurn, error)
	// ListTurns returns the session's turns newest first. limit <= 0 means all.
	ListTurns(ctx context.Context, sessionID string, limit int) ([]entity.ConversationTurn, error)
}

type FeedbackStore interface {
	// RecordFeedback closes the pending turn record.TurnID, appends record to
	// the log and, when the record carries a correction, replaces the
	// override for record.MessageSignature. Either all of it happens or none.
	// A turn that is already closed yields ErrDuplicateFeedback.
	RecordFeedback(ctx context.Context, record entity.FeedbackRecord) error
	LookupOverride(ctx context.Context, signature string) (entity.ResponsePayload, bool, error)
	Records(ctx context.Context) ([]entity.FeedbackRecord, error)
}

type Store interface {
	TurnStore
	FeedbackStore
}
