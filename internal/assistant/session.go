package assistant

import (
	"GutAssistant/internal/entity"
	"context"
	"sort"
)

// Session is the caller-held handle for one conversation.
type Session struct {
	ID        string
	assistant *Assistant
}

func (s *Session) ClassifyAndRespond(ctx context.Context, text string, profile entity.UserProfile) (entity.ConversationTurn, error) {
	return s.assistant.classifyAndRespond(ctx, s.ID, text, profile)
}

// SubmitFeedback only accepts turns issued by this session.
func (s *Session) SubmitFeedback(ctx context.Context, in FeedbackInput) (entity.FeedbackAck, error) {
	turn, err := s.assistant.store.GetTurn(ctx, in.TurnID)
	if err != nil {
		return entity.FeedbackAck{}, err
	}
	if turn.SessionID != s.ID {
		return entity.FeedbackAck{}, ErrTurnNotFound
	}
	return s.assistant.SubmitFeedback(ctx, in)
}

func (s *Session) LearningMode(ctx context.Context) (bool, error) {
	return s.assistant.learningMode(ctx, s.ID)
}

func (s *Session) History(ctx context.Context, limit int) ([]entity.ConversationTurn, error) {
	return s.assistant.store.ListTurns(ctx, s.ID, limit)
}

func sortByResolution(turns []entity.ConversationTurn) {
	sort.SliceStable(turns, func(i, j int) bool {
		if !turns[i].ResolvedAt.Equal(*turns[j].ResolvedAt) {
			return turns[i].ResolvedAt.Before(*turns[j].ResolvedAt)
		}
		return turns[i].CreatedAt.Before(turns[j].CreatedAt)
	})
}
