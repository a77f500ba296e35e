package assistant

import (
	"context"
	"fmt"
	"sync"

	"GutAssistant/internal/entity"
)

// MemoryStore keeps turns, the feedback log and the override index in
// process memory. It is safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	turns     map[string]entity.ConversationTurn
	order     []string
	records   []entity.FeedbackRecord
	overrides map[string]entity.ResponsePayload
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		turns:     make(map[string]entity.ConversationTurn),
		overrides: make(map[string]entity.ResponsePayload),
	}
}

// NewMemoryStoreFromLog seeds the log with records and derives the override
// index by replaying them.
func NewMemoryStoreFromLog(records []entity.FeedbackRecord) *MemoryStore {
	s := NewMemoryStore()
	s.records = append(s.records, records...)
	s.overrides = ReplayOverrides(s.records)
	return s
}

func (s *MemoryStore) SaveTurn(_ context.Context, turn entity.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.turns[turn.ID]; exists {
		return fmt.Errorf("turn %s already exists", turn.ID)
	}
	s.turns[turn.ID] = turn
	s.order = append(s.order, turn.ID)
	return nil
}

func (s *MemoryStore) GetTurn(_ context.Context, turnID string) (entity.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turn, ok := s.turns[turnID]
	if !ok {
		return entity.ConversationTurn{}, ErrTurnNotFound
	}
	return turn, nil
}

func (s *MemoryStore) ListTurns(_ context.Context, sessionID string, limit int) ([]entity.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]entity.ConversationTurn, 0)
	for i := len(s.order) - 1; i >= 0; i-- {
		turn := s.turns[s.order[i]]
		if turn.SessionID != sessionID {
			continue
		}
		turns = append(turns, turn)
		if limit > 0 && len(turns) == limit {
			break
		}
	}
	return turns, nil
}

func (s *MemoryStore) RecordFeedback(_ context.Context, record entity.FeedbackRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn, ok := s.turns[record.TurnID]
	if !ok {
		return ErrTurnNotFound
	}
	if !turn.NeedsFeedback {
		return ErrDuplicateFeedback
	}

	wasCorrect := record.IsCorrect
	resolvedAt := record.RecordedAt
	turn.NeedsFeedback = false
	turn.WasCorrect = &wasCorrect
	turn.ResolvedAt = &resolvedAt

	s.turns[turn.ID] = turn
	s.records = append(s.records, record)
	if payload, ok := OverrideFromRecord(record); ok {
		s.overrides[record.MessageSignature] = payload
	}
	return nil
}

func (s *MemoryStore) LookupOverride(_ context.Context, signature string) (entity.ResponsePayload, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.overrides[signature]
	return payload, ok, nil
}

func (s *MemoryStore) Records(_ context.Context) ([]entity.FeedbackRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]entity.FeedbackRecord(nil), s.records...), nil
}
