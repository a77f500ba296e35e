package chatService

import (
	"GutAssistant/internal/api/chat"
	chatRepository "GutAssistant/internal/api/chat/repository"
	"GutAssistant/internal/assistant"
	"GutAssistant/internal/entity"
	logPkg "GutAssistant/pkg/log"
	"GutAssistant/pkg/redis"
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"time"
)

// PersistentStore keeps turns and the feedback log in Postgres. The override
// index lives in the feedback_overrides table with Redis in front of it; both
// are derived from the log and can be rebuilt with RebuildIndex.
type PersistentStore struct {
	log   *logrus.Logger
	repo  chatRepository.Repository
	cache redis.IRedis
	ttl   time.Duration
}

var _ assistant.Store = (*PersistentStore)(nil)

// NewPersistentStore builds the store. cache may be nil, in which case every
// lookup goes to the database.
func NewPersistentStore(log *logrus.Logger, repo chatRepository.Repository, cache redis.IRedis, ttl time.Duration) *PersistentStore {
	return &PersistentStore{
		log:   log,
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

func (s *PersistentStore) SaveTurn(ctx context.Context, turn entity.ConversationTurn) error {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return err
	}
	return repo.Turns.CreateTurn(ctx, turn)
}

func (s *PersistentStore) GetTurn(ctx context.Context, turnID string) (entity.ConversationTurn, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.ConversationTurn{}, err
	}
	return repo.Turns.GetTurnByID(ctx, turnID)
}

func (s *PersistentStore) ListTurns(ctx context.Context, sessionID string, limit int) ([]entity.ConversationTurn, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}
	return repo.Turns.GetTurnsBySessionID(ctx, sessionID, limit)
}

func (s *PersistentStore) RecordFeedback(ctx context.Context, record entity.FeedbackRecord) error {
	repo, err := s.repo.NewClient(true)
	if err != nil {
		logPkg.WithRequestID(ctx, s.log).WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to begin feedback transaction")
		return err
	}
	defer repo.Rollback()

	if err := repo.Turns.CloseTurn(ctx, record.TurnID, record.IsCorrect, record.RecordedAt); err != nil {
		return err
	}

	if err := repo.Feedback.CreateFeedbackRecord(ctx, record); err != nil {
		return err
	}

	payload, hasOverride := assistant.OverrideFromRecord(record)
	applied := false
	if hasOverride {
		applied, err = repo.Feedback.UpsertOverride(ctx, chatRepository.Override{
			Signature:    record.MessageSignature,
			ResponseText: payload.ResponseText,
			RecordID:     record.ID,
			UpdatedAt:    record.RecordedAt,
		})
		if err != nil {
			return err
		}
	}

	if err := repo.Commit(); err != nil {
		logPkg.WithRequestID(ctx, s.log).WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to commit feedback transaction")
		return err
	}

	if applied {
		s.cacheOverride(ctx, record.MessageSignature, payload, redis.OverrideVersion(record.RecordedAt, record.ID))
	}

	return nil
}

func (s *PersistentStore) LookupOverride(ctx context.Context, signature string) (entity.ResponsePayload, bool, error) {
	if s.cache != nil {
		payload, err := s.cache.GetOverride(ctx, signature)
		if err == nil {
			return payload, true, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			logPkg.WithRequestID(ctx, s.log).WithFields(logrus.Fields{
				"error": err.Error(),
			}).Warn("Override cache read failed, falling back to database")
		}
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return entity.ResponsePayload{}, false, err
	}

	override, err := repo.Feedback.GetOverride(ctx, signature)
	if errors.Is(err, chat.ErrOverrideNotFound) {
		return entity.ResponsePayload{}, false, nil
	}
	if err != nil {
		return entity.ResponsePayload{}, false, err
	}

	payload := entity.ResponsePayload{
		ResponseText:    override.ResponseText,
		Recommendations: []string{},
		Provenance:      entity.ProvenanceCorrected,
	}
	s.cacheOverride(ctx, signature, payload, redis.OverrideVersion(override.UpdatedAt, override.RecordID))

	return payload, true, nil
}

func (s *PersistentStore) Records(ctx context.Context) ([]entity.FeedbackRecord, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return nil, err
	}
	return repo.Feedback.GetAllFeedbackRecords(ctx)
}

// RebuildIndex replays the feedback log into the override table and the
// cache. It returns the number of signatures that carry an override.
func (s *PersistentStore) RebuildIndex(ctx context.Context) (int, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return 0, err
	}
	index := assistant.ReplayOverrides(records)

	lastRecord := make(map[string]entity.FeedbackRecord, len(index))
	for _, record := range records {
		if _, ok := assistant.OverrideFromRecord(record); ok {
			lastRecord[record.MessageSignature] = record
		}
	}

	repo, err := s.repo.NewClient(true)
	if err != nil {
		return 0, err
	}
	defer repo.Rollback()

	if err := repo.Feedback.DeleteAllOverrides(ctx); err != nil {
		return 0, err
	}
	for signature, payload := range index {
		record := lastRecord[signature]
		_, err := repo.Feedback.UpsertOverride(ctx, chatRepository.Override{
			Signature:    signature,
			ResponseText: payload.ResponseText,
			RecordID:     record.ID,
			UpdatedAt:    record.RecordedAt,
		})
		if err != nil {
			return 0, err
		}
	}

	if err := repo.Commit(); err != nil {
		return 0, err
	}

	for signature, payload := range index {
		record := lastRecord[signature]
		s.cacheOverride(ctx, signature, payload, redis.OverrideVersion(record.RecordedAt, record.ID))
	}

	logPkg.WithRequestID(ctx, s.log).WithFields(logrus.Fields{
		"records":   len(records),
		"overrides": len(index),
	}).Info("Override index rebuilt from feedback log")

	return len(index), nil
}

// cacheOverride is best effort. version keeps a slow writer from replacing a
// newer entry. On a failed write the key is dropped so the next lookup reads
// the committed row.
func (s *PersistentStore) cacheOverride(ctx context.Context, signature string, payload entity.ResponsePayload, version string) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.SetOverride(ctx, signature, payload, version, s.ttl); err != nil {
		logPkg.WithRequestID(ctx, s.log).WithFields(logrus.Fields{
			"signature": signature,
			"error":     err.Error(),
		}).Warn("Failed to cache override")
		_ = s.cache.DeleteOverride(ctx, signature)
	}
}
