package assistant

import (
	"GutAssistant/internal/entity"
	logPkg "GutAssistant/pkg/log"
	"GutAssistant/pkg/nlp"
	"GutAssistant/pkg/utils"
	"context"
	"fmt"
	"github.com/sirupsen/logrus"
	"strings"
	"time"
)

// Assistant ties the classifier, the resolver and the store together. Turn
// state lives in the store, so one Assistant serves any number of sessions.
type Assistant struct {
	log       *logrus.Logger
	processor nlp.INLPProcessor
	resolver  *Resolver
	store     Store
	utils     utils.IUtils
	now       func() time.Time
}

type Option func(*Assistant)

func WithClock(now func() time.Time) Option {
	return func(a *Assistant) {
		a.now = now
	}
}

func New(log *logrus.Logger, processor nlp.INLPProcessor, store Store, u utils.IUtils, opts ...Option) *Assistant {
	a := &Assistant{
		log:       log,
		processor: processor,
		resolver:  NewResolver(log, store),
		store:     store,
		utils:     u,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type FeedbackInput struct {
	TurnID         string
	IsCorrect      bool
	CustomResponse *string
	CorrectIntent  *entity.IntentLabel
}

func (a *Assistant) NewSession() (*Session, error) {
	id, err := a.utils.NewULIDFromTimestamp(a.now())
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	return a.Session(id), nil
}

func (a *Assistant) Session(id string) *Session {
	return &Session{ID: id, assistant: a}
}

func (a *Assistant) classifyAndRespond(ctx context.Context, sessionID, text string, profile entity.UserProfile) (entity.ConversationTurn, error) {
	if strings.TrimSpace(text) == "" {
		logPkg.WithRequestID(ctx, a.log).WithFields(logrus.Fields{
			"session_id": sessionID,
		}).Warn("Rejected empty message")
		return entity.ConversationTurn{}, ErrMalformedMessage
	}

	received := a.now()
	message := entity.Message{
		Text:       text,
		ReceivedAt: received,
		SessionID:  sessionID,
	}

	classification := a.processor.Classify(text, profile)
	signature := a.processor.Signature(text)
	payload := a.resolver.Resolve(ctx, classification.Intent, signature, profile)

	turnID, err := a.utils.NewULIDFromTimestamp(received)
	if err != nil {
		logPkg.WithRequestID(ctx, a.log).WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to generate turn ID")
		return entity.ConversationTurn{}, fmt.Errorf("generate turn id: %w", err)
	}

	turn := entity.ConversationTurn{
		ID:             turnID,
		SessionID:      sessionID,
		Message:        message,
		Signature:      signature,
		Classification: classification,
		Response:       payload,
		NeedsFeedback:  true,
		CreatedAt:      received,
	}

	if err := a.store.SaveTurn(ctx, turn); err != nil {
		logPkg.WithRequestID(ctx, a.log).WithFields(logrus.Fields{
			"turn_id": turnID,
			"error":   err.Error(),
		}).Error("Failed to save conversation turn")
		return entity.ConversationTurn{}, fmt.Errorf("save turn: %w", err)
	}

	logPkg.WithRequestID(ctx, a.log).WithFields(logrus.Fields{
		"session_id": sessionID,
		"turn_id":    turnID,
		"intent":     classification.Intent,
		"rule":       classification.MatchedRule,
		"provenance": payload.Provenance,
	}).Debug("Message classified")

	return turn, nil
}

// SubmitFeedback resolves a pending turn. Only the first call for a turn
// succeeds; the rest get ErrDuplicateFeedback and change nothing.
func (a *Assistant) SubmitFeedback(ctx context.Context, in FeedbackInput) (entity.FeedbackAck, error) {
	turn, err := a.store.GetTurn(ctx, in.TurnID)
	if err != nil {
		return entity.FeedbackAck{}, err
	}
	if !turn.NeedsFeedback {
		logPkg.WithRequestID(ctx, a.log).WithFields(logrus.Fields{
			"turn_id": in.TurnID,
		}).Warn("Feedback for resolved turn rejected")
		return entity.FeedbackAck{}, ErrDuplicateFeedback
	}
	if in.CorrectIntent != nil && !entity.IsValidIntent(string(*in.CorrectIntent)) {
		return entity.FeedbackAck{}, ErrInvalidIntent
	}

	custom := in.CustomResponse
	if custom != nil && strings.TrimSpace(*custom) == "" {
		custom = nil
	}

	recordedAt := a.now()
	recordID, err := a.utils.NewULIDFromTimestamp(recordedAt)
	if err != nil {
		return entity.FeedbackAck{}, fmt.Errorf("generate record id: %w", err)
	}

	record := entity.FeedbackRecord{
		ID:               recordID,
		TurnID:           turn.ID,
		MessageSignature: turn.Signature,
		OriginalMessage:  turn.Message.Text,
		IsCorrect:        in.IsCorrect,
		CustomResponse:   custom,
		CorrectIntent:    in.CorrectIntent,
		RecordedAt:       recordedAt,
	}

	if err := a.store.RecordFeedback(ctx, record); err != nil {
		logPkg.WithRequestID(ctx, a.log).WithFields(logrus.Fields{
			"turn_id": turn.ID,
			"error":   err.Error(),
		}).Warn("Failed to record feedback")
		return entity.FeedbackAck{}, err
	}

	learning, err := a.learningMode(ctx, turn.SessionID)
	if err != nil {
		logPkg.WithRequestID(ctx, a.log).WithFields(logrus.Fields{
			"session_id": turn.SessionID,
			"error":      err.Error(),
		}).Warn("Failed to derive learning mode")
		learning = !in.IsCorrect
	}

	logPkg.WithRequestID(ctx, a.log).WithFields(logrus.Fields{
		"turn_id":       turn.ID,
		"is_correct":    in.IsCorrect,
		"override_set":  record.CarriesOverride(),
		"learning_mode": learning,
	}).Info("Feedback recorded")

	return entity.FeedbackAck{
		TurnID:       turn.ID,
		RecordID:     record.ID,
		IsCorrect:    record.IsCorrect,
		OverrideSet:  record.CarriesOverride(),
		LearningMode: learning,
		RecordedAt:   recordedAt,
	}, nil
}

func (a *Assistant) Stats(ctx context.Context) (entity.LearningStats, error) {
	records, err := a.store.Records(ctx)
	if err != nil {
		return entity.LearningStats{}, err
	}
	return ComputeStats(records), nil
}

func (a *Assistant) learningMode(ctx context.Context, sessionID string) (bool, error) {
	turns, err := a.store.ListTurns(ctx, sessionID, 0)
	if err != nil {
		return false, err
	}
	return LearningMode(turns), nil
}

// LearningMode reports whether turns contain a corrected answer whose
// signature has not been confirmed by a later turn. turns may be in any
// order.
func LearningMode(turns []entity.ConversationTurn) bool {
	resolved := make([]entity.ConversationTurn, 0, len(turns))
	for _, turn := range turns {
		if turn.State() != entity.TurnStatePending && turn.ResolvedAt != nil {
			resolved = append(resolved, turn)
		}
	}
	sortByResolution(resolved)

	open := make(map[string]bool)
	for _, turn := range resolved {
		switch turn.State() {
		case entity.TurnStateCorrected:
			open[turn.Signature] = true
		case entity.TurnStateConfirmed:
			delete(open, turn.Signature)
		}
	}
	return len(open) > 0
}
