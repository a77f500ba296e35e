package chatService

import (
	"GutAssistant/internal/api/chat"
	"GutAssistant/internal/assistant"
	"GutAssistant/internal/entity"
	"GutAssistant/internal/metrics"
	contextPkg "GutAssistant/pkg/context"
	logPkg "GutAssistant/pkg/log"
	"context"
	"errors"
	"github.com/sirupsen/logrus"
)

func (s *chatService) SendMessage(ctx context.Context, req chat.SendMessageRequest) (chat.TurnResponse, error) {
	session, err := s.session(req.SessionID)
	if err != nil {
		logPkg.WithRequestID(ctx, s.log).WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to open chat session")
		return chat.TurnResponse{}, err
	}
	ctx = contextPkg.WithSessionID(ctx, session.ID)

	turn, err := session.ClassifyAndRespond(ctx, req.Message, req.UserProfile.ToEntity())
	if err != nil {
		return chat.TurnResponse{}, err
	}
	metrics.ObserveClassification(string(turn.Classification.Intent), string(turn.Response.Provenance))

	learning, err := session.LearningMode(ctx)
	if err != nil {
		logPkg.WithRequestID(ctx, s.log).WithFields(logrus.Fields{
			"session_id": session.ID,
			"error":      err.Error(),
		}).Warn("Failed to derive learning mode")
		learning = false
	}

	return chat.NewTurnResponse(turn, learning), nil
}

func (s *chatService) SubmitFeedback(ctx context.Context, req chat.FeedbackRequest) (entity.FeedbackAck, error) {
	in := assistant.FeedbackInput{
		TurnID:         req.TurnID,
		CustomResponse: req.CustomResponse,
	}
	if req.IsCorrect != nil {
		in.IsCorrect = *req.IsCorrect
	}
	if req.CorrectIntent != nil {
		intent := entity.IntentLabel(*req.CorrectIntent)
		in.CorrectIntent = &intent
	}

	var (
		ack entity.FeedbackAck
		err error
	)
	if req.SessionID != "" {
		ack, err = s.assistant.Session(req.SessionID).SubmitFeedback(ctx, in)
	} else {
		ack, err = s.assistant.SubmitFeedback(ctx, in)
	}

	switch {
	case err == nil && ack.IsCorrect:
		metrics.ObserveFeedback(metrics.FeedbackConfirmed)
	case err == nil:
		metrics.ObserveFeedback(metrics.FeedbackCorrected)
	case errors.Is(err, assistant.ErrDuplicateFeedback):
		metrics.ObserveFeedback(metrics.FeedbackDuplicate)
	default:
		metrics.ObserveFeedback(metrics.FeedbackError)
	}

	return ack, err
}

func (s *chatService) GetHistory(ctx context.Context, sessionID string, limit int) (chat.HistoryResponse, error) {
	if sessionID == "" {
		return chat.HistoryResponse{}, chat.ErrSessionRequired
	}
	if limit <= 0 {
		return chat.HistoryResponse{}, chat.ErrInvalidLimit
	}

	session := s.assistant.Session(sessionID)
	turns, err := session.History(ctx, limit)
	if err != nil {
		logPkg.WithRequestID(ctx, s.log).WithFields(logrus.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Failed to load chat history")
		return chat.HistoryResponse{}, err
	}

	learning, err := session.LearningMode(ctx)
	if err != nil {
		return chat.HistoryResponse{}, err
	}

	resp := chat.HistoryResponse{
		SessionID:    sessionID,
		Turns:        make([]chat.TurnResponse, 0, len(turns)),
		LearningMode: learning,
	}
	for _, turn := range turns {
		resp.Turns = append(resp.Turns, chat.NewTurnResponse(turn, learning))
	}
	return resp, nil
}

func (s *chatService) GetLearningMode(ctx context.Context, sessionID string) (chat.LearningModeResponse, error) {
	if sessionID == "" {
		return chat.LearningModeResponse{}, chat.ErrSessionRequired
	}

	learning, err := s.assistant.Session(sessionID).LearningMode(ctx)
	if err != nil {
		return chat.LearningModeResponse{}, err
	}
	return chat.LearningModeResponse{SessionID: sessionID, LearningMode: learning}, nil
}

func (s *chatService) GetLearningStats(ctx context.Context) (entity.LearningStats, error) {
	stats, err := s.assistant.Stats(ctx)
	if err != nil {
		logPkg.WithRequestID(ctx, s.log).WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to compute learning stats")
		return entity.LearningStats{}, err
	}
	return stats, nil
}

func (s *chatService) session(id string) (*assistant.Session, error) {
	if id == "" {
		return s.assistant.NewSession()
	}
	return s.assistant.Session(id), nil
}
