package chatService

import (
	"GutAssistant/internal/api/chat"
	"GutAssistant/internal/assistant"
	"GutAssistant/internal/entity"
	"context"

	"github.com/sirupsen/logrus"
)

type IChatService interface {
	SendMessage(ctx context.Context, req chat.SendMessageRequest) (chat.TurnResponse, error)
	SubmitFeedback(ctx context.Context, req chat.FeedbackRequest) (entity.FeedbackAck, error)

	GetHistory(ctx context.Context, sessionID string, limit int) (chat.HistoryResponse, error)
	GetLearningMode(ctx context.Context, sessionID string) (chat.LearningModeResponse, error)
	GetLearningStats(ctx context.Context) (entity.LearningStats, error)
}

type chatService struct {
	log       *logrus.Logger
	assistant *assistant.Assistant
}

func New(log *logrus.Logger, a *assistant.Assistant) IChatService {
	return &chatService{
		log:       log,
		assistant: a,
	}
}
