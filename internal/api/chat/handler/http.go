package chatHandler

import (
	chatService "GutAssistant/internal/api/chat/service"
	"GutAssistant/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const defaultHistoryLimit = 50

type ChatHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	chatService chatService.IChatService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	chatService chatService.IChatService,
) *ChatHandler {
	return &ChatHandler{
		log:         log,
		validator:   validate,
		middleware:  middleware,
		chatService: chatService,
	}
}

func (h *ChatHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	chat := srv.Group("/chat")

	chat.Post("/messages", h.middleware.NewRateLimiter, h.SendMessage)
	chat.Post("/feedback", h.middleware.NewRateLimiter, h.SubmitFeedback)
	chat.Get("/history/:session_id", h.GetHistory)
	chat.Get("/sessions/:session_id/learning-mode", h.GetLearningMode)
	chat.Get("/learning-stats", h.GetLearningStats)

	chat.Use("/ws", wsMiddleware)
	chat.Get("/ws", websocket.New(h.handleWebSocket))
}
