package handlerUtil

import (
	"GutAssistant/internal/api/chat"
	"GutAssistant/internal/assistant"
	"GutAssistant/pkg/log"
	"GutAssistant/pkg/response"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

type domainError struct {
	err     error
	status  int
	code    string
	message string
}

var domainErrors = []domainError{
	{assistant.ErrDuplicateFeedback, fiber.StatusConflict, "DUPLICATE_FEEDBACK", "Feedback was already recorded for this turn"},
	{assistant.ErrTurnNotFound, fiber.StatusNotFound, "TURN_NOT_FOUND", "Conversation turn not found"},
	{assistant.ErrMalformedMessage, fiber.StatusBadRequest, "MALFORMED_MESSAGE", "Message must not be empty"},
	{assistant.ErrInvalidIntent, fiber.StatusBadRequest, "INVALID_INTENT", "Unknown intent label"},
	{chat.ErrInvalidRequest, fiber.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"},
	{chat.ErrInvalidLimit, fiber.StatusBadRequest, "INVALID_LIMIT", "Limit must be a positive integer"},
	{chat.ErrSessionRequired, fiber.StatusBadRequest, "SESSION_REQUIRED", "Session id is required"},
	{chat.ErrInvalidFrame, fiber.StatusBadRequest, "INVALID_FRAME", "Invalid websocket frame"},
	{chat.ErrStoreUnavailable, fiber.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Feedback store unavailable"},
}

// Classify maps err to the status and body sent to clients.
func Classify(err error) (int, ErrorResponse) {
	for _, d := range domainErrors {
		if errors.Is(err, d.err) {
			return d.status, ErrorResponse{Error: d.message, Code: d.code}
		}
	}

	if status, ok := response.StatusOf(err); ok {
		return status, ErrorResponse{Error: err.Error()}
	}

	return fiber.StatusInternalServerError, ErrorResponse{Error: "An unexpected error occurred", Code: "INTERNAL_ERROR"}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	status, resp := Classify(err)

	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"code":       status,
		"path":       path,
		"operation":  operation,
	}
	if status >= fiber.StatusInternalServerError {
		resp.Details = "trace_id: " + log.ErrorWithTraceID(fields, "Unexpected error")
	} else {
		h.logger.WithFields(fields).Warn("Operation failed with error response")
	}

	return c.Status(status).JSON(resp)
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
