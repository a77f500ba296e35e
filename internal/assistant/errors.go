package assistant

import "GutAssistant/pkg/response"

var (
	ErrMalformedMessage  = response.NewError(400, "message is empty")
	ErrInvalidIntent     = response.NewError(400, "invalid intent label")
	ErrTurnNotFound      = response.NewError(404, "conversation turn not found")
	ErrDuplicateFeedback = response.NewError(409, "feedback already recorded for turn")
)
