package chat

import "GutAssistant/pkg/response"

var (
	ErrInvalidRequest   = response.NewError(400, "invalid request body")
	ErrInvalidLimit     = response.NewError(400, "limit must be a positive integer")
	ErrSessionRequired  = response.NewError(400, "session id is required")
	ErrInvalidFrame     = response.NewError(400, "invalid websocket frame")
	ErrOverrideNotFound = response.NewError(404, "override not found")
	ErrStoreUnavailable = response.NewError(503, "feedback store unavailable")
)
