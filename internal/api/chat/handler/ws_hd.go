package chatHandler

import (
	"GutAssistant/internal/api/chat"
	"GutAssistant/internal/middleware"
	contextPkg "GutAssistant/pkg/context"
	"GutAssistant/pkg/handlerUtil"
	"GutAssistant/pkg/log"
	"github.com/gofiber/websocket/v2"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/net/context"
	"time"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	wsReadTimeout  = 5 * time.Minute
	wsWriteTimeout = 10 * time.Second
)

// handleWebSocket serves one chat session per connection. The session id is
// fixed by the first message frame (or generated for it) and reused for the
// rest of the connection.
func (h *ChatHandler) handleWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	if requestID == "" {
		requestID = "unknown"
	}
	sessionID := c.Query("session_id")

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"session_id": sessionID,
	}).Info("Chat WebSocket client connected")
	defer h.log.WithFields(log.Fields{
		"request_id": requestID,
	}).Info("Chat WebSocket client disconnected")

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			h.log.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Errorf("Chat WebSocket error: %v", err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			h.log.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		reply := h.handleFrame(requestID, &sessionID, message)

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			h.log.Errorf("Error setting write deadline: %v", err)
			break
		}
		if err := c.WriteJSON(reply); err != nil {
			h.log.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func (h *ChatHandler) handleFrame(requestID string, sessionID *string, raw []byte) chat.WSReply {
	ctx, cancel := context.WithTimeout(contextPkg.WithRequestID(context.Background(), requestID), 10*time.Second)
	defer cancel()

	var frame chat.WSFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return errorReply(chat.ErrInvalidFrame)
	}
	if err := h.validator.Struct(frame); err != nil {
		return errorReply(chat.ErrInvalidFrame)
	}

	switch frame.Type {
	case chat.FrameTypeMessage:
		if frame.Message == nil {
			return errorReply(chat.ErrInvalidFrame)
		}
		req := *frame.Message
		if req.SessionID == "" {
			req.SessionID = *sessionID
		}
		if err := h.validator.Struct(req); err != nil {
			return errorReply(chat.ErrInvalidRequest)
		}

		turn, err := h.chatService.SendMessage(ctx, req)
		if err != nil {
			return errorReply(err)
		}
		*sessionID = turn.SessionID
		return chat.WSReply{Type: chat.FrameTypeMessage, Turn: &turn}

	case chat.FrameTypeFeedback:
		if frame.Feedback == nil {
			return errorReply(chat.ErrInvalidFrame)
		}
		req := *frame.Feedback
		if req.SessionID == "" {
			req.SessionID = *sessionID
		}
		if err := h.validator.Struct(req); err != nil {
			return errorReply(chat.ErrInvalidRequest)
		}

		ack, err := h.chatService.SubmitFeedback(ctx, req)
		if err != nil {
			return errorReply(err)
		}
		return chat.WSReply{Type: chat.FrameTypeFeedback, Feedback: &ack}
	}

	return errorReply(chat.ErrInvalidFrame)
}

func errorReply(err error) chat.WSReply {
	_, resp := handlerUtil.Classify(err)
	return chat.WSReply{Type: chat.FrameTypeError, Error: resp.Error, Code: resp.Code}
}
