package chat

import (
	"GutAssistant/internal/entity"
	"time"
)

type UserProfileRequest struct {
	Diet       string   `json:"diet,omitempty" validate:"omitempty,max=64"`
	Allergies  []string `json:"allergies,omitempty" validate:"omitempty,max=32,dive,max=64"`
	Goal       string   `json:"goal,omitempty" validate:"omitempty,max=128"`
	Conditions []string `json:"conditions,omitempty" validate:"omitempty,max=32,dive,max=64"`
}

func (p UserProfileRequest) ToEntity() entity.UserProfile {
	return entity.UserProfile{
		Diet:       p.Diet,
		Allergies:  p.Allergies,
		Goal:       p.Goal,
		Conditions: p.Conditions,
	}
}

type SendMessageRequest struct {
	SessionID   string             `json:"session_id,omitempty" validate:"omitempty,max=64"`
	Message     string             `json:"message" validate:"required,max=2000"`
	UserProfile UserProfileRequest `json:"user_profile"`
}

type FeedbackRequest struct {
	SessionID      string  `json:"session_id,omitempty" validate:"omitempty,max=64"`
	TurnID         string  `json:"turn_id" validate:"required,max=64"`
	IsCorrect      *bool   `json:"is_correct" validate:"required"`
	CustomResponse *string `json:"custom_response,omitempty" validate:"omitempty,max=2000"`
	CorrectIntent  *string `json:"correct_intent,omitempty" validate:"omitempty,max=64"`
}

type TurnResponse struct {
	TurnID          string          `json:"turn_id"`
	SessionID       string          `json:"session_id"`
	Message         string          `json:"message"`
	Intent          string          `json:"intent"`
	Keywords        []string        `json:"keywords"`
	Entities        []entity.Entity `json:"entities"`
	Confidence      float64         `json:"confidence"`
	ResponseText    string          `json:"response_text"`
	Recommendations []string        `json:"recommendations"`
	Provenance      string          `json:"provenance"`
	NeedsFeedback   bool            `json:"needs_feedback"`
	WasCorrect      *bool           `json:"was_correct,omitempty"`
	LearningMode    bool            `json:"learning_mode"`
	CreatedAt       time.Time       `json:"created_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

func NewTurnResponse(turn entity.ConversationTurn, learningMode bool) TurnResponse {
	keywords := turn.Classification.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	entities := turn.Classification.Entities
	if entities == nil {
		entities = []entity.Entity{}
	}
	recommendations := turn.Response.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	return TurnResponse{
		TurnID:          turn.ID,
		SessionID:       turn.SessionID,
		Message:         turn.Message.Text,
		Intent:          string(turn.Classification.Intent),
		Keywords:        keywords,
		Entities:        entities,
		Confidence:      turn.Classification.Confidence,
		ResponseText:    turn.Response.ResponseText,
		Recommendations: recommendations,
		Provenance:      string(turn.Response.Provenance),
		NeedsFeedback:   turn.NeedsFeedback,
		WasCorrect:      turn.WasCorrect,
		LearningMode:    learningMode,
		CreatedAt:       turn.CreatedAt,
		ResolvedAt:      turn.ResolvedAt,
	}
}

type HistoryResponse struct {
	SessionID    string         `json:"session_id"`
	Turns        []TurnResponse `json:"turns"`
	LearningMode bool           `json:"learning_mode"`
}

type LearningModeResponse struct {
	SessionID    string `json:"session_id"`
	LearningMode bool   `json:"learning_mode"`
}

const (
	FrameTypeMessage  = "message"
	FrameTypeFeedback = "feedback"
	FrameTypeError    = "error"
)

// WSFrame is the envelope for websocket traffic in both directions.
type WSFrame struct {
	Type     string              `json:"type" validate:"required,oneof=message feedback"`
	Message  *SendMessageRequest `json:"message,omitempty"`
	Feedback *FeedbackRequest    `json:"feedback,omitempty"`
}

type WSReply struct {
	Type     string              `json:"type"`
	Turn     *TurnResponse       `json:"turn,omitempty"`
	Feedback *entity.FeedbackAck `json:"feedback,omitempty"`
	Error    string              `json:"error,omitempty"`
	Code     string              `json:"code,omitempty"`
}
