package entity

import (
	"strings"
	"time"
)

// Message is a single user submission. It is never mutated after creation.
type Message struct {
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
	SessionID  string    `json:"session_id"`
}

type UserProfile struct {
	Diet       string   `json:"diet"`
	Allergies  []string `json:"allergies"`
	Goal       string   `json:"goal"`
	Conditions []string `json:"conditions,omitempty"`
}

func (p UserProfile) HasAllergy(name string) bool {
	for _, a := range p.Allergies {
		if strings.EqualFold(strings.TrimSpace(a), name) {
			return true
		}
	}
	return false
}
