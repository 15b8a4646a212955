package session

import (
	"gsr_locator/internal/lookup"

	"github.com/google/uuid"
)

// EventRequest is the body of POST /sessions/:id/events.
type EventRequest struct {
	Type    string `json:"type" validate:"required,oneof=input focus blur outside_click pick"`
	Text    string `json:"text" validate:"max=200"`
	PlaceID string `json:"placeId" validate:"required_if=Type pick,max=200"`
}

func (r EventRequest) toEvent() lookup.Event {
	return lookup.Event{
		Type:    lookup.EventType(r.Type),
		Text:    r.Text,
		PlaceID: r.PlaceID,
	}
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	SessionID uuid.UUID      `json:"sessionId"`
	State     lookup.UiState `json:"state"`
}
