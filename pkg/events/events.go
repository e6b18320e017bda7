// Package events defines the chat lifecycle notifications published on the
// event bus.
package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const Topic = "chatgraph.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ChatResponseGeneratedEvent EventType = "chat.response.generated"
	ChatPromptDeliveredEvent   EventType = "chat.prompt.delivered"
	ChatSessionClearedEvent    EventType = "chat.session.cleared"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, sessionID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
	}
}

// ChatResponseGenerated is published after a provider call succeeds and the
// assistant message has been appended to the session.
type ChatResponseGenerated struct {
	BaseEvent

	Provider string `json:"provider"`
	Model    string `json:"model"`
	Turns    int    `json:"turns"`
}

func (e ChatResponseGenerated) GetType() EventType {
	return ChatResponseGeneratedEvent
}

// ChatPromptDelivered is published when a session's latest assistant reply is
// handed downstream as a prompt.
type ChatPromptDelivered struct {
	BaseEvent

	PromptLength int `json:"prompt_length"`
}

func (e ChatPromptDelivered) GetType() EventType {
	return ChatPromptDeliveredEvent
}

// ChatSessionCleared is published when a session transcript is reset.
type ChatSessionCleared struct {
	BaseEvent
}

func (e ChatSessionCleared) GetType() EventType {
	return ChatSessionClearedEvent
}
