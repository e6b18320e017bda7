// Package session stores per-session chat transcripts for the backend.
package session

import (
	"strings"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ReadableHistory renders a transcript as the human-readable text shown in
// history viewers: one "Role: content" paragraph per message.
func ReadableHistory(messages []Message) string {
	var b strings.Builder

	for _, m := range messages {
		role := m.Role
		if role == "" {
			role = "unknown"
		}

		b.WriteString(capitalize(role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}

// Reset builds a fresh transcript, seeded with a system message when a
// system prompt is set.
func Reset(systemPrompt string) []Message {
	if systemPrompt == "" {
		return []Message{}
	}

	return []Message{{Role: RoleSystem, Content: systemPrompt}}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
