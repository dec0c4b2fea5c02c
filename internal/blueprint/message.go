package blueprint

import (
	"strings"
	"time"
)

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one entry of the append-only conversation owned by the UI layer.
type ChatMessage struct {
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewMessage builds a message stamped with now (UTC).
func NewMessage(role Role, content string, now time.Time, suggestions ...string) ChatMessage {
	msg := ChatMessage{
		Role:      role,
		Content:   strings.TrimSpace(content),
		Timestamp: now.UTC(),
	}
	if len(suggestions) > 0 {
		msg.Suggestions = append([]string{}, suggestions...)
	}
	return msg
}
