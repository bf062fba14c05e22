package domain

import (
	"strings"
	"time"
)

// Conversation is a persisted chat session with its personality.
type Conversation struct {
	ID          string      `json:"id"`
	Personality Personality `json:"personality"`
	Title       string      `json:"title,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// HistoryRecord is a message as stored by the remote session store.
// Timestamp is kept raw; use ParseTimestamp to read it.
type HistoryRecord struct {
	User      bool   `json:"user"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ToMessage maps a stored record onto a timeline message.
func (r HistoryRecord) ToMessage() Message {
	role := RoleAI
	if r.User {
		role = RoleUser
	}
	return Message{Role: role, Text: r.Content, Timestamp: ParseTimestamp(r.Timestamp)}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp reads the timestamp formats the backend emits. Malformed or
// empty input yields the zero time, which the timeline treats as ungrouped.
func ParseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
