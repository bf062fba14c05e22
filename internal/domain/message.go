package domain

import "time"

// Attachment describes a file sent along with a message.
type Attachment struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Source is a named deep-link the UI may render as an action.
type Source struct {
	Label string `json:"label"`
	Route string `json:"route,omitempty"`
	Href  string `json:"href,omitempty"`
}

// Message is a single entry of a conversation timeline. It is never mutated
// after it has been appended.
type Message struct {
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	Timestamp   time.Time    `json:"timestamp"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Sources     []Source     `json:"sources,omitempty"`
	IsError     bool         `json:"is_error"`
}

// NewUserMessage builds a message typed by the user.
func NewUserMessage(text string, ts time.Time) Message {
	return Message{Role: RoleUser, Text: text, Timestamp: ts}
}

// NewAIMessage builds a system/assistant message.
func NewAIMessage(text string, ts time.Time, sources ...Source) Message {
	return Message{Role: RoleAI, Text: text, Timestamp: ts, Sources: sources}
}

// NewErrorMessage builds an error-flagged assistant message.
func NewErrorMessage(text string, ts time.Time) Message {
	return Message{Role: RoleAI, Text: text, Timestamp: ts, IsError: true}
}

// Greeting returns the default greeting message for a personality.
func Greeting(p Personality, ts time.Time) Message {
	return NewAIMessage(p.Info().Greeting, ts)
}
