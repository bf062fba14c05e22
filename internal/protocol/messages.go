// Package protocol defines the chat WebSocket frames exchanged with the backend.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Frame types from client to server
const (
	TypeMessage = "message"
)

// Frame types from server to client
const (
	TypeConnected = "connected"
	TypeResponse  = "response"
	TypeError     = "error"
)

// BaseMessage contains common fields for all frames.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
}

// ChatMessage is sent by the client with a user's text.
type ChatMessage struct {
	BaseMessage
	Message     string `json:"message"`
	Personality string `json:"personality"`
}

// ConnectedMessage is the server's acknowledgment after the socket opens.
type ConnectedMessage struct {
	BaseMessage
	Data json.RawMessage `json:"data,omitempty"`
}

// ResponseMessage carries assistant text. Done is false for partial chunks.
type ResponseMessage struct {
	BaseMessage
	Done bool   `json:"done"`
	Data string `json:"data"`
}

// ErrorMessage carries a user-facing error text.
type ErrorMessage struct {
	BaseMessage
	Data string `json:"data"`
}

// NewBase stamps a frame with its type, time and a fresh request id.
func NewBase(frameType string, now time.Time) BaseMessage {
	return BaseMessage{
		Type:      frameType,
		Ts:        now.UnixMilli(),
		RequestID: uuid.NewString(),
	}
}

// NewChatMessage builds an outbound chat frame.
func NewChatMessage(text, personality string, now time.Time) *ChatMessage {
	return &ChatMessage{
		BaseMessage: NewBase(TypeMessage, now),
		Message:     text,
		Personality: personality,
	}
}

// Decode parses an inbound frame into its concrete type. Unknown types are
// returned as *BaseMessage.
func Decode(data []byte) (interface{}, error) {
	var base BaseMessage
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}

	var msg interface{}
	switch base.Type {
	case TypeConnected:
		msg = &ConnectedMessage{}
	case TypeResponse:
		msg = &ResponseMessage{}
	case TypeError:
		msg = &ErrorMessage{}
	case TypeMessage:
		msg = &ChatMessage{}
	default:
		return &base, nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("invalid %s frame: %w", base.Type, err)
	}
	return msg, nil
}
