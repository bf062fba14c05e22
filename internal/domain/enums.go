// Package domain defines the core domain models for the chat client.
package domain

// Role identifies who produced a message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// ConnectionState represents the state of the real-time transport.
type ConnectionState string

const (
	ConnectionDisconnected ConnectionState = "disconnected"
	ConnectionConnecting   ConnectionState = "connecting"
	ConnectionConnected    ConnectionState = "connected"
)
