package domain

import "errors"

// Failure classes. Callers wrap these with %w and classify with errors.Is.
var (
	// ErrParseIgnored marks input that looked like a command but is not one.
	// It falls through to normal message sending.
	ErrParseIgnored = errors.New("command not recognized")

	// ErrValidationFailed is returned when a command's arguments are rejected.
	ErrValidationFailed = errors.New("validation failed")

	// ErrCollaboratorFailure wraps network or remote errors from any backend store.
	ErrCollaboratorFailure = errors.New("collaborator failure")

	// ErrTransportNotConnected is returned by sends attempted while disconnected.
	ErrTransportNotConnected = errors.New("transport not connected")

	// ErrTransportError wraps asynchronous or write errors from the channel.
	ErrTransportError = errors.New("transport error")

	// ErrUnknownConversation is returned when an operation names a conversation
	// that is not in the last fetched list.
	ErrUnknownConversation = errors.New("unknown conversation")
)
