package transport

import "encoding/json"

// Event is an inbound transport event. The concrete types are Connected,
// Disconnected, ConnectError, ServerAck, ResponseReceived and ErrorReceived.
type Event interface {
	isEvent()
}

// Connected is emitted when the socket is up.
type Connected struct{}

// Disconnected is emitted when an established socket goes away.
type Disconnected struct {
	Reason string
}

// ConnectError is emitted for every failed dial.
type ConnectError struct {
	Err     error
	Attempt int // 0 for the initial connect
}

// ServerAck is the server's "connected" frame.
type ServerAck struct {
	Data json.RawMessage
}

// ResponseReceived carries assistant text.
type ResponseReceived struct {
	Done bool
	Data string
}

// ErrorReceived carries a server-side error meant for the user.
type ErrorReceived struct {
	Message string
}

func (Connected) isEvent()        {}
func (Disconnected) isEvent()     {}
func (ConnectError) isEvent()     {}
func (ServerAck) isEvent()        {}
func (ResponseReceived) isEvent() {}
func (ErrorReceived) isEvent()    {}
