// Package timeline holds the messages of the active conversation and derives
// how they are grouped on screen.
package timeline

import (
	"sync"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

// Timeline is the ordered message log of the active conversation. Messages
// are never modified once appended.
type Timeline struct {
	mu       sync.Mutex
	messages []domain.Message
	typing   bool
	onChange func()
}

// New creates an empty timeline.
func New() *Timeline {
	return &Timeline{}
}

// OnChange registers a callback run after every mutation, outside the lock.
func (t *Timeline) OnChange(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Append adds a message at the end.
func (t *Timeline) Append(msg domain.Message) {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	fn := t.onChange
	t.mu.Unlock()
	notify(fn)
}

// Replace swaps the whole log, e.g. after loading a conversation's history.
func (t *Timeline) Replace(msgs []domain.Message) {
	t.mu.Lock()
	t.messages = append([]domain.Message(nil), msgs...)
	t.typing = false
	fn := t.onChange
	t.mu.Unlock()
	notify(fn)
}

// Reset empties the log and appends msg.
func (t *Timeline) Reset(msg domain.Message) {
	t.Replace([]domain.Message{msg})
}

// Snapshot returns a copy of the log.
func (t *Timeline) Snapshot() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Message(nil), t.messages...)
}

// Len returns the number of messages.
func (t *Timeline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// SetTyping shows or hides the assistant typing indicator.
func (t *Timeline) SetTyping(typing bool) {
	t.mu.Lock()
	changed := t.typing != typing
	t.typing = typing
	fn := t.onChange
	t.mu.Unlock()
	if changed {
		notify(fn)
	}
}

// Typing reports whether the typing indicator is shown.
func (t *Timeline) Typing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.typing
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}
