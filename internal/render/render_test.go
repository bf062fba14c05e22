package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

func newTestRenderer() *Renderer {
	return New(&bytes.Buffer{}, time.UTC)
}

func TestTimeline_EmptyStateShowsQuickActions(t *testing.T) {
	r := newTestRenderer()
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	out := r.Timeline([]domain.Message{domain.Greeting(domain.PersonalityFriendly, ts)}, false)

	assert.Contains(t, out, "Tue, 10 Mar 2026")
	assert.Contains(t, out, "Friendly")
	assert.Contains(t, out, "Try one of these:")
	assert.Contains(t, out, "/balance")
	assert.NotContains(t, out, "is typing")
}

func TestTimeline_GroupedMessagesShareHeader(t *testing.T) {
	r := newTestRenderer()
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	msgs := []domain.Message{
		domain.NewUserMessage("first", ts),
		domain.NewUserMessage("second", ts.Add(time.Minute)),
		domain.NewUserMessage("third", ts.Add(10*time.Minute)),
	}

	out := r.Timeline(msgs, false)

	assert.Equal(t, 2, strings.Count(out, "You"))
	assert.Equal(t, 1, strings.Count(out, "Tue, 10 Mar 2026"))
	assert.NotContains(t, out, "Try one of these:")
}

func TestTimeline_DaySeparatorPerDay(t *testing.T) {
	r := newTestRenderer()
	ts := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	msgs := []domain.Message{
		domain.NewUserMessage("late", ts),
		domain.NewUserMessage("early", ts.Add(2*time.Minute)),
	}

	out := r.Timeline(msgs, false)

	assert.Contains(t, out, "Tue, 10 Mar 2026")
	assert.Contains(t, out, "Wed, 11 Mar 2026")
}

func TestTimeline_TypingIndicator(t *testing.T) {
	r := newTestRenderer()
	r.SetPersonality(domain.PersonalityGrumpy)
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	out := r.Timeline([]domain.Message{domain.NewUserMessage("hi", ts)}, true)

	assert.True(t, strings.HasSuffix(out, "Grumpy is typing...\n"))
}

func TestMessage_SourcesAndErrors(t *testing.T) {
	r := newTestRenderer()
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	out := r.Message(domain.NewAIMessage("done", ts, domain.Source{Label: "Open expenses", Route: "/expenses"}))
	assert.Contains(t, out, "Open expenses")
	assert.Contains(t, out, "(/expenses)")

	out = r.Message(domain.NewErrorMessage("boom", ts))
	assert.Contains(t, out, "boom")
}

func TestStatus(t *testing.T) {
	r := newTestRenderer()

	out := r.Status(domain.ConnectionConnected, &domain.Conversation{ID: "1", Personality: domain.PersonalityCasual})
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "New chat")
	assert.Contains(t, out, "Casual")

	out = r.Status(domain.ConnectionDisconnected, nil)
	require.Contains(t, out, "disconnected")
	assert.Contains(t, out, "no conversation")
}
