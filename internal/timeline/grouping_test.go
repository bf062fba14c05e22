package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDaySeparator(t *testing.T) {
	msgs := []domain.Message{
		domain.NewUserMessage("late", at("2025-11-01T23:59")),
		domain.NewUserMessage("early", at("2025-11-02T00:01")),
		domain.NewAIMessage("same day", at("2025-11-02T08:00")),
	}
	assert.True(t, ShowDaySeparator(msgs, 0, time.UTC))
	assert.True(t, ShowDaySeparator(msgs, 1, time.UTC))
	assert.False(t, ShowDaySeparator(msgs, 2, time.UTC))

	// 23:59 UTC and 00:01 UTC are the same day seven hours east.
	ict := time.FixedZone("ICT", 7*3600)
	assert.False(t, ShowDaySeparator(msgs, 1, ict))
}

func TestGrouping(t *testing.T) {
	t.Run("Two Minutes Apart Groups", func(t *testing.T) {
		msgs := []domain.Message{
			domain.NewUserMessage("a", at("2025-11-01T10:00")),
			domain.NewUserMessage("b", at("2025-11-01T10:02")),
		}
		assert.True(t, GroupedWithPrevious(msgs, 1))
		assert.False(t, LastInGroup(msgs, 0))
		assert.True(t, LastInGroup(msgs, 1))
	})

	t.Run("Four Minutes Apart Does Not Group", func(t *testing.T) {
		msgs := []domain.Message{
			domain.NewUserMessage("a", at("2025-11-01T10:00")),
			domain.NewUserMessage("b", at("2025-11-01T10:04")),
		}
		assert.False(t, GroupedWithPrevious(msgs, 1))
		assert.True(t, LastInGroup(msgs, 0))
	})

	t.Run("Different Roles Do Not Group", func(t *testing.T) {
		msgs := []domain.Message{
			domain.NewUserMessage("a", at("2025-11-01T10:00")),
			domain.NewAIMessage("b", at("2025-11-01T10:00")),
		}
		assert.False(t, GroupedWithPrevious(msgs, 1))
		assert.True(t, LastInGroup(msgs, 0))
	})

	t.Run("Exactly Three Minutes Does Not Group", func(t *testing.T) {
		msgs := []domain.Message{
			domain.NewAIMessage("a", at("2025-11-01T10:00")),
			domain.NewAIMessage("b", at("2025-11-01T10:03")),
		}
		assert.False(t, GroupedWithPrevious(msgs, 1))
	})

	t.Run("Zero Timestamp Never Groups", func(t *testing.T) {
		msgs := []domain.Message{
			domain.NewAIMessage("a", at("2025-11-01T10:00")),
			domain.NewAIMessage("b", time.Time{}),
		}
		assert.False(t, GroupedWithPrevious(msgs, 1))
		assert.True(t, ShowDaySeparator(msgs, 1, time.UTC))
	})
}

func TestIsEmptyState(t *testing.T) {
	greeting := domain.Greeting(domain.DefaultPersonality, at("2025-11-01T10:00"))
	assert.True(t, IsEmptyState([]domain.Message{greeting}))
	assert.False(t, IsEmptyState(nil))
	assert.False(t, IsEmptyState([]domain.Message{domain.NewErrorMessage("x", time.Time{})}))
	assert.False(t, IsEmptyState([]domain.Message{greeting, domain.NewUserMessage("hi", time.Time{})}))
}

func TestLayout(t *testing.T) {
	msgs := []domain.Message{
		domain.NewUserMessage("a", at("2025-11-01T10:00")),
		domain.NewUserMessage("b", at("2025-11-01T10:01")),
		domain.NewAIMessage("c", at("2025-11-01T10:01")),
	}
	rows := Layout(msgs, time.UTC)
	assert.Equal(t, []bool{true, false, false}, []bool{rows[0].DaySeparator, rows[1].DaySeparator, rows[2].DaySeparator})
	assert.Equal(t, []bool{false, true, false}, []bool{rows[0].Grouped, rows[1].Grouped, rows[2].Grouped})
	assert.Equal(t, []bool{false, true, true}, []bool{rows[0].LastInGroup, rows[1].LastInGroup, rows[2].LastInGroup})
}

func TestTimeline(t *testing.T) {
	tl := New()
	changes := 0
	tl.OnChange(func() { changes++ })

	tl.Append(domain.NewUserMessage("a", time.Time{}))
	tl.Append(domain.NewAIMessage("b", time.Time{}))
	assert.Equal(t, 2, tl.Len())

	snap := tl.Snapshot()
	snap[0].Text = "mutated"
	assert.Equal(t, "a", tl.Snapshot()[0].Text)

	tl.SetTyping(true)
	tl.SetTyping(true)
	assert.True(t, tl.Typing())

	tl.Reset(domain.Greeting(domain.DefaultPersonality, time.Time{}))
	assert.Equal(t, 1, tl.Len())
	assert.False(t, tl.Typing())
	assert.Equal(t, 4, changes)
}
