package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

func TestTimelineMutations(t *testing.T) {
	tl := New()
	changes := 0
	tl.OnChange(func() { changes++ })

	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tl.Reset(domain.Greeting(domain.PersonalityFriendly, ts))
	tl.Append(domain.NewUserMessage("hi", ts))
	require.Equal(t, 2, tl.Len())

	tl.SetTyping(true)
	tl.SetTyping(true)
	assert.True(t, tl.Typing())
	assert.Equal(t, 3, changes)

	snap := tl.Snapshot()
	snap[0].Text = "changed"
	assert.NotEqual(t, "changed", tl.Snapshot()[0].Text)

	tl.Replace([]domain.Message{domain.NewAIMessage("loaded", ts)})
	assert.False(t, tl.Typing())
	assert.Equal(t, 1, tl.Len())
	assert.Equal(t, 4, changes)
}
