package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("Quoted And Bare Values", func(t *testing.T) {
		p, ok := Parse(`/add amount=50000 category="Food & Drink" note='lunch with team'`)
		require.True(t, ok)
		assert.Equal(t, "add", p.Name)
		assert.Equal(t, map[string]string{
			"amount":   "50000",
			"category": "Food & Drink",
			"note":     "lunch with team",
		}, p.Args)
	})

	t.Run("Name Is Lower Cased", func(t *testing.T) {
		p, ok := Parse("/HELP")
		require.True(t, ok)
		assert.Equal(t, "help", p.Name)
		assert.Empty(t, p.Args)
	})

	t.Run("Duplicate Key Keeps Last", func(t *testing.T) {
		p, ok := Parse("/budget amount=1 amount=2 category=food")
		require.True(t, ok)
		assert.Equal(t, "2", p.Args["amount"])
	})

	t.Run("Unrecognized Tokens Are Dropped", func(t *testing.T) {
		p, ok := Parse("/budget hello amount=10 = world category=")
		require.True(t, ok)
		assert.Equal(t, map[string]string{"amount": "10"}, p.Args)
	})

	t.Run("Unterminated Quote Falls Back To Bare", func(t *testing.T) {
		p, ok := Parse(`/remember key=city value="Ha Noi`)
		require.True(t, ok)
		assert.Equal(t, "city", p.Args["key"])
		assert.Equal(t, `"Ha`, p.Args["value"])
	})

	t.Run("Empty Quoted Value", func(t *testing.T) {
		p, ok := Parse(`/add category=""`)
		require.True(t, ok)
		v, present := p.Args["category"]
		assert.True(t, present)
		assert.Equal(t, "", v)
	})

	t.Run("Tab Separated", func(t *testing.T) {
		p, ok := Parse("/trends\tmonths=3")
		require.True(t, ok)
		assert.Equal(t, "trends", p.Name)
		assert.Equal(t, "3", p.Args["months"])
	})

	t.Run("Not A Command", func(t *testing.T) {
		_, ok := Parse("hello /add")
		assert.False(t, ok)
		_, ok = Parse("/")
		assert.False(t, ok)
	})
}
