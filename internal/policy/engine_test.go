package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultCommandPolicy)
	require.NoError(t, err)
	return engine
}

func TestBudgetPolicy(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	t.Run("Allow Valid Budget", func(t *testing.T) {
		d, err := engine.Validate(ctx, "budget", map[string]interface{}{
			"amount":   1500000.0,
			"category": "food",
		})
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Empty(t, d.Reasons)
	})

	t.Run("Block Zero Amount", func(t *testing.T) {
		d, err := engine.Validate(ctx, "budget", map[string]interface{}{
			"amount":   0.0,
			"category": "food",
		})
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, []string{"amount must be a positive number"}, d.Reasons)
	})

	t.Run("Block Missing Category", func(t *testing.T) {
		d, err := engine.Validate(ctx, "budget", map[string]interface{}{
			"amount": 100.0,
		})
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, []string{"category is required"}, d.Reasons)
	})

	t.Run("Block Blank Category And Negative Amount", func(t *testing.T) {
		d, err := engine.Validate(ctx, "budget", map[string]interface{}{
			"amount":   -5.0,
			"category": "   ",
		})
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Len(t, d.Reasons, 2)
	})
}

func TestEditPolicy(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	d, err := engine.Validate(ctx, "edit", map[string]interface{}{
		"id":          "12",
		"field_count": 0,
	})
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Contains(t, d.Reasons, "at least one field to change is required")

	d, err = engine.Validate(ctx, "edit", map[string]interface{}{
		"id":           "12",
		"field_count":  1,
		"amount_valid": true,
		"date_valid":   true,
	})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestMissingTextArgumentsAreReported(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		command string
		args    map[string]interface{}
		want    []string
	}{
		{"add", map[string]interface{}{"amount": 10.0}, []string{"category is required"}},
		{"edit", map[string]interface{}{"field_count": 1}, []string{"id is required"}},
		{"goal", map[string]interface{}{"target": 10.0}, []string{"name is required"}},
		{"remember", map[string]interface{}{"value": "y"}, []string{"key is required"}},
		{"remember", nil, []string{"key is required", "value is required"}},
	}
	for _, tt := range tests {
		d, err := engine.Validate(ctx, tt.command, tt.args)
		require.NoError(t, err)
		assert.False(t, d.Allowed, "command=%s args=%v", tt.command, tt.args)
		assert.ElementsMatch(t, tt.want, d.Reasons, "command=%s args=%v", tt.command, tt.args)
	}
}

func TestUnknownCommandIsAllowed(t *testing.T) {
	engine := newTestEngine(t)

	d, err := engine.Validate(context.Background(), "balance", map[string]interface{}{})
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}
