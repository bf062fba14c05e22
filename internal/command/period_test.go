package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		raw  string
		want string
	}{
		{"", "2026-03"},
		{"THIS", "2026-03"},
		{"this", "2026-03"},
		{"2025-12", "2025-12"},
		{"2025-13", "2026-03"},
		{"december", "2026-03"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePeriod(tt.raw, now).String(), "raw=%q", tt.raw)
	}
}

func TestPeriodBounds(t *testing.T) {
	start, end := Period{Year: 2024, Month: time.February}.Bounds(time.UTC)
	assert.Equal(t, "2024-02-01", start.Format("2006-01-02"))
	assert.Equal(t, "2024-02-29", end.Format("2006-01-02"))
	assert.Equal(t, "2024-02", Period{Year: 2024, Month: time.February}.String())
}
