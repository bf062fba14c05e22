package command

import (
	"fmt"
	"strings"
	"time"
)

// Period is a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod accepts "THIS" (any case) or "YYYY-MM". Empty or unparsable
// values resolve to the month of now.
func ParsePeriod(raw string, now time.Time) Period {
	current := Period{Year: now.Year(), Month: now.Month()}
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "this") {
		return current
	}
	t, err := time.ParseInLocation("2006-01", raw, now.Location())
	if err != nil {
		return current
	}
	return Period{Year: t.Year(), Month: t.Month()}
}

// Bounds returns the first and last day of the month.
func (p Period) Bounds(loc *time.Location) (time.Time, time.Time) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)
	return start, end
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
