package timeline

import (
	"time"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

// GroupingWindow is the gap under which consecutive messages of one sender
// are drawn as a single group.
const GroupingWindow = 3 * time.Minute

// ShowDaySeparator reports whether a date separator goes before msgs[i].
// Messages without a timestamp always get one.
func ShowDaySeparator(msgs []domain.Message, i int, loc *time.Location) bool {
	if i == 0 {
		return true
	}
	cur, prev := msgs[i].Timestamp, msgs[i-1].Timestamp
	if cur.IsZero() || prev.IsZero() {
		return true
	}
	return !sameDay(cur.In(loc), prev.In(loc))
}

// GroupedWithPrevious reports whether msgs[i] continues the group of
// msgs[i-1], which hides its sender header.
func GroupedWithPrevious(msgs []domain.Message, i int) bool {
	if i == 0 {
		return false
	}
	return closeTogether(msgs[i-1], msgs[i])
}

// LastInGroup reports whether msgs[i] ends its group.
func LastInGroup(msgs []domain.Message, i int) bool {
	if i == len(msgs)-1 {
		return true
	}
	return !closeTogether(msgs[i], msgs[i+1])
}

// IsEmptyState reports whether the conversation only holds its greeting.
func IsEmptyState(msgs []domain.Message) bool {
	return len(msgs) == 1 && msgs[0].Role == domain.RoleAI && !msgs[0].IsError
}

func closeTogether(a, b domain.Message) bool {
	if a.Role != b.Role || a.Timestamp.IsZero() || b.Timestamp.IsZero() {
		return false
	}
	gap := b.Timestamp.Sub(a.Timestamp)
	if gap < 0 {
		gap = -gap
	}
	return gap < GroupingWindow
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Row is a message with its derived layout flags.
type Row struct {
	Message      domain.Message
	DaySeparator bool
	Grouped      bool
	LastInGroup  bool
}

// Layout derives the rows of msgs in loc.
func Layout(msgs []domain.Message, loc *time.Location) []Row {
	rows := make([]Row, len(msgs))
	for i, m := range msgs {
		rows[i] = Row{
			Message:      m,
			DaySeparator: ShowDaySeparator(msgs, i, loc),
			Grouped:      GroupedWithPrevious(msgs, i),
			LastInGroup:  LastInGroup(msgs, i),
		}
	}
	return rows
}
