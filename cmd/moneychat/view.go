package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/render"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/timeline"
)

type personalitySource interface {
	Personality() domain.Personality
}

// view prints timeline changes as they happen. Appends are printed
// incrementally; anything else redraws the whole timeline.
type view struct {
	out      io.Writer
	renderer *render.Renderer
	timeline *timeline.Timeline
	persona  personalitySource

	mu      sync.Mutex
	printed []domain.Message
	typing  bool
}

func newView(out io.Writer, r *render.Renderer, tl *timeline.Timeline, persona personalitySource) *view {
	return &view{out: out, renderer: r, timeline: tl, persona: persona}
}

func (v *view) refresh() {
	msgs := v.timeline.Snapshot()
	typing := v.timeline.Typing()

	v.mu.Lock()
	defer v.mu.Unlock()

	v.renderer.SetPersonality(v.persona.Personality())
	if len(v.printed) == 0 || !hasPrefix(msgs, v.printed) {
		fmt.Fprint(v.out, "\n"+v.renderer.Timeline(msgs, false))
	} else {
		for _, m := range msgs[len(v.printed):] {
			fmt.Fprintln(v.out, v.renderer.Message(m))
		}
	}
	if typing && !v.typing {
		fmt.Fprintln(v.out, v.renderer.Typing())
	}
	v.printed = msgs
	v.typing = typing
}

// status prints the connection line.
func (v *view) status(state domain.ConnectionState, conv *domain.Conversation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, v.renderer.Status(state, conv))
}

func hasPrefix(msgs, prefix []domain.Message) bool {
	if len(prefix) > len(msgs) {
		return false
	}
	for i := range prefix {
		a, b := msgs[i], prefix[i]
		if a.Role != b.Role || a.Text != b.Text || a.IsError != b.IsError || !a.Timestamp.Equal(b.Timestamp) {
			return false
		}
	}
	return true
}
