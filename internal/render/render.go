// Package render draws the chat timeline and status line for a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/command"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/timeline"
)

// Color palette
var (
	Foreground  = lipgloss.Color("#f2f2f2")
	Muted       = lipgloss.Color("#7a8699")
	Border      = lipgloss.Color("#2a3850")
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

// Styles holds the styled components used by the Renderer.
type Styles struct {
	Separator lipgloss.Style
	Sender    lipgloss.Style
	Time      lipgloss.Style
	UserText  lipgloss.Style
	AIText    lipgloss.Style
	Error     lipgloss.Style
	Source    lipgloss.Style
	Typing    lipgloss.Style
	Action    lipgloss.Style
	Connected lipgloss.Style
	Pending   lipgloss.Style
	Offline   lipgloss.Style
	Title     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, accent lipgloss.Color) Styles {
	return Styles{
		Separator: r.NewStyle().Foreground(Muted).Italic(true),
		Sender:    r.NewStyle().Foreground(accent).Bold(true),
		Time:      r.NewStyle().Foreground(Muted),
		UserText:  r.NewStyle().Foreground(Foreground),
		AIText: r.NewStyle().
			Foreground(Foreground).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(accent),
		Error: r.NewStyle().
			Foreground(Destructive).
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(Destructive),
		Source:    r.NewStyle().Foreground(Info).Underline(true),
		Typing:    r.NewStyle().Foreground(Muted).Italic(true),
		Action:    r.NewStyle().Foreground(accent).Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(Border),
		Connected: r.NewStyle().Foreground(Success).Bold(true),
		Pending:   r.NewStyle().Foreground(Warning).Bold(true),
		Offline:   r.NewStyle().Foreground(Destructive).Bold(true),
		Title:     r.NewStyle().Foreground(accent).Bold(true),
	}
}

// Renderer turns timeline snapshots into terminal text. Output written to a
// non-terminal writer carries no escape sequences.
type Renderer struct {
	r        *lipgloss.Renderer
	loc      *time.Location
	persona  domain.Personality
	styles   Styles
	userName string
}

// New creates a Renderer whose color profile is detected from w.
func New(w io.Writer, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	rr := &Renderer{
		r:        lipgloss.NewRenderer(w),
		loc:      loc,
		userName: "You",
	}
	rr.SetPersonality(domain.DefaultPersonality)
	return rr
}

// SetPersonality switches the accent color and AI sender label.
func (rr *Renderer) SetPersonality(p domain.Personality) {
	rr.persona = p
	rr.styles = newStyles(rr.r, lipgloss.Color(p.Info().Accent))
}

// Timeline renders msgs with day separators, grouped headers and the typing
// indicator. The quick actions are appended while the conversation is empty.
func (rr *Renderer) Timeline(msgs []domain.Message, typing bool) string {
	var b strings.Builder
	for _, row := range timeline.Layout(msgs, rr.loc) {
		if row.DaySeparator {
			b.WriteString(rr.separator(row.Message.Timestamp))
			b.WriteByte('\n')
		}
		if !row.Grouped {
			b.WriteString(rr.header(row.Message))
			b.WriteByte('\n')
		}
		b.WriteString(rr.body(row.Message))
		b.WriteByte('\n')
		if row.LastInGroup && len(row.Message.Sources) > 0 {
			b.WriteString(rr.sources(row.Message.Sources))
			b.WriteByte('\n')
		}
	}
	if timeline.IsEmptyState(msgs) {
		b.WriteString(rr.QuickActions())
		b.WriteByte('\n')
	}
	if typing {
		b.WriteString(rr.Typing())
		b.WriteByte('\n')
	}
	return b.String()
}

// Typing renders the typing indicator of the current personality.
func (rr *Renderer) Typing() string {
	return rr.styles.Typing.Render(rr.persona.Info().Name + " is typing...")
}

// Message renders a single message with its header, for streaming output.
func (rr *Renderer) Message(m domain.Message) string {
	out := rr.header(m) + "\n" + rr.body(m)
	if len(m.Sources) > 0 {
		out += "\n" + rr.sources(m.Sources)
	}
	return out
}

// QuickActions renders the suggested prompts of an empty conversation.
func (rr *Renderer) QuickActions() string {
	items := make([]string, 0, len(command.QuickActions))
	for _, qa := range command.QuickActions {
		items = append(items, rr.styles.Action.Render(qa.Label+": "+qa.Prompt))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		rr.styles.Time.Render("Try one of these:"),
		lipgloss.JoinVertical(lipgloss.Left, items...),
	)
}

// Status renders the connection indicator and the active conversation.
func (rr *Renderer) Status(state domain.ConnectionState, conv *domain.Conversation) string {
	var indicator string
	switch state {
	case domain.ConnectionConnected:
		indicator = rr.styles.Connected.Render("● connected")
	case domain.ConnectionConnecting:
		indicator = rr.styles.Pending.Render("◌ connecting")
	default:
		indicator = rr.styles.Offline.Render("○ disconnected")
	}
	info := rr.persona.Info()
	title := "no conversation"
	if conv != nil {
		title = conv.Title
		if title == "" {
			title = "New chat"
		}
		info = conv.Personality.Info()
	}
	return fmt.Sprintf("%s  %s  %s %s",
		indicator, rr.styles.Title.Render(title), info.Icon, info.Name)
}

func (rr *Renderer) separator(ts time.Time) string {
	label := "Unknown date"
	if !ts.IsZero() {
		label = ts.In(rr.loc).Format("Mon, 02 Jan 2006")
	}
	return rr.styles.Separator.Render("── " + label + " ──")
}

func (rr *Renderer) header(m domain.Message) string {
	name := rr.userName
	if m.Role == domain.RoleAI {
		info := rr.persona.Info()
		name = info.Icon + " " + info.Name
	}
	out := rr.styles.Sender.Render(name)
	if !m.Timestamp.IsZero() {
		out += " " + rr.styles.Time.Render(m.Timestamp.In(rr.loc).Format("15:04"))
	}
	return out
}

func (rr *Renderer) body(m domain.Message) string {
	text := m.Text
	for _, a := range m.Attachments {
		text += fmt.Sprintf("\n[attachment] %s (%d bytes)", a.Name, a.Size)
	}
	switch {
	case m.IsError:
		return rr.styles.Error.Render(text)
	case m.Role == domain.RoleAI:
		return rr.styles.AIText.Render(text)
	default:
		return rr.styles.UserText.Render(text)
	}
}

func (rr *Renderer) sources(srcs []domain.Source) string {
	parts := make([]string, 0, len(srcs))
	for _, s := range srcs {
		target := s.Route
		if target == "" {
			target = s.Href
		}
		parts = append(parts, rr.styles.Source.Render(s.Label)+" "+rr.styles.Time.Render("("+target+")"))
	}
	return "  ↳ " + strings.Join(parts, "  ")
}
