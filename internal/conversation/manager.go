// Package conversation keeps the list of chat sessions, the active one and
// its personality in sync with the remote session store.
package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/timeline"
)

// Config holds the manager's defaults.
type Config struct {
	DefaultPersonality domain.Personality
	Now                func() time.Time
}

// Manager owns the conversations and the active conversation. The active id
// is either empty or present in the last fetched list.
type Manager struct {
	store    domain.SessionStore
	timeline *timeline.Timeline
	logger   *zap.Logger
	now      func() time.Time
	fallback domain.Personality

	mu            sync.Mutex
	conversations []domain.Conversation
	activeID      string
	personality   domain.Personality

	wg sync.WaitGroup
}

// NewManager creates a manager rendering into tl.
func NewManager(store domain.SessionStore, tl *timeline.Timeline, logger *zap.Logger, cfg Config) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if !cfg.DefaultPersonality.Valid() {
		cfg.DefaultPersonality = domain.DefaultPersonality
	}
	return &Manager{
		store:       store,
		timeline:    tl,
		logger:      logger.Named("conversation"),
		now:         cfg.Now,
		fallback:    cfg.DefaultPersonality,
		personality: cfg.DefaultPersonality,
	}
}

// Conversations returns the last fetched list.
func (m *Manager) Conversations() []domain.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Conversation(nil), m.conversations...)
}

// Active returns the active conversation, if any.
func (m *Manager) Active() (domain.Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeLocked()
}

// Personality returns the personality selected for the active conversation.
func (m *Manager) Personality() domain.Personality {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.personality
}

func (m *Manager) activeLocked() (domain.Conversation, bool) {
	if m.activeID == "" {
		return domain.Conversation{}, false
	}
	for _, c := range m.conversations {
		if c.ID == m.activeID {
			return c, true
		}
	}
	return domain.Conversation{}, false
}

func (m *Manager) indexLocked(id string) int {
	for i, c := range m.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Init loads the conversations. With none, it creates one with the default
// personality; otherwise it opens the most recently updated one.
func (m *Manager) Init(ctx context.Context) error {
	list, err := m.ListConversations(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		_, err := m.CreateConversation(ctx, m.fallback)
		return err
	}

	latest := list[0]
	for _, c := range list[1:] {
		if c.UpdatedAt.After(latest.UpdatedAt) {
			latest = c
		}
	}
	return m.SwitchTo(ctx, latest.ID)
}

// ListConversations fetches the remote list.
func (m *Manager) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	list, err := m.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %w", domain.ErrCollaboratorFailure, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversations = append([]domain.Conversation(nil), list...)
	if m.activeID != "" && m.indexLocked(m.activeID) < 0 {
		m.logger.Info("active conversation no longer listed", zap.String("id", m.activeID))
		m.activeID = ""
	}
	return append([]domain.Conversation(nil), list...), nil
}

// CreateConversation creates a conversation, makes it active and shows its
// greeting.
func (m *Manager) CreateConversation(ctx context.Context, personality domain.Personality) (domain.Conversation, error) {
	return m.create(ctx, personality, true)
}

func (m *Manager) create(ctx context.Context, personality domain.Personality, resetTimeline bool) (domain.Conversation, error) {
	if !personality.Valid() {
		personality = m.fallback
	}
	id, err := m.store.CreateSession(ctx, personality)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: create session: %w", domain.ErrCollaboratorFailure, err)
	}

	now := m.now()
	conv := domain.Conversation{ID: id, Personality: personality, UpdatedAt: now}

	m.mu.Lock()
	if i := m.indexLocked(id); i >= 0 {
		m.conversations = append(m.conversations[:i], m.conversations[i+1:]...)
	}
	m.conversations = append([]domain.Conversation{conv}, m.conversations...)
	m.activeID = id
	m.personality = personality
	m.mu.Unlock()

	m.logger.Info("conversation created", zap.String("id", id), zap.String("personality", string(personality)))
	if resetTimeline {
		m.timeline.Reset(domain.Greeting(personality, now))
	}
	return conv, nil
}

// SwitchTo activates a listed conversation, loads its history and touches it
// with the selected personality.
func (m *Manager) SwitchTo(ctx context.Context, id string) error {
	m.mu.Lock()
	i := m.indexLocked(id)
	if i < 0 {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrUnknownConversation, id)
	}
	conv := m.conversations[i]
	m.activeID = id
	m.personality = conv.Personality
	m.mu.Unlock()

	records, err := m.store.GetHistory(ctx, id)
	if err != nil {
		err = fmt.Errorf("%w: load history: %w", domain.ErrCollaboratorFailure, err)
		m.logger.Warn("failed to load history", zap.String("id", id), zap.Error(err))
		if m.stillActive(id) {
			m.timeline.Replace([]domain.Message{
				domain.NewErrorMessage("Could not load this conversation.", m.now()),
			})
		}
		return err
	}

	msgs := make([]domain.Message, 0, len(records))
	for _, r := range records {
		msgs = append(msgs, r.ToMessage())
	}
	if len(msgs) == 0 {
		msgs = append(msgs, domain.Greeting(conv.Personality, m.now()))
	}

	// A later switch wins over a slow history load.
	if !m.stillActive(id) {
		return nil
	}
	m.timeline.Replace(msgs)
	m.touch(ctx, id)
	return nil
}

func (m *Manager) stillActive(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID == id
}

// touch stores the selected personality and bumps the session's update
// time. Failures are logged only.
func (m *Manager) touch(ctx context.Context, id string) {
	personality := m.Personality()
	if err := m.store.UpdateSession(ctx, id, personality); err != nil {
		m.logger.Warn("failed to touch session", zap.String("id", id), zap.Error(err))
		return
	}

	m.mu.Lock()
	if i := m.indexLocked(id); i >= 0 {
		m.conversations[i].UpdatedAt = m.now()
	}
	m.mu.Unlock()
}

// DeleteConversation deletes a conversation. If it was active, the first
// remaining conversation is opened, or the timeline falls back to the
// default greeting when none remain.
func (m *Manager) DeleteConversation(ctx context.Context, id string) error {
	if err := m.store.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("%w: delete session: %w", domain.ErrCollaboratorFailure, err)
	}
	m.logger.Info("conversation deleted", zap.String("id", id))

	m.mu.Lock()
	wasActive := m.activeID == id
	m.mu.Unlock()

	list, err := m.ListConversations(ctx)
	if err != nil {
		m.logger.Warn("failed to refresh conversations", zap.Error(err))
		m.mu.Lock()
		if i := m.indexLocked(id); i >= 0 {
			m.conversations = append(m.conversations[:i], m.conversations[i+1:]...)
		}
		if m.activeID == id {
			m.activeID = ""
		}
		list = append([]domain.Conversation(nil), m.conversations...)
		m.mu.Unlock()
	}

	if !wasActive {
		return nil
	}
	if len(list) > 0 {
		return m.SwitchTo(ctx, list[0].ID)
	}

	m.mu.Lock()
	m.activeID = ""
	m.personality = m.fallback
	m.mu.Unlock()
	m.timeline.Reset(domain.Greeting(m.fallback, m.now()))
	return nil
}

// SetPersonality changes a conversation's personality right away and
// persists it in the background. Persistence failures are logged and not
// rolled back.
func (m *Manager) SetPersonality(ctx context.Context, id string, personality domain.Personality) error {
	if !personality.Valid() {
		return fmt.Errorf("%w: unknown personality %q", domain.ErrValidationFailed, personality)
	}

	m.mu.Lock()
	if i := m.indexLocked(id); i >= 0 {
		m.conversations[i].Personality = personality
	}
	if id == "" || id == m.activeID {
		m.personality = personality
	}
	m.mu.Unlock()

	if id == "" {
		return nil
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.store.UpdateSession(context.WithoutCancel(ctx), id, personality); err != nil {
			m.logger.Warn("failed to persist personality",
				zap.String("id", id), zap.String("personality", string(personality)), zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until background personality updates have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// EnsureActive returns the active conversation, creating one with the
// selected personality when there is none. The timeline is left as is.
func (m *Manager) EnsureActive(ctx context.Context) (domain.Conversation, error) {
	m.mu.Lock()
	conv, ok := m.activeLocked()
	personality := m.personality
	m.mu.Unlock()
	if ok {
		return conv, nil
	}
	return m.create(ctx, personality, false)
}

// PrepareSend makes sure a conversation is active and touches it, so the
// server attributes the next chat message to it.
func (m *Manager) PrepareSend(ctx context.Context) (string, domain.Personality, error) {
	conv, err := m.EnsureActive(ctx)
	if err != nil {
		return "", "", err
	}
	m.touch(ctx, conv.ID)
	return conv.ID, m.Personality(), nil
}
