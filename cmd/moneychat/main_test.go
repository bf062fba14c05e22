package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/config"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/render"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/testserver"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/timeline"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestApp(t *testing.T) (*app, *testserver.Server, *syncBuffer) {
	t.Helper()

	srv := testserver.New(testserver.Options{})
	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		httpSrv.Close()
		srv.Close()
	})

	cfg := config.Defaults()
	cfg.APIURL = httpSrv.URL + "/api"
	cfg.WSURL = "ws" + strings.TrimPrefix(httpSrv.URL, "http")
	cfg.DBPath = ":memory:"
	cfg.Locale = "en"
	cfg.PingInterval = 0

	out := &syncBuffer{}
	a, err := newApp(context.Background(), cfg, zap.NewNop(), out)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, srv, out
}

func TestREPL_CommandsAndConversations(t *testing.T) {
	a, srv, out := newTestApp(t)

	input := strings.Join([]string{
		"/balance",
		":new grumpy",
		":chats",
		":switch 9",
		":status",
		":bogus",
		":quit",
		"/help",
	}, "\n")
	require.NoError(t, a.repl(context.Background(), strings.NewReader(input)))

	got := out.String()
	assert.Contains(t, got, "Try one of these:")
	assert.Contains(t, got, "Total: 17,000,000 đ")
	assert.Contains(t, got, "pick a conversation between 1 and 2")
	assert.Contains(t, got, "● connected")
	assert.Contains(t, got, "unknown command :bogus")
	assert.NotContains(t, got, "Available commands:")

	assert.Equal(t, 2, srv.SessionCount())
	assert.Equal(t, domain.PersonalityGrumpy, a.manager.Personality())
}

func TestREPL_PersonaChangeIsPersisted(t *testing.T) {
	a, srv, out := newTestApp(t)

	require.NoError(t, a.repl(context.Background(), strings.NewReader(":persona casual\n:persona nobody\n")))
	a.manager.Wait()

	active, ok := a.manager.Active()
	require.True(t, ok)
	p, ok := srv.Session(active.ID)
	require.True(t, ok)
	assert.Equal(t, domain.PersonalityCasual, p)
	assert.Contains(t, out.String(), "Personality set to Casual.")
	assert.Contains(t, out.String(), "unknown personality")
}

func TestREPL_ReleasesReaderOnExit(t *testing.T) {
	a, _, _ := newTestApp(t)
	pr, pw := io.Pipe()

	done := make(chan error, 1)
	go func() { done <- a.repl(context.Background(), pr) }()

	_, err := pw.Write([]byte(":quit\n"))
	require.NoError(t, err)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("repl did not return after :quit")
	}

	_, err = pw.Write([]byte("hello\n"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestView_AppendsIncrementallyAndRedrawsOnReplace(t *testing.T) {
	out := &syncBuffer{}
	tl := timeline.New()
	v := newView(out, render.New(out, time.UTC), tl, fixedPersonality(domain.PersonalityFriendly))
	tl.OnChange(v.refresh)

	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	tl.Reset(domain.Greeting(domain.PersonalityFriendly, ts))
	require.Contains(t, out.String(), "Try one of these:")

	tl.Append(domain.NewUserMessage("hello", ts.Add(time.Minute)))
	assert.Equal(t, 1, strings.Count(out.String(), "Tue, 10 Mar 2026"))
	assert.Contains(t, out.String(), "hello")

	tl.SetTyping(true)
	assert.Contains(t, out.String(), "Friendly is typing...")

	tl.Reset(domain.Greeting(domain.PersonalityFriendly, ts.Add(time.Hour)))
	assert.Equal(t, 2, strings.Count(out.String(), "Tue, 10 Mar 2026"))
}

type fixedPersonality domain.Personality

func (p fixedPersonality) Personality() domain.Personality {
	return domain.Personality(p)
}
