package transport

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/localstore"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/protocol"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/testserver"
)

const waitTimeout = 3 * time.Second

func newBackend(t *testing.T) (*testserver.Server, string) {
	t.Helper()
	srv := testserver.New(testserver.Options{})
	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		httpSrv.Close()
	})
	return srv, "ws" + strings.TrimPrefix(httpSrv.URL, "http")
}

func fastOptions(url string) Options {
	opts := DefaultOptions(url)
	opts.BaseDelay = 10 * time.Millisecond
	opts.MaxDelay = 30 * time.Millisecond
	opts.DialTimeout = time.Second
	opts.PingInterval = 0
	return opts
}

// waitFor returns the next event of type T, failing on timeout.
func waitFor[T Event](t *testing.T, s *Session) T {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case ev := <-s.Events():
			if got, ok := ev.(T); ok {
				return got
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestBackoff(t *testing.T) {
	base, max := time.Second, 5*time.Second
	assert.Equal(t, time.Second, Backoff(1, base, max))
	assert.Equal(t, 2*time.Second, Backoff(2, base, max))
	assert.Equal(t, 5*time.Second, Backoff(5, base, max))
	assert.Equal(t, 5*time.Second, Backoff(9, base, max))
	assert.Equal(t, time.Second, Backoff(0, base, max))
}

func TestSessionSendAndReceive(t *testing.T) {
	srv, url := newBackend(t)
	s := NewSession(fastOptions(url), nil, nil)
	defer s.Close()

	require.NoError(t, s.Connect(context.Background()))
	assert.Equal(t, domain.ConnectionConnected, s.State())
	waitFor[Connected](t, s)
	ack := waitFor[ServerAck](t, s)
	assert.JSONEq(t, `{"status":"connected"}`, string(ack.Data))

	require.NoError(t, s.Send("hello", domain.Personality("grumpy")))

	partial := waitFor[ResponseReceived](t, s)
	assert.False(t, partial.Done)
	final := waitFor[ResponseReceived](t, s)
	assert.True(t, final.Done)
	assert.Equal(t, "(grumpy) You said: hello", final.Data)

	received := srv.Received()
	require.Len(t, received, 1)
	assert.Equal(t, "hello", received[0].Message)
	assert.Equal(t, "grumpy", received[0].Personality)
}

func TestSessionServerError(t *testing.T) {
	srv, url := newBackend(t)
	srv.SetReply(func(protocol.ChatMessage) (string, error) {
		return "", errors.New("Đã xảy ra lỗi.")
	})
	s := NewSession(fastOptions(url), nil, nil)
	defer s.Close()

	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Send("hi", domain.DefaultPersonality))
	got := waitFor[ErrorReceived](t, s)
	assert.Equal(t, "Đã xảy ra lỗi.", got.Message)
}

func TestSendWhileDisconnected(t *testing.T) {
	srv, url := newBackend(t)
	s := NewSession(fastOptions(url), nil, nil)
	defer s.Close()

	err := s.Send("hello", domain.DefaultPersonality)
	assert.ErrorIs(t, err, domain.ErrTransportNotConnected)
	assert.Empty(t, srv.Received())
	assert.Zero(t, srv.Connections())
}

func TestConnectIsIdempotent(t *testing.T) {
	srv, url := newBackend(t)
	s := NewSession(fastOptions(url), nil, nil)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Connect(context.Background()))
		}()
	}
	wg.Wait()
	require.NoError(t, s.Connect(context.Background()))

	waitFor[ServerAck](t, s)
	assert.Equal(t, 1, srv.Connections())
}

func TestReconnectAfterDrop(t *testing.T) {
	srv, url := newBackend(t)
	s := NewSession(fastOptions(url), nil, nil)
	defer s.Close()

	require.NoError(t, s.Connect(context.Background()))
	waitFor[ServerAck](t, s)

	srv.DropConnections()
	waitFor[Disconnected](t, s)
	waitFor[Connected](t, s)
	waitFor[ServerAck](t, s)
	assert.Equal(t, domain.ConnectionConnected, s.State())

	require.NoError(t, s.Send("again", domain.DefaultPersonality))
	final := waitFor[ResponseReceived](t, s)
	assert.Equal(t, "(friendly) You said: again", final.Data)
}

func TestDisconnectStopsReconnecting(t *testing.T) {
	srv, url := newBackend(t)
	s := NewSession(fastOptions(url), nil, nil)
	defer s.Close()

	require.NoError(t, s.Connect(context.Background()))
	waitFor[ServerAck](t, s)

	s.Disconnect()
	got := waitFor[Disconnected](t, s)
	assert.Equal(t, "client disconnect", got.Reason)
	assert.Equal(t, domain.ConnectionDisconnected, s.State())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, domain.ConnectionDisconnected, s.State())
	assert.Eventually(t, func() bool { return srv.Connections() == 0 }, waitTimeout, 10*time.Millisecond)
	assert.ErrorIs(t, s.Send("x", domain.DefaultPersonality), domain.ErrTransportNotConnected)
}

func TestReconnectGivesUp(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	httpSrv := httptest.NewServer(testserver.New(testserver.Options{}).Handler())
	url := "ws" + strings.TrimPrefix(httpSrv.URL, "http")
	httpSrv.Close()

	store, err := localstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()
	diag := localstore.NewDiagnostics(store)

	opts := fastOptions(url)
	opts.MaxAttempts = 3
	s := NewSession(opts, diag, nil)

	err = s.Open(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransportError)

	attempts := []int{}
	for len(attempts) < 4 {
		attempts = append(attempts, waitFor[ConnectError](t, s).Attempt)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, attempts)

	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected event after giving up: %#v", ev)
	case <-time.After(150 * time.Millisecond):
	}
	assert.Equal(t, domain.ConnectionDisconnected, s.State())

	snap, err := diag.Load(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, snap.LastError)
	assert.False(t, snap.LastErrorAt.IsZero())

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Connect(context.Background()), ErrSessionClosed)
}

func TestPingKeepsConnectionAlive(t *testing.T) {
	_, url := newBackend(t)
	opts := fastOptions(url)
	opts.PingInterval = 20 * time.Millisecond
	s := NewSession(opts, nil, nil)
	defer s.Close()

	require.NoError(t, s.Connect(context.Background()))
	waitFor[ServerAck](t, s)

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, domain.ConnectionConnected, s.State())
	require.NoError(t, s.Send("still here", domain.DefaultPersonality))
	final := waitFor[ResponseReceived](t, s)
	assert.Equal(t, "(friendly) You said: still here", final.Data)
}
