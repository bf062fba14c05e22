// Package transport owns the chat WebSocket connection: connecting,
// reconnecting, routing inbound frames and sending user messages.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/protocol"
)

// ErrSessionClosed is returned by Connect after Close.
var ErrSessionClosed = errors.New("transport session closed")

// Diagnostics persists connection history.
type Diagnostics interface {
	RecordConnected(ctx context.Context, at time.Time) error
	RecordConnectError(ctx context.Context, at time.Time, cause error) error
}

// Options configures a Session.
type Options struct {
	URL          string // ws:// or wss:// origin
	Namespace    string
	Header       http.Header
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	PingInterval time.Duration // 0 disables keep-alive pings
	Dialer       *websocket.Dialer
}

// DefaultOptions returns the reconnect policy of the chat backend.
func DefaultOptions(url string) Options {
	return Options{
		URL:          url,
		Namespace:    "/chat",
		MaxAttempts:  5,
		BaseDelay:    time.Second,
		MaxDelay:     5 * time.Second,
		DialTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		PingInterval: 25 * time.Second,
	}
}

// Backoff returns the delay before reconnect attempt n (1-based).
func Backoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base * time.Duration(attempt)
	if max > 0 && d > max {
		return max
	}
	return d
}

type link struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

func (l *link) close() {
	l.once.Do(func() {
		close(l.done)
		deadline := time.Now().Add(time.Second)
		_ = l.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		l.conn.Close()
	})
}

// Session is the single chat connection of the client.
type Session struct {
	opts   Options
	diag   Diagnostics
	logger *zap.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	group  singleflight.Group
	wg     sync.WaitGroup

	mu           sync.Mutex
	state        domain.ConnectionState
	link         *link
	manual       bool
	closed       bool
	reconnecting bool
}

// NewSession creates a disconnected session. diag may be nil.
func NewSession(opts Options, diag Diagnostics, logger *zap.Logger) *Session {
	defaults := DefaultOptions(opts.URL)
	if opts.Namespace == "" {
		opts.Namespace = defaults.Namespace
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaults.MaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = defaults.BaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaults.MaxDelay
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaults.DialTimeout
	}
	if opts.Dialer == nil {
		d := *websocket.DefaultDialer
		opts.Dialer = &d
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		opts:   opts,
		diag:   diag,
		logger: logger.Named("transport"),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 64),
		state:  domain.ConnectionDisconnected,
	}
}

// Events returns the inbound event stream. It is never closed; stop reading
// after Close.
func (s *Session) Events() <-chan Event {
	return s.events
}

// State returns the current connection state.
func (s *Session) State() domain.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Endpoint is the full socket URL.
func (s *Session) Endpoint() string {
	return strings.TrimRight(s.opts.URL, "/") + s.opts.Namespace
}

// Open connects and, if that fails, keeps retrying in the background under
// the reconnect policy.
func (s *Session) Open(ctx context.Context) error {
	err := s.Connect(ctx)
	if err != nil && !errors.Is(err, ErrSessionClosed) {
		s.startReconnect()
	}
	return err
}

// Connect establishes the socket. It returns immediately when already
// connected and collapses concurrent calls into a single dial.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	s.manual = false
	s.mu.Unlock()
	return s.connect(ctx, 0)
}

func (s *Session) connect(ctx context.Context, attempt int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state == domain.ConnectionConnected {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	_, err, _ := s.group.Do("connect", func() (interface{}, error) {
		return nil, s.dial(ctx, attempt)
	})
	return err
}

func (s *Session) dial(ctx context.Context, attempt int) error {
	s.mu.Lock()
	if s.state == domain.ConnectionConnected {
		s.mu.Unlock()
		return nil
	}
	s.state = domain.ConnectionConnecting
	s.mu.Unlock()

	endpoint := s.Endpoint()
	dialCtx, cancel := context.WithTimeout(ctx, s.opts.DialTimeout)
	defer cancel()

	conn, _, err := s.opts.Dialer.DialContext(dialCtx, endpoint, s.opts.Header)
	if err != nil {
		s.mu.Lock()
		if s.state == domain.ConnectionConnecting {
			s.state = domain.ConnectionDisconnected
		}
		s.mu.Unlock()

		s.logger.Warn("connect failed", zap.String("url", endpoint), zap.Int("attempt", attempt), zap.Error(err))
		if s.diag != nil {
			if derr := s.diag.RecordConnectError(s.ctx, s.now(), err); derr != nil {
				s.logger.Debug("failed to record connect error", zap.Error(derr))
			}
		}
		s.emit(ConnectError{Err: err, Attempt: attempt})
		return fmt.Errorf("%w: dial %s: %w", domain.ErrTransportError, endpoint, err)
	}

	l := &link{conn: conn, done: make(chan struct{})}

	s.mu.Lock()
	if s.closed || s.manual {
		s.state = domain.ConnectionDisconnected
		s.mu.Unlock()
		l.close()
		if s.closed {
			return ErrSessionClosed
		}
		return fmt.Errorf("%w: disconnected while connecting", domain.ErrTransportError)
	}
	s.link = l
	s.state = domain.ConnectionConnected
	s.wg.Add(2)
	s.mu.Unlock()

	s.logger.Info("connected", zap.String("url", endpoint))
	if s.diag != nil {
		if derr := s.diag.RecordConnected(s.ctx, s.now()); derr != nil {
			s.logger.Debug("failed to record connect", zap.Error(derr))
		}
	}
	s.emit(Connected{})

	go s.readLoop(l)
	go s.pingLoop(l)
	return nil
}

func (s *Session) readLoop(l *link) {
	defer s.wg.Done()

	if s.opts.PingInterval > 0 {
		pongWait := 2 * s.opts.PingInterval
		l.conn.SetReadDeadline(time.Now().Add(pongWait))
		l.conn.SetPongHandler(func(string) error {
			return l.conn.SetReadDeadline(time.Now().Add(pongWait))
		})
	}

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			s.handleLoss(l, err)
			return
		}
		if s.opts.PingInterval > 0 {
			l.conn.SetReadDeadline(time.Now().Add(2 * s.opts.PingInterval))
		}

		frame, err := protocol.Decode(data)
		if err != nil {
			s.logger.Warn("dropping malformed frame", zap.Error(err))
			continue
		}

		switch f := frame.(type) {
		case *protocol.ConnectedMessage:
			s.emit(ServerAck{Data: f.Data})
		case *protocol.ResponseMessage:
			s.emit(ResponseReceived{Done: f.Done, Data: f.Data})
		case *protocol.ErrorMessage:
			s.emit(ErrorReceived{Message: f.Data})
		case *protocol.BaseMessage:
			s.logger.Debug("ignoring frame", zap.String("type", f.Type))
		}
	}
}

func (s *Session) pingLoop(l *link) {
	defer s.wg.Done()

	if s.opts.PingInterval <= 0 {
		<-l.done
		return
	}

	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.opts.PingInterval)
			if err := l.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping failed", zap.Error(err))
				return
			}
		}
	}
}

// handleLoss runs when the reader of l stops. Losses of replaced or
// deliberately closed links are ignored.
func (s *Session) handleLoss(l *link, cause error) {
	s.mu.Lock()
	if s.link != l {
		s.mu.Unlock()
		return
	}
	s.link = nil
	s.state = domain.ConnectionDisconnected
	s.mu.Unlock()

	l.close()
	s.logger.Warn("connection lost", zap.Error(cause))
	s.emit(Disconnected{Reason: cause.Error()})
	s.startReconnect()
}

func (s *Session) startReconnect() {
	s.mu.Lock()
	if s.reconnecting || s.closed || s.manual {
		s.mu.Unlock()
		return
	}
	s.reconnecting = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.reconnectLoop()
}

func (s *Session) reconnectLoop() {
	defer s.wg.Done()

	for attempt := 0; ; {
		if s.reconnectDone(attempt) {
			return
		}
		attempt++

		timer := time.NewTimer(Backoff(attempt, s.opts.BaseDelay, s.opts.MaxDelay))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			continue
		case <-timer.C:
		}

		s.mu.Lock()
		skip := s.closed || s.manual || s.state == domain.ConnectionConnected
		s.mu.Unlock()
		if skip {
			continue
		}

		if err := s.connect(s.ctx, attempt); err != nil {
			s.logger.Debug("reconnect attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		}
	}
}

// reconnectDone reports whether the reconnect loop should stop, clearing
// the reconnecting flag under the same lock.
func (s *Session) reconnectDone(attempt int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.manual || s.state == domain.ConnectionConnected {
		s.reconnecting = false
		return true
	}
	if attempt >= s.opts.MaxAttempts {
		s.reconnecting = false
		s.logger.Warn("giving up reconnecting", zap.Int("attempts", attempt))
		return true
	}
	return false
}

// Disconnect closes the socket and stops reconnecting until the next Connect.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.manual = true
	l := s.link
	s.link = nil
	s.state = domain.ConnectionDisconnected
	s.mu.Unlock()

	if l == nil {
		return
	}
	l.close()
	s.logger.Info("disconnected")
	s.emit(Disconnected{Reason: "client disconnect"})
}

// Send writes a chat message. It fails with domain.ErrTransportNotConnected
// when the socket is not up; nothing is queued.
func (s *Session) Send(text string, personality domain.Personality) error {
	s.mu.Lock()
	l := s.link
	connected := s.state == domain.ConnectionConnected && l != nil
	s.mu.Unlock()
	if !connected {
		return domain.ErrTransportNotConnected
	}

	frame := protocol.NewChatMessage(text, string(personality), s.now())

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	if s.opts.WriteTimeout > 0 {
		l.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
	if err := l.conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("%w: write: %w", domain.ErrTransportError, err)
	}
	return nil
}

// Close disconnects, stops reconnecting and waits for background work.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.Disconnect()
	s.wg.Wait()
	return nil
}

// emit queues ev. It blocks while the buffer is full, until Close.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
		return
	default:
	}
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}
