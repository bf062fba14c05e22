// Package testserver is an in-memory MoneyKeeper backend: the REST API and
// the chat socket. It backs the package tests and the mockbackend command.
package testserver

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/protocol"
)

const timestampLayout = "2006-01-02T15:04:05.000000"

// Options configures a Server.
type Options struct {
	Logger  *zap.Logger
	Now     func() time.Time
	Wallets []domain.Wallet
}

// DefaultWallets is the wallet seed used when none are given.
func DefaultWallets() []domain.Wallet {
	return []domain.Wallet{
		{ID: 1, Name: "Cash", Balance: 2000000, Currency: "VND", IsDefault: true},
		{ID: 2, Name: "Bank", Balance: 15000000, Currency: "VND"},
	}
}

type chatSession struct {
	id          string
	personality string
	updated     time.Time
	history     []domain.HistoryRecord
}

type expense struct {
	id string
	domain.ExpenseInput
}

// Server is the fake backend.
type Server struct {
	echo     *echo.Echo
	hub      *Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
	now      func() time.Time
	wg       sync.WaitGroup

	mu       sync.Mutex
	nextID   int
	sessions []*chatSession
	touched  string
	wallets  []domain.Wallet
	expenses []*expense
	budgets  []domain.BudgetInput
	goals    []domain.GoalInput
	received []protocol.ChatMessage
	reply    ReplyFunc
	calls    map[string]int
	failures map[string]int
}

// New creates a server with seeded wallets.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Wallets == nil {
		opts.Wallets = DefaultWallets()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		hub:    NewHub(),
		logger: opts.Logger.Named("testserver"),
		now:    opts.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		wallets:  append([]domain.Wallet(nil), opts.Wallets...),
		reply:    EchoReply,
		calls:    make(map[string]int),
		failures: make(map[string]int),
	}
	e.Use(s.track)

	e.GET("/chat", s.handleWebSocket)

	api := e.Group("/api")
	api.GET("/chat/sessions", s.handleListSessions)
	api.POST("/chat/sessions", s.handleSessionAction)
	api.GET("/chat/sessions/:id/messages", s.handleHistory)
	api.POST("/expenses", s.handleCreateExpense)
	api.PUT("/expenses/:id", s.handleUpdateExpense)
	api.GET("/expenses/statistics", s.handleStatistics)
	api.GET("/expenses/trends", s.handleTrends)
	api.POST("/budgets", s.handleCreateBudget)
	api.GET("/budgets/current", s.handleCurrentBudgets)
	api.GET("/budgets/alerts", s.handleAlerts)
	api.GET("/wallets", s.handleWallets)
	api.POST("/goals", s.handleCreateGoal)

	return s
}

// Handler returns the HTTP handler, for httptest.NewServer or http.Server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown stops the HTTP server and closes every chat socket.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.Close()
	return err
}

// Close closes every chat socket and waits for their goroutines.
func (s *Server) Close() {
	s.hub.CloseAll()
	s.wg.Wait()
}

// track counts calls per route and applies injected failures.
func (s *Server) track(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + c.Path()
		if status, fail := s.hit(key); fail {
			return c.JSON(status, map[string]string{"error": "injected failure"})
		}
		return next(c)
	}
}

// hit records a call to key and reports an injected failure status.
func (s *Server) hit(key string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[key]++
	status, ok := s.failures[key]
	return status, ok
}

// Calls returns how often key was hit. Keys are "METHOD /route/:param" for
// HTTP routes and "session:<action>" for session actions.
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// SetFailure makes key answer with status until cleared with status 0.
func (s *Server) SetFailure(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = status
}

// SetReply replaces the assistant answer generator.
func (s *Server) SetReply(reply ReplyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = reply
}

// Received returns the chat messages received so far.
func (s *Server) Received() []protocol.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.ChatMessage(nil), s.received...)
}

// Connections returns the number of open chat sockets.
func (s *Server) Connections() int {
	return s.hub.Count()
}

// DropConnections closes every chat socket abruptly.
func (s *Server) DropConnections() {
	s.hub.CloseAll()
}

// Touched returns the id of the most recently updated session.
func (s *Server) Touched() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// SeedSession adds a session with history and returns its id.
func (s *Server) SeedSession(personality domain.Personality, updated time.Time, history ...domain.HistoryRecord) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newIDLocked()
	s.sessions = append(s.sessions, &chatSession{
		id:          id,
		personality: string(personality),
		updated:     updated,
		history:     history,
	})
	return id
}

// Session returns the personality of a session.
func (s *Server) Session(id string) (domain.Personality, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.findSession(id)
	if sess == nil {
		return "", false
	}
	return domain.Personality(sess.personality), true
}

// SessionCount returns the number of stored sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Budgets returns the stored budgets.
func (s *Server) Budgets() []domain.BudgetInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.BudgetInput(nil), s.budgets...)
}

// Expenses returns the stored expenses.
func (s *Server) Expenses() []domain.ExpenseInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ExpenseInput, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e.ExpenseInput)
	}
	return out
}

func (s *Server) newIDLocked() string {
	s.nextID++
	return strconv.Itoa(s.nextID)
}

func (s *Server) findSession(id string) *chatSession {
	for _, sess := range s.sessions {
		if sess.id == id {
			return sess
		}
	}
	return nil
}
