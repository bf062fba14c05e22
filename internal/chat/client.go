// Package chat ties the command dispatcher, the conversation manager and the
// transport together behind a single Submit entry point.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/timeline"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/transport"
)

const (
	notConnectedText = "Not connected to the assistant. Your message was not sent, please try again once the connection is back."
	sendFailedText   = "Your message could not be sent. Please try again."
)

// Dispatcher handles slash commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, input string) bool
}

// Conversations prepares the active conversation for a send.
type Conversations interface {
	PrepareSend(ctx context.Context) (string, domain.Personality, error)
	Init(ctx context.Context) error
}

// Transport is the chat socket.
type Transport interface {
	Open(ctx context.Context) error
	State() domain.ConnectionState
	Send(text string, personality domain.Personality) error
	Events() <-chan transport.Event
}

// Client is the chat surface: it routes user input and turns transport
// events into timeline messages.
type Client struct {
	commands      Dispatcher
	conversations Conversations
	transport     Transport
	timeline      *timeline.Timeline
	logger        *zap.Logger
	now           func() time.Time
}

// NewClient wires a chat client.
func NewClient(commands Dispatcher, conversations Conversations, tr Transport, tl *timeline.Timeline, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		commands:      commands,
		conversations: conversations,
		transport:     tr,
		timeline:      tl,
		logger:        logger.Named("chat"),
		now:           time.Now,
	}
}

// Start loads the conversations and opens the socket. Failures are logged;
// the transport keeps reconnecting on its own.
func (c *Client) Start(ctx context.Context) {
	if err := c.conversations.Init(ctx); err != nil {
		c.logger.Warn("failed to load conversations", zap.Error(err))
	}
	if err := c.transport.Open(ctx); err != nil {
		c.logger.Warn("failed to connect", zap.Error(err))
	}
}

// Submit handles one line of user input. The input is shown as a user
// message, then run as a command or sent to the assistant.
func (c *Client) Submit(ctx context.Context, input string) {
	text := strings.TrimSpace(input)
	if text == "" {
		return
	}
	c.timeline.Append(domain.NewUserMessage(text, c.now()))

	if strings.HasPrefix(text, "/") && c.commands.Dispatch(ctx, text) {
		return
	}
	c.send(ctx, text)
}

func (c *Client) send(ctx context.Context, text string) {
	if c.transport.State() != domain.ConnectionConnected {
		c.logger.Info("send skipped", zap.Error(domain.ErrTransportNotConnected))
		c.timeline.Append(domain.NewErrorMessage(notConnectedText, c.now()))
		return
	}

	_, personality, err := c.conversations.PrepareSend(ctx)
	if err != nil {
		c.logger.Warn("failed to prepare conversation", zap.Error(err))
		c.timeline.Append(domain.NewErrorMessage(sendFailedText, c.now()))
		return
	}

	c.timeline.SetTyping(true)
	if err := c.transport.Send(text, personality); err != nil {
		c.timeline.SetTyping(false)
		c.logger.Warn("send failed", zap.Error(err))
		msg := sendFailedText
		if errors.Is(err, domain.ErrTransportNotConnected) {
			msg = notConnectedText
		}
		c.timeline.Append(domain.NewErrorMessage(msg, c.now()))
	}
}

// Run consumes transport events until ctx is done.
func (c *Client) Run(ctx context.Context) {
	events := c.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			c.HandleEvent(ev)
		}
	}
}

// HandleEvent applies one transport event to the timeline.
func (c *Client) HandleEvent(ev transport.Event) {
	switch e := ev.(type) {
	case transport.ResponseReceived:
		if !e.Done {
			return
		}
		c.timeline.SetTyping(false)
		c.timeline.Append(domain.NewAIMessage(e.Data, c.now()))
	case transport.ErrorReceived:
		c.timeline.SetTyping(false)
		c.timeline.Append(domain.NewErrorMessage(e.Message, c.now()))
	case transport.Disconnected:
		c.timeline.SetTyping(false)
		c.logger.Info("disconnected", zap.String("reason", e.Reason))
	case transport.Connected:
		c.logger.Info("connected")
	case transport.ConnectError:
		c.logger.Debug("connect error", zap.Int("attempt", e.Attempt), zap.Error(e.Err))
	case transport.ServerAck:
		c.logger.Debug("server acknowledged connection")
	}
}
