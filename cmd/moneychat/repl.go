package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
)

const replHelp = `Client commands:
  :chats            list conversations
  :new [persona]    start a new conversation
  :switch <n>       switch to conversation n
  :delete <n>       delete conversation n
  :persona <name>   change the personality of the active conversation
  :status           show the connection state
  :quit             exit
Finance commands start with "/" (try /help).`

// errQuit ends the REPL.
var errQuit = errors.New("quit")

func runInteractiveChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.repl(ctx, cmd.InOrStdin())
}

// repl starts the client and reads input lines until EOF, :quit or ctx is done.
func (a *app) repl(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// Scan only returns when the reader does; closing it releases the scanner.
	if c, ok := in.(io.Closer); ok {
		defer c.Close()
	}

	a.client.Start(ctx)
	go a.client.Run(ctx)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := a.handleLine(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				a.printf("%v\n", err)
			}
		}
	}
}

func (a *app) handleLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, ":") {
		a.client.Submit(ctx, line)
		return nil
	}

	fields := strings.Fields(strings.TrimPrefix(line, ":"))
	if len(fields) == 0 {
		return nil
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "q", "quit", "exit":
		return errQuit
	case "help":
		a.printf("%s\n", replHelp)
	case "chats":
		return a.listChats(ctx)
	case "new":
		p := a.manager.Personality()
		if arg != "" {
			p = domain.Personality(strings.ToLower(arg))
			if !p.Valid() {
				return fmt.Errorf("unknown personality %q", arg)
			}
		}
		if _, err := a.manager.CreateConversation(ctx, p); err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
	case "switch":
		conv, err := a.pick(arg)
		if err != nil {
			return err
		}
		if err := a.manager.SwitchTo(ctx, conv.ID); err != nil {
			return fmt.Errorf("failed to switch conversation: %w", err)
		}
	case "delete":
		conv, err := a.pick(arg)
		if err != nil {
			return err
		}
		if err := a.manager.DeleteConversation(ctx, conv.ID); err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}
	case "persona":
		active, _ := a.manager.Active()
		if err := a.manager.SetPersonality(ctx, active.ID, domain.Personality(strings.ToLower(arg))); err != nil {
			return err
		}
		a.printf("Personality set to %s.\n", a.manager.Personality().Info().Name)
	case "status":
		var conv *domain.Conversation
		if active, ok := a.manager.Active(); ok {
			conv = &active
		}
		a.view.status(a.session.State(), conv)
	default:
		a.logger.Debug("unknown client command", zap.String("command", fields[0]))
		return fmt.Errorf("unknown command :%s (try :help)", fields[0])
	}
	return nil
}

func (a *app) listChats(ctx context.Context) error {
	convs, err := a.manager.ListConversations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}
	if len(convs) == 0 {
		a.printf("No conversations yet.\n")
		return nil
	}
	active, _ := a.manager.Active()
	for i, c := range convs {
		marker := " "
		if c.ID == active.ID {
			marker = "*"
		}
		title := c.Title
		if title == "" {
			title = "New chat"
		}
		info := c.Personality.Info()
		a.printf("%s %d. %s %s %s (%s)\n", marker, i+1, info.Icon, title, info.Name, c.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

// pick resolves a 1-based position in the last fetched conversation list.
func (a *app) pick(arg string) (domain.Conversation, error) {
	convs := a.manager.Conversations()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(convs) {
		return domain.Conversation{}, fmt.Errorf("pick a conversation between 1 and %d (see :chats)", len(convs))
	}
	return convs[n-1], nil
}

func (a *app) printf(format string, args ...interface{}) {
	a.view.mu.Lock()
	defer a.view.mu.Unlock()
	fmt.Fprintf(a.view.out, format, args...)
}
