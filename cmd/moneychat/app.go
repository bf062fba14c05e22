package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/apiclient"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/chat"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/command"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/config"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/conversation"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/domain"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/localstore"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/policy"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/render"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/timeline"
	"github.com/HideOnBush-dev/MoneyKeeper-sub001/internal/transport"
)

// app holds the wired client components.
type app struct {
	logger   *zap.Logger
	store    *localstore.SQLiteStore
	api      *apiclient.Client
	session  *transport.Session
	timeline *timeline.Timeline
	manager  *conversation.Manager
	client   *chat.Client
	view     *view
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer) (*app, error) {
	store, err := localstore.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	engine, err := policy.NewEngine(ctx, policy.DefaultCommandPolicy)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load command policy: %w", err)
	}

	api := apiclient.NewClient(cfg.APIURL, cfg.HTTPTimeout)
	tl := timeline.New()

	opts := transport.DefaultOptions(cfg.WSURL)
	opts.MaxAttempts = cfg.ReconnectAttempts
	opts.BaseDelay = cfg.ReconnectDelay
	opts.MaxDelay = cfg.ReconnectMaxDelay
	opts.PingInterval = cfg.PingInterval
	session := transport.NewSession(opts, localstore.NewDiagnostics(store), logger)

	manager := conversation.NewManager(api, tl, logger, conversation.Config{
		DefaultPersonality: domain.ParsePersonality(cfg.Personality),
	})

	dispatcher := command.NewDispatcher(command.Deps{
		Expenses:  api,
		Budgets:   api,
		Wallets:   api,
		Goals:     api,
		Memory:    localstore.NewMemory(store),
		Policy:    engine,
		Formatter: command.NewFormatter(cfg.Locale, cfg.Currency),
		Logger:    logger,
	}, tl)

	a := &app{
		logger:   logger,
		store:    store,
		api:      api,
		session:  session,
		timeline: tl,
		manager:  manager,
		client:   chat.NewClient(dispatcher, manager, session, tl, logger),
		view:     newView(out, render.New(out, time.Local), tl, manager),
	}
	tl.OnChange(a.view.refresh)
	return a, nil
}

// Close waits for pending personality updates, then releases the socket and
// the local store.
func (a *app) Close() {
	a.manager.Wait()
	if err := a.session.Close(); err != nil {
		a.logger.Debug("failed to close transport", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close local store", zap.Error(err))
	}
}
