package main

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/api/rest"
	"github.com/spec-kit/ticket-console/internal/attachment"
	"github.com/spec-kit/ticket-console/internal/auth"
	"github.com/spec-kit/ticket-console/internal/config"
	"github.com/spec-kit/ticket-console/internal/events"
	"github.com/spec-kit/ticket-console/internal/observability"
	"github.com/spec-kit/ticket-console/internal/service"
	"github.com/spec-kit/ticket-console/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The TUI owns stdout, so logs go to a file.
	logger, err := observability.NewLogger(cfg.Logger, true)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	userID, err := auth.ResolveUserID(cfg.Session.UserID, cfg.API.AccessToken)
	if err != nil {
		log.Fatalf("failed to resolve user: %v", err)
	}
	if identity, err := auth.InspectToken(cfg.API.AccessToken); err == nil && identity.Expired(time.Now()) {
		logger.Warn("access token is expired; API calls will likely fail",
			zap.Time("expired_at", identity.ExpiresAt))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	client := rest.New(cfg.API, logger, metrics)
	dispatcher := events.NewInMemoryDispatcher(logger)

	session := service.NewSession(service.SessionDependencies{
		Backend:        client,
		Dispatcher:     dispatcher,
		Logger:         logger,
		UserID:         userID,
		ComposerPolicy: attachment.ComposerPolicy(cfg.Attachment),
	})

	model := tui.NewModel(tui.ModelDependencies{
		Session:    session,
		FormPolicy: attachment.FormPolicy(cfg.Attachment),
		Logger:     logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	refresher := service.NewRefresher(service.RefresherDependencies{
		Session:    session,
		Dispatcher: dispatcher,
		Interval:   cfg.Session.PollInterval(),
		Logger:     logger,
		Notify: func() {
			program.Send(tui.StateRefreshedMsg{})
		},
	})
	refresher.Start(ctx)

	if _, err := program.Run(); err != nil {
		logger.Fatal("program exited", zap.Error(err))
	}
}
