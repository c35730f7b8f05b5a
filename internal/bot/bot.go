// Package bot implements lifecycle management and component orchestration
// for the Terry Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"

	"golang.org/x/sync/errgroup"

	"github.com/terry-ai/terry/internal/config"
	"github.com/terry-ai/terry/internal/session"
)

// Bot is the main application object tying the Telegram listener and the
// task scheduler together.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	sessions  *session.Manager
	tgBot     *tgbot.Bot
	scheduler *Scheduler
}

// NewBot creates the orchestrator over its already-initialized components.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	sessions *session.Manager,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		sessions:  sessions,
		tgBot:     tgBot,
		scheduler: scheduler,
	}
}

// Run starts all components and blocks until the context is cancelled or a
// component fails. On shutdown, in-memory sessions are flushed to the
// database before returning.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")

		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}

		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	b.flushSessions()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

// flushSessions writes in-memory sessions to the database on the way out.
// The parent context is already cancelled at this point, so it runs under
// its own bounded deadline.
func (b *Bot) flushSessions() {
	flushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	flushed, err := b.sessions.FlushAll(flushCtx)
	if err != nil {
		b.logger.Error("Final session flush finished with errors", "flushed", flushed, "error", err)
		return
	}
	b.logger.Info("Final session flush completed", "flushed", flushed)
}
