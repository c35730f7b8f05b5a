// Package main contains the entrypoint for the Terry Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/terry-ai/terry/internal/ai"
	"github.com/terry-ai/terry/internal/bot"
	"github.com/terry-ai/terry/internal/bot/handlers"
	"github.com/terry-ai/terry/internal/bot/tasks"
	"github.com/terry-ai/terry/internal/chat"
	"github.com/terry-ai/terry/internal/config"
	"github.com/terry-ai/terry/internal/database"
	"github.com/terry-ai/terry/internal/logger"
	"github.com/terry-ai/terry/internal/registry"
	"github.com/terry-ai/terry/internal/session"
	"github.com/terry-ai/terry/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all application components, starts the bot, and returns
// an exit code after shutdown.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	modelRegistry, err := registry.FromConfig(cfg.Models)
	if err != nil {
		log.Error("Invalid model registry configuration", "error", err)
		return 1
	}

	aiClient, err := ai.NewClient(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize AI client", "error", err)
		return 1
	}

	sessions := session.NewManager(store, log, cfg.Database.OperationTimeout)
	router := chat.NewRouter(log, sessions, aiClient, modelRegistry, cfg.AI.TranslateModel)

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Router: router,
	}
	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Sessions: sessions,
		Config:   cfg,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetupCommands(ctx, tg, log); err != nil {
		log.Error("Failed to set up command menus", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	app := bot.NewBot(log, cfg, sessions, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
