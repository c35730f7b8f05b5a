// Package telegram handles the setup and registration of Telegram bot
// handlers and the bot command menus.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/terry-ai/terry/internal/bot/handlers"
	"github.com/terry-ai/terry/internal/i18n"
)

// NewTelegramBot creates a new Telegram bot instance using the
// go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", token[:8]+"...")
	return b, nil
}

// applyMiddleware wraps a handler function with a slice of middleware.
// Middleware are applied in reverse order so the first one in the slice is
// the outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers command and callback handlers with the
// Telegram bot instance.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	for _, regHandler := range registeredHandlers {
		if regHandler.Handler == nil {
			log.Warn("Skipping registration for nil handler", "pattern", regHandler.Pattern)
			continue
		}

		finalHandler := applyMiddleware(regHandler.Handler, regHandler.Middleware)
		b.RegisterHandler(regHandler.HandlerType, regHandler.Pattern, regHandler.MatchType, finalHandler)
		log.Debug("Registered handler", "pattern", regHandler.Pattern, "match_type", regHandler.MatchType, "middleware_count", len(regHandler.Middleware))
	}

	log.Info("Registered Telegram handlers successfully", "count", len(registeredHandlers))
	return nil
}

// SetupCommands registers the bot command menus. Private chats get the full
// command set; group chats get the subset that makes sense with the
// mention-addressing rules.
func SetupCommands(ctx context.Context, b *bot.Bot, logger *slog.Logger) error {
	log := logger.With("component", "telegram_bot")

	private := []models.BotCommand{
		{Command: "newchat", Description: i18n.Text(i18n.DefaultLocale, "cmd_newchat")},
		{Command: "image", Description: i18n.Text(i18n.DefaultLocale, "cmd_image")},
		{Command: "translate", Description: i18n.Text(i18n.DefaultLocale, "cmd_translate")},
		{Command: "language", Description: i18n.Text(i18n.DefaultLocale, "cmd_language")},
		{Command: "help", Description: i18n.Text(i18n.DefaultLocale, "cmd_help")},
	}

	group := []models.BotCommand{
		{Command: "newchat", Description: i18n.Text(i18n.DefaultLocale, "cmd_newchat")},
		{Command: "image", Description: i18n.Text(i18n.DefaultLocale, "cmd_image")},
		{Command: "help", Description: i18n.Text(i18n.DefaultLocale, "cmd_help")},
	}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: private,
		Scope:    &models.BotCommandScopeAllPrivateChats{},
	}); err != nil {
		return fmt.Errorf("failed to set private chat commands: %w", err)
	}

	if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: group,
		Scope:    &models.BotCommandScopeAllGroupChats{},
	}); err != nil {
		return fmt.Errorf("failed to set group chat commands: %w", err)
	}

	log.Info("Command menus registered", "private", len(private), "group", len(group))
	return nil
}
