// Package handlers implements the Telegram-facing handlers: thin glue that
// extracts event data from updates, runs the conversation router, and sends
// the resulting reply back through the bot API.
package handlers

import (
	"log/slog"

	"github.com/terry-ai/terry/internal/chat"
	"github.com/terry-ai/terry/internal/config"
)

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Router *chat.Router
}
