// Package tasks implements the bot's scheduled background tasks and their
// registration.
package tasks

import (
	"log/slog"

	"github.com/terry-ai/terry/internal/config"
	"github.com/terry-ai/terry/internal/database"
	"github.com/terry-ai/terry/internal/session"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Sessions *session.Manager
	Config   *config.Config
}
