// Package logger provides structured logging setup and the Telegram
// update-logging middleware. It uses Go's slog package with configurable
// level and output format.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewLogger creates a slog Logger with the given level. If jsonOutput is
// true, logs are formatted as JSON, otherwise as text.
func NewLogger(levelStr string, jsonOutput bool) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Middleware creates a logging middleware for the Telegram bot that records
// every processed update with timing information.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()

			logEntry := log.With("update_id", update.ID)

			switch {
			case update.Message != nil:
				msg := update.Message
				var userID int64
				if msg.From != nil {
					userID = msg.From.ID
				}
				logEntry = logEntry.With(
					"update_type", "message",
					"message_id", msg.ID,
					"chat_id", msg.Chat.ID,
					"chat_type", msg.Chat.Type,
					"user_id", userID,
					"has_photo", len(msg.Photo) > 0,
					"text_preview", truncate(msg.Text, 50),
				)
			case update.CallbackQuery != nil:
				cq := update.CallbackQuery
				logEntry = logEntry.With(
					"update_type", "callback_query",
					"callback_query_id", cq.ID,
					"user_id", cq.From.ID,
					"data", cq.Data,
				)
				if cq.Message.Message.Date != 0 {
					logEntry = logEntry.With("chat_id", cq.Message.Message.Chat.ID)
				} else {
					logEntry = logEntry.With("chat_id", cq.Message.InaccessibleMessage.Chat.ID, "message_accessible", false)
				}
			default:
				logEntry = logEntry.With("update_type", "other")
			}

			logEntry.DebugContext(ctx, "Processing update")

			next(ctx, b, update)

			logEntry.InfoContext(ctx, "Finished processing update", "duration", time.Since(start))
		}
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
