package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/terry-ai/terry/internal/chat"
)

// newCommandHandler adapts a router command operation into a Telegram
// handler: extract the sender, run the operation, send the reply.
func newCommandHandler(deps HandlerDeps, name string, op func(ctx context.Context, userID int64) *chat.Reply) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := deps.Logger.With("handler", name)

		msg := update.Message
		if msg == nil || msg.From == nil {
			log.WarnContext(ctx, "Command handler received update with nil message or sender", "update_id", update.ID)
			return
		}

		log.InfoContext(ctx, "Handling command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
		SendReply(ctx, b, log, msg.Chat.ID, 0, op(ctx, msg.From.ID))
	}
}

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return newCommandHandler(deps, "start", deps.Router.Start)
}

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return newCommandHandler(deps, "help", deps.Router.Help)
}

// NewNewChatHandler returns a handler for the /newchat command.
func NewNewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return newCommandHandler(deps, "newchat", deps.Router.NewChat)
}

// NewImageHandler returns a handler for the /image command.
func NewImageHandler(deps HandlerDeps) bot.HandlerFunc {
	return newCommandHandler(deps, "image", deps.Router.ImageMode)
}

// NewTranslateHandler returns a handler for the /translate command.
func NewTranslateHandler(deps HandlerDeps) bot.HandlerFunc {
	return newCommandHandler(deps, "translate", deps.Router.Translate)
}

// NewLanguageHandler returns a handler for the /language command.
func NewLanguageHandler(deps HandlerDeps) bot.HandlerFunc {
	return newCommandHandler(deps, "language", deps.Router.Language)
}
