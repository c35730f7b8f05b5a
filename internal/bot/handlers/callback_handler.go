package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type callbackHandler struct {
	deps HandlerDeps
}

// NewCallbackHandler creates the handler for inline keyboard button
// presses. The payload is interpreted by the conversation router.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	cq := update.CallbackQuery
	if cq == nil {
		return
	}

	// Stop the client-side loading indicator regardless of the outcome.
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err, "callback_query_id", cq.ID)
	}

	log.InfoContext(ctx, "Handling callback", "user_id", cq.From.ID, "data", cq.Data)

	reply := h.deps.Router.HandleCallback(ctx, cq.From.ID, cq.Data)
	if reply == nil {
		return
	}

	var chatID int64
	var messageID int
	if cq.Message.Message.Date != 0 {
		chatID = cq.Message.Message.Chat.ID
		messageID = cq.Message.Message.ID
	} else {
		chatID = cq.Message.InaccessibleMessage.Chat.ID
	}

	SendReply(ctx, b, log, chatID, messageID, reply)
}
