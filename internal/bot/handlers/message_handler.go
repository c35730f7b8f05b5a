package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/terry-ai/terry/internal/chat"
)

type messageHandler struct {
	deps HandlerDeps
}

// NewMessageHandler creates the default handler for free text and photo
// messages. In group chats the addressing filter runs first: messages not
// directed at the bot are dropped without side effects.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}

	text := msg.Text
	caption := msg.Caption
	isGroup := msg.Chat.Type == "group" || msg.Chat.Type == "supergroup"

	if isGroup {
		combined := text
		if combined == "" {
			combined = caption
		}
		if !chat.DirectedAtBot(combined, h.isReplyToBot(msg), h.botUsername()) {
			log.DebugContext(ctx, "Group message not directed at bot, skipping", "chat_id", msg.Chat.ID)
			return
		}
		text = chat.StripMention(text, h.botUsername())
		caption = chat.StripMention(caption, h.botUsername())
	}

	var reply *chat.Reply
	switch {
	case len(msg.Photo) > 0:
		// Photo sizes are ordered smallest to largest; take the largest.
		fileID := msg.Photo[len(msg.Photo)-1].FileID

		h.sendTyping(ctx, b, msg.Chat.ID)
		data, err := DownloadPhoto(ctx, b, h.deps.Config.Telegram.Token, fileID)
		if err != nil {
			log.ErrorContext(ctx, "Failed to download photo", "error", err, "chat_id", msg.Chat.ID, "file_id", fileID)
			return
		}
		reply = h.deps.Router.HandlePhoto(ctx, msg.From.ID, data, caption)

	case text != "":
		h.sendTyping(ctx, b, msg.Chat.ID)
		reply = h.deps.Router.HandleText(ctx, msg.From.ID, text, isGroup)

	default:
		return
	}

	SendReply(ctx, b, log, msg.Chat.ID, 0, reply)
}

func (h messageHandler) sendTyping(ctx context.Context, b *bot.Bot, chatID int64) {
	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
}

func (h messageHandler) isReplyToBot(msg *models.Message) bool {
	info := h.deps.Config.Telegram.BotInfo
	return info != nil && msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && msg.ReplyToMessage.From.ID == info.ID
}

func (h messageHandler) botUsername() string {
	if info := h.deps.Config.Telegram.BotInfo; info != nil {
		return info.Username
	}
	return ""
}
