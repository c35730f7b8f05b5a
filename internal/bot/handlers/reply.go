package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/terry-ai/terry/internal/chat"
)

const sendMessageTimeout = 10 * time.Second

// SendReply delivers a router reply through the bot API: a photo by URL, an
// edit of the message that carried the pressed button, or a plain message,
// with an inline keyboard when the reply carries buttons. A nil reply means
// the event was consumed silently.
func SendReply(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, editMessageID int, reply *chat.Reply) {
	if reply == nil {
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	if reply.PhotoURL != "" {
		_, err := b.SendPhoto(sendCtx, &bot.SendPhotoParams{
			ChatID:  chatID,
			Photo:   &models.InputFileString{Data: reply.PhotoURL},
			Caption: reply.PhotoCaption,
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send photo reply", "error", err, "chat_id", chatID)
		}
		return
	}

	keyboard := inlineKeyboard(reply.Buttons)

	if reply.Edit && editMessageID > 0 {
		params := &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: editMessageID,
			Text:      reply.Text,
		}
		if keyboard != nil {
			params.ReplyMarkup = keyboard
		}
		if _, err := b.EditMessageText(sendCtx, params); err != nil {
			log.ErrorContext(ctx, "Failed to edit message", "error", err, "chat_id", chatID, "message_id", editMessageID)
		}
		return
	}

	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   reply.Text,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	if _, err := b.SendMessage(sendCtx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}

func inlineKeyboard(buttons [][]chat.Button) *models.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		kbRow := make([]models.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			kbRow = append(kbRow, models.InlineKeyboardButton{
				Text:         btn.Label,
				CallbackData: btn.Data,
			})
		}
		rows = append(rows, kbRow)
	}

	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
