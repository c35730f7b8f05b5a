package chat

import "strings"

// DirectedAtBot decides whether a group-chat message is addressed to the
// bot: either it replies to one of the bot's own messages or its text
// carries an explicit @username mention. Runs before any intent handling,
// since pending intents are meaningless for messages not aimed at the bot.
func DirectedAtBot(text string, isReplyToBot bool, botUsername string) bool {
	if isReplyToBot {
		return true
	}
	return botUsername != "" && strings.Contains(text, mentionToken(botUsername))
}

// StripMention removes the bot's mention token from the message text before
// it is handed to the router.
func StripMention(text, botUsername string) string {
	if botUsername == "" {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(strings.ReplaceAll(text, mentionToken(botUsername), ""))
}

func mentionToken(botUsername string) string {
	return "@" + strings.TrimPrefix(botUsername, "@")
}
