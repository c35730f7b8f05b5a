package chat_test

import (
	"testing"

	"github.com/terry-ai/terry/internal/chat"
)

func TestDirectedAtBot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		text         string
		isReplyToBot bool
		botUsername  string
		want         bool
	}{
		{
			name:        "mention in text",
			text:        "@terry_bot what is the weather",
			botUsername: "terry_bot",
			want:        true,
		},
		{
			name:        "mention mid-sentence",
			text:        "hey @terry_bot, help",
			botUsername: "terry_bot",
			want:        true,
		},
		{
			name:         "reply to bot without mention",
			text:         "and what about tomorrow",
			isReplyToBot: true,
			botUsername:  "terry_bot",
			want:         true,
		},
		{
			name:        "unrelated group chatter",
			text:        "lunch anyone?",
			botUsername: "terry_bot",
			want:        false,
		},
		{
			name:        "mention of another bot",
			text:        "@other_bot hello",
			botUsername: "terry_bot",
			want:        false,
		},
		{
			name:        "empty bot username never matches",
			text:        "@ hello",
			botUsername: "",
			want:        false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := chat.DirectedAtBot(tc.text, tc.isReplyToBot, tc.botUsername)
			if got != tc.want {
				t.Errorf("DirectedAtBot(%q, %v, %q) = %v, want %v", tc.text, tc.isReplyToBot, tc.botUsername, got, tc.want)
			}
		})
	}
}

func TestStripMention(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		botUsername string
		want        string
	}{
		{
			name:        "leading mention",
			text:        "@terry_bot what is the weather",
			botUsername: "terry_bot",
			want:        "what is the weather",
		},
		{
			name:        "trailing mention",
			text:        "what is the weather @terry_bot",
			botUsername: "terry_bot",
			want:        "what is the weather",
		},
		{
			name:        "no mention unchanged",
			text:        "what is the weather",
			botUsername: "terry_bot",
			want:        "what is the weather",
		},
		{
			name:        "username with leading at sign",
			text:        "@terry_bot hi",
			botUsername: "@terry_bot",
			want:        "hi",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := chat.StripMention(tc.text, tc.botUsername); got != tc.want {
				t.Errorf("StripMention(%q, %q) = %q, want %q", tc.text, tc.botUsername, got, tc.want)
			}
		})
	}
}
