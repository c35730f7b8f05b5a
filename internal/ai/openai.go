package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/terry-ai/terry/internal/config"
	"github.com/terry-ai/terry/internal/session"
)

// openaiBackend talks to any OpenAI-compatible chat and image API.
type openaiBackend struct {
	name   string
	client *openai.Client
	logger *slog.Logger
}

func newOpenAIBackend(name string, cfg config.ProviderConfig, logger *slog.Logger) *openaiBackend {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &openaiBackend{
		name:   name,
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger.With("provider", name),
	}
}

func (b *openaiBackend) generateText(ctx context.Context, model string, history []session.Message, image []byte) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	if len(image) > 0 && len(messages) > 0 {
		last := len(messages) - 1
		messages[last] = withImagePart(messages[last], image)
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindBadResponse, Provider: b.name, Message: "response contains no choices"}
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", &Error{Kind: KindBadResponse, Provider: b.name, Message: "response text is empty"}
	}
	return text, nil
}

func (b *openaiBackend) generateImage(ctx context.Context, model, prompt string) (string, error) {
	resp, err := b.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          model,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", &Error{Kind: KindBadResponse, Provider: b.name, Message: "image response contains no URL"}
	}
	return resp.Data[0].URL, nil
}

// withImagePart converts a plain text message into a multi-part message
// carrying the text plus the image as a base64 data URL.
func withImagePart(msg openai.ChatCompletionMessage, image []byte) openai.ChatCompletionMessage {
	mime := http.DetectContentType(image)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(image))

	parts := []openai.ChatMessagePart{}
	if msg.Content != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: msg.Content,
		})
	}
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL: dataURL,
		},
	})

	return openai.ChatCompletionMessage{
		Role:         msg.Role,
		MultiContent: parts,
	}
}
