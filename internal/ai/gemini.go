package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/terry-ai/terry/internal/config"
	"github.com/terry-ai/terry/internal/session"
)

// geminiProviderName is the provider key the model registry uses to route
// requests to this backend.
const geminiProviderName = "gemini"

// geminiBackend serves text and vision requests through the Gemini API.
// Image generation is not offered here; image models route to the
// OpenAI-compatible providers.
type geminiBackend struct {
	genaiClient *genai.Client
	log         *slog.Logger
	baseConfig  *genai.GenerateContentConfig
	maxRetries  int
	retryDelay  time.Duration
}

func newGeminiBackend(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (*geminiBackend, error) {
	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,

		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	return &geminiBackend{
		genaiClient: gi,
		log:         log.With("provider", geminiProviderName),
		baseConfig:  baseCfg,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

func (b *geminiBackend) generateText(ctx context.Context, model string, history []session.Message, image []byte) (string, error) {
	cfg := *b.baseConfig

	var contents []*genai.Content
	for _, msg := range history {
		switch msg.Role {
		case session.RoleSystem:
			// System messages become the system instruction rather than
			// conversation turns.
			cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: msg.Content}}}
		case session.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	if len(image) > 0 {
		mime := http.DetectContentType(image)
		contents = append(contents, genai.NewContentFromParts([]*genai.Part{genai.NewPartFromBytes(image, mime)}, genai.RoleUser))
	}

	if len(contents) == 0 {
		return "", &Error{Kind: KindBadResponse, Provider: geminiProviderName, Message: "conversation contains no user turns"}
	}

	resp, err := b.generateContentWithRetries(ctx, model, contents, &cfg)
	if err != nil {
		return "", err
	}
	return b.extractText(ctx, resp)
}

func (b *geminiBackend) generateImage(ctx context.Context, model, prompt string) (string, error) {
	return "", &Error{Kind: KindUnsupported, Provider: geminiProviderName, Message: "image generation is not supported by this provider"}
}

func (b *geminiBackend) generateContentWithRetries(ctx context.Context, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= b.maxRetries; i++ {
		resp, err = b.genaiClient.Models.GenerateContent(ctx, modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		b.log.WarnContext(ctx, "Gemini API call failed, checking for retry", "attempt", i+1, "max_retries", b.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < b.maxRetries {
				b.log.InfoContext(ctx, "Retrying Gemini API call due to retriable APIError", "delay", b.retryDelay, "code", apiErr.Code)
				time.Sleep(b.retryDelay)
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w", b.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	return nil, err
}

func (b *geminiBackend) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		b.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", &Error{Kind: KindBadResponse, Provider: geminiProviderName, Message: "request blocked by safety filter: " + reasonMsg}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		b.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", &Error{Kind: KindBadResponse, Provider: geminiProviderName, Message: "response contains no content, finish reason: " + finishReason}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &Error{Kind: KindBadResponse, Provider: geminiProviderName, Message: "response text is empty"}
	}
	return text, nil
}
