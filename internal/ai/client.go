// Package ai implements the provider-routing AI client. Each configured
// provider serves an OpenAI-compatible or Gemini backend; the client routes
// requests by the provider name recorded in the model registry.
package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/terry-ai/terry/internal/config"
	"github.com/terry-ai/terry/internal/session"
)

// ErrorKind classifies an AI failure for the router's error branch.
type ErrorKind string

const (
	KindProvider    ErrorKind = "provider"
	KindTimeout     ErrorKind = "timeout"
	KindBadResponse ErrorKind = "bad_response"
	KindUnsupported ErrorKind = "unsupported"
)

// Error is the explicit failure result of an AI call: a kind, the provider
// that produced it, and a human-readable message.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ai %s error from %s: %s: %v", e.Kind, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("ai %s error from %s: %s", e.Kind, e.Provider, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Client defines the AI operations the conversation router depends on.
type Client interface {
	// GenerateText sends the conversation history to the provider's model
	// and returns the assistant reply. A non-nil image is attached to the
	// last history entry for vision-capable models.
	GenerateText(ctx context.Context, provider, model string, history []session.Message, image []byte) (string, error)

	// GenerateImage asks the provider's model to render the prompt and
	// returns the resulting image URL.
	GenerateImage(ctx context.Context, provider, model, prompt string) (string, error)
}

// backend is one concrete provider implementation.
type backend interface {
	generateText(ctx context.Context, model string, history []session.Message, image []byte) (string, error)
	generateImage(ctx context.Context, model, prompt string) (string, error)
}

type client struct {
	logger   *slog.Logger
	timeout  time.Duration
	backends map[string]backend
}

// NewClient builds the routing client from configuration: one OpenAI-compatible
// backend per configured provider, plus the Gemini backend when an API key is
// set. At least one backend must exist.
func NewClient(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (Client, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "ai_client")

	backends := make(map[string]backend, len(cfg.Providers)+1)
	for name, pc := range cfg.Providers {
		if name == "" {
			return nil, errors.New("ai provider with empty name")
		}
		backends[name] = newOpenAIBackend(name, pc, log)
		log.Info("AI provider configured", "provider", name, "base_url", pc.BaseURL)
	}

	if cfg.Gemini.APIKey != "" {
		g, err := newGeminiBackend(ctx, cfg.Gemini, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini backend: %w", err)
		}
		backends[geminiProviderName] = g
		log.Info("AI provider configured", "provider", geminiProviderName)
	}

	if len(backends) == 0 {
		return nil, errors.New("no AI providers configured")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &client{logger: log, timeout: timeout, backends: backends}, nil
}

func (c *client) backend(provider string) (backend, error) {
	b, ok := c.backends[provider]
	if !ok {
		return nil, &Error{Kind: KindUnsupported, Provider: provider, Message: "provider is not configured"}
	}
	return b, nil
}

func (c *client) GenerateText(ctx context.Context, provider, model string, history []session.Message, image []byte) (string, error) {
	b, err := c.backend(provider)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.DebugContext(ctx, "Generating text", "provider", provider, "model", model, "messages", len(history), "has_image", len(image) > 0)

	text, err := b.generateText(callCtx, model, history, image)
	if err != nil {
		return "", c.classify(provider, err)
	}
	return text, nil
}

func (c *client) GenerateImage(ctx context.Context, provider, model, prompt string) (string, error) {
	b, err := c.backend(provider)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.DebugContext(ctx, "Generating image", "provider", provider, "model", model, "prompt_length", len(prompt))

	url, err := b.generateImage(callCtx, model, prompt)
	if err != nil {
		return "", c.classify(provider, err)
	}
	return url, nil
}

// classify wraps backend failures in a typed *Error, preserving one that a
// backend already produced and promoting deadline expiry to KindTimeout.
func (c *client) classify(provider string, err error) error {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Provider: provider, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindProvider, Provider: provider, Message: "request failed", Err: err}
}
