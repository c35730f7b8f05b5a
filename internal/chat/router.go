// Package chat implements the conversation router: the per-event decision
// procedure that interprets inbound messages against the session's pending
// intent and dispatches to chat, image generation, translation, or vision.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/terry-ai/terry/internal/ai"
	"github.com/terry-ai/terry/internal/i18n"
	"github.com/terry-ai/terry/internal/registry"
	"github.com/terry-ai/terry/internal/session"
)

// Router runs the intent state machine for one inbound event at a time.
// Session access goes through Manager.Acquire, so events for the same user
// are processed sequentially while different users proceed concurrently.
type Router struct {
	logger         *slog.Logger
	sessions       *session.Manager
	ai             ai.Client
	registry       *registry.Registry
	translateModel string
}

// NewRouter wires the router's collaborators. translateModel must name a
// model from the text registry; it serves translation requests and the
// English normalization of image prompts.
func NewRouter(logger *slog.Logger, sessions *session.Manager, aiClient ai.Client, reg *registry.Registry, translateModel string) *Router {
	return &Router{
		logger:         logger.With("component", "chat_router"),
		sessions:       sessions,
		ai:             aiClient,
		registry:       reg,
		translateModel: translateModel,
	}
}

// Start handles the /start command.
func (r *Router) Start(ctx context.Context, userID int64) *Reply {
	sess, release := r.sessions.Acquire(ctx, userID)
	defer release()

	return textReply(i18n.Text(sess.Locale(), "welcome"))
}

// Help handles the /help command, appending the currently selected model.
func (r *Router) Help(ctx context.Context, userID int64) *Reply {
	sess, release := r.sessions.Acquire(ctx, userID)
	defer release()

	loc := sess.Locale()
	var sb strings.Builder
	sb.WriteString(i18n.Text(loc, "help_title"))
	sb.WriteString(i18n.Text(loc, "help_features"))
	sb.WriteString(i18n.Text(loc, "help_instructions"))

	if sess.CurrentModel != "" {
		sb.WriteString(i18n.Text(loc, "current_model", r.modelName(sess)))
		if sess.SupportsVision(r.registry) {
			sb.WriteString(i18n.Text(loc, "current_model_vision"))
		}
	}

	return textReply(sb.String())
}

// NewChat handles the /newchat command with the text model menu.
func (r *Router) NewChat(ctx context.Context, userID int64) *Reply {
	sess, release := r.sessions.Acquire(ctx, userID)
	defer release()

	return &Reply{
		Text:    i18n.Text(sess.Locale(), "select_text_model"),
		Buttons: r.modelButtons(registry.KindText),
	}
}

// ImageMode handles the /image command with the image model menu.
func (r *Router) ImageMode(ctx context.Context, userID int64) *Reply {
	sess, release := r.sessions.Acquire(ctx, userID)
	defer release()

	return &Reply{
		Text:    i18n.Text(sess.Locale(), "select_image_model"),
		Buttons: r.modelButtons(registry.KindImage),
	}
}

// Translate handles the /translate command: the next message names the
// target language.
func (r *Router) Translate(ctx context.Context, userID int64) *Reply {
	sess, release := r.sessions.Acquire(ctx, userID)
	defer release()

	sess.SetPendingIntent(session.IntentAwaitingTargetLanguage)
	return textReply(i18n.Text(sess.Locale(), "translation_mode_activated"))
}

// Language handles the /language command with the locale menu.
func (r *Router) Language(ctx context.Context, userID int64) *Reply {
	sess, release := r.sessions.Acquire(ctx, userID)
	defer release()

	loc := sess.Locale()
	buttons := make([][]Button, 0, len(i18n.Supported()))
	for _, code := range i18n.Supported() {
		buttons = append(buttons, []Button{{
			Label: i18n.LanguageName(loc, code),
			Data:  "lang:" + string(code),
		}})
	}

	return &Reply{
		Text:    i18n.Text(loc, "language_selection"),
		Buttons: buttons,
	}
}

// HandleCallback processes a button press payload of the form
// kind:subtype:value. Malformed or unknown payloads are dropped without
// mutating the session.
func (r *Router) HandleCallback(ctx context.Context, userID int64, data string) *Reply {
	sess, release := r.sessions.Acquire(ctx, userID)
	defer release()

	loc := sess.Locale()

	switch {
	case strings.HasPrefix(data, "model:text:"):
		return r.selectTextModel(ctx, sess, strings.TrimPrefix(data, "model:text:"))

	case strings.HasPrefix(data, "model:image:"):
		return r.selectImageModel(ctx, sess, strings.TrimPrefix(data, "model:image:"))

	case data == "systemprompt:custom":
		sess.SetPendingIntent(session.IntentAwaitingSystemPrompt)
		return editReply(i18n.Text(loc, "send_system_prompt"))

	case data == "systemprompt:none":
		sess.SystemPrompt = ""
		sess.ClearHistory()
		text := i18n.Text(loc, "chat_created_no_prompt", r.modelName(sess))
		if sess.SupportsVision(r.registry) {
			text += i18n.Text(loc, "vision_capability")
		}
		return editReply(text)

	case strings.HasPrefix(data, "lang:"):
		code := strings.TrimPrefix(data, "lang:")
		if !sess.SetInterfaceLanguage(code) {
			r.logger.WarnContext(ctx, "Rejected unknown interface language", "user_id", userID, "code", code)
			return nil
		}
		newLoc := sess.Locale()
		return editReply(i18n.Text(newLoc, "language_set", i18n.LanguageName(newLoc, newLoc)))

	default:
		r.logger.WarnContext(ctx, "Dropped malformed callback payload", "user_id", userID, "data", data)
		return nil
	}
}

func (r *Router) selectTextModel(ctx context.Context, sess *session.Session, id string) *Reply {
	loc := sess.Locale()
	if err := sess.SetModel(r.registry, id, registry.KindText); err != nil {
		r.logger.WarnContext(ctx, "Text model selection failed", "user_id", sess.UserID, "model", id, "error", err)
		return nil
	}

	var visionNote string
	if sess.SupportsVision(r.registry) {
		visionNote = i18n.Text(loc, "vision_capability")
	}

	return &Reply{
		Text: i18n.Text(loc, "model_selected", r.modelName(sess)) + "\n\n" +
			i18n.Text(loc, "system_prompt_question", visionNote),
		Buttons: [][]Button{
			{{Label: i18n.Text(loc, "btn_set_system_prompt"), Data: "systemprompt:custom"}},
			{{Label: i18n.Text(loc, "btn_no_system_prompt"), Data: "systemprompt:none"}},
		},
		Edit: true,
	}
}

func (r *Router) selectImageModel(ctx context.Context, sess *session.Session, id string) *Reply {
	loc := sess.Locale()
	if err := sess.SetModel(r.registry, id, registry.KindImage); err != nil {
		r.logger.WarnContext(ctx, "Image model selection failed", "user_id", sess.UserID, "model", id, "error", err)
		return nil
	}
	sess.ClearHistory()

	return editReply(i18n.Text(loc, "model_selected", r.modelName(sess)) + "\n\n" +
		i18n.Text(loc, "send_image_prompt"))
}

// HandleText runs the intent state machine for a free text message, in
// strict priority order: pending intents first, then the model-gated
// default chat or image generation branch.
func (r *Router) HandleText(ctx context.Context, userID int64, text string, isGroup bool) *Reply {
	sess, release := r.sessions.Acquire(ctx, userID)
	defer release()

	switch sess.PendingIntent {
	case session.IntentAwaitingSystemPrompt:
		return r.captureSystemPrompt(ctx, sess, text)
	case session.IntentAwaitingTargetLanguage:
		return r.captureTargetLanguage(sess, text)
	case session.IntentAwaitingTranslationText:
		return r.runTranslation(ctx, sess, text)
	case session.IntentAwaitingImageQuestion:
		return r.answerImageQuestion(ctx, sess, text)
	}

	loc := sess.Locale()
	if sess.CurrentModel == "" {
		return textReply(i18n.Text(loc, "select_model_first"))
	}

	if sess.Mode == session.ModeImage {
		return r.generateImage(ctx, sess, text, isGroup)
	}
	return r.chatTurn(ctx, sess, text, nil)
}

func (r *Router) captureSystemPrompt(ctx context.Context, sess *session.Session, prompt string) *Reply {
	sess.SetSystemPrompt(prompt)
	sess.SetPendingIntent(session.IntentNone)
	r.save(ctx, sess.UserID)

	return textReply(i18n.Text(sess.Locale(), "system_prompt_set", r.modelName(sess)))
}

func (r *Router) captureTargetLanguage(sess *session.Session, target string) *Reply {
	sess.TranslationTarget = target
	sess.SetPendingIntent(session.IntentAwaitingTranslationText)

	return textReply(i18n.Text(sess.Locale(), "translation_language_selected", target))
}

func (r *Router) runTranslation(ctx context.Context, sess *session.Session, text string) *Reply {
	loc := sess.Locale()
	target := sess.TranslationTarget
	sess.SetPendingIntent(session.IntentNone)

	translated, err := r.translate(ctx, text, target)
	if err != nil {
		r.logger.ErrorContext(ctx, "Translation failed", "user_id", sess.UserID, "target", target, "error", err)
		return textReply(i18n.Text(loc, "translation_error", errorReason(err)))
	}

	return textReply(i18n.Text(loc, "translation_result", target, translated))
}

func (r *Router) answerImageQuestion(ctx context.Context, sess *session.Session, question string) *Reply {
	loc := sess.Locale()
	sess.SetPendingIntent(session.IntentNone)

	if len(sess.LastImage) == 0 {
		return textReply(i18n.Text(loc, "no_image_found"))
	}

	return r.chatTurn(ctx, sess, question, sess.LastImage)
}

// chatTurn appends the user message, calls the text collaborator, and on
// success appends the reply and persists. A failed turn keeps the user
// entry in history without persisting.
func (r *Router) chatTurn(ctx context.Context, sess *session.Session, text string, image []byte) *Reply {
	loc := sess.Locale()
	sess.AddMessage(session.RoleUser, text)

	answer, err := r.ai.GenerateText(ctx, sess.Provider, sess.CurrentModel, sess.History, image)
	if err != nil {
		r.logger.ErrorContext(ctx, "Text generation failed", "user_id", sess.UserID, "model", sess.CurrentModel, "error", err)
		key := "error_occurred"
		if len(image) > 0 {
			key = "image_error"
		}
		return textReply(i18n.Text(loc, key, errorReason(err)))
	}

	sess.AddMessage(session.RoleAssistant, answer)
	r.save(ctx, sess.UserID)
	return textReply(answer)
}

func (r *Router) generateImage(ctx context.Context, sess *session.Session, prompt string, isGroup bool) *Reply {
	loc := sess.Locale()

	if isGroup && sess.GroupImageGenerated {
		sess.ResetImageModelInGroup()
		r.save(ctx, sess.UserID)
		return &Reply{
			Text:    i18n.Text(loc, "select_model_for_next_image"),
			Buttons: r.modelButtons(registry.KindImage),
		}
	}

	// Prompts are normalized to English before generation; providers hit
	// far more reliably on English prompts. Falls back to the raw prompt
	// when the translation call fails.
	normalized, err := r.translate(ctx, prompt, "English")
	if err != nil {
		r.logger.WarnContext(ctx, "Prompt normalization failed, using raw prompt", "user_id", sess.UserID, "error", err)
		normalized = prompt
	}

	url, err := r.ai.GenerateImage(ctx, sess.Provider, sess.CurrentModel, normalized)
	if err != nil {
		r.logger.ErrorContext(ctx, "Image generation failed", "user_id", sess.UserID, "model", sess.CurrentModel, "error", err)
		return textReply(i18n.Text(loc, "error_occurred", errorReason(err)))
	}

	if isGroup {
		sess.GroupImageGenerated = true
	}
	r.save(ctx, sess.UserID)

	return &Reply{
		PhotoURL:     url,
		PhotoCaption: i18n.Text(loc, "generated_with", r.modelName(sess)),
	}
}

// HandlePhoto processes an inbound photo. A caption becomes the vision
// question immediately; without one the image is held until the follow-up
// text arrives.
func (r *Router) HandlePhoto(ctx context.Context, userID int64, image []byte, caption string) *Reply {
	sess, release := r.sessions.Acquire(ctx, userID)
	defer release()

	loc := sess.Locale()
	if sess.CurrentModel == "" {
		return textReply(i18n.Text(loc, "select_model_first"))
	}
	if !sess.SupportsVision(r.registry) {
		return textReply(i18n.Text(loc, "no_vision_support"))
	}

	if caption != "" {
		return r.chatTurn(ctx, sess, caption, image)
	}

	sess.LastImage = image
	sess.SetPendingIntent(session.IntentAwaitingImageQuestion)
	return textReply(i18n.Text(loc, "image_received"))
}

// translate runs a one-shot translation through the configured translate
// model, outside any user's conversation history.
func (r *Router) translate(ctx context.Context, text, target string) (string, error) {
	m, err := r.registry.Lookup(registry.KindText, r.translateModel)
	if err != nil {
		return "", fmt.Errorf("translate model unavailable: %w", err)
	}

	messages := []session.Message{
		{Role: session.RoleSystem, Content: fmt.Sprintf("You are a professional translator. Translate the user's message into %s. Reply with only the translation, without explanations.", target)},
		{Role: session.RoleUser, Content: text},
	}

	out, err := r.ai.GenerateText(ctx, m.Provider, m.ID, messages, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Router) modelButtons(kind registry.Kind) [][]Button {
	models := r.registry.List(kind)
	buttons := make([][]Button, 0, len(models))
	for _, m := range models {
		label := m.Name()
		if m.Vision {
			label += " 👁"
		}
		buttons = append(buttons, []Button{{
			Label: label,
			Data:  fmt.Sprintf("model:%s:%s", kind, m.ID),
		}})
	}
	return buttons
}

// modelName resolves the display name for the session's current model.
func (r *Router) modelName(sess *session.Session) string {
	kind := registry.KindText
	if sess.Mode == session.ModeImage {
		kind = registry.KindImage
	}
	if m, err := r.registry.Lookup(kind, sess.CurrentModel); err == nil {
		return m.Name()
	}
	return sess.CurrentModel
}

// save persists the session after a successful turn. Failures are already
// logged by the manager and never surface to the user.
func (r *Router) save(ctx context.Context, userID int64) {
	_ = r.sessions.Save(ctx, userID)
}

// errorReason extracts the user-facing failure reason from a collaborator
// error.
func errorReason(err error) string {
	var aiErr *ai.Error
	if errors.As(err, &aiErr) {
		return aiErr.Message
	}
	return "request failed"
}
