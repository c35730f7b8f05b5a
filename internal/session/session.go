// Package session implements the per-user conversational state: the Session
// entity with its mutation rules and the Manager that owns session lifecycle,
// per-user serialization, and persistence.
package session

import (
	"log/slog"

	"github.com/terry-ai/terry/internal/i18n"
	"github.com/terry-ai/terry/internal/registry"
)

// Role labels a history entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one ordered entry of the conversational context sent to a model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Mode determines whether inbound text is a chat turn or an image prompt.
type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

// PendingIntent marks that the next inbound text message is consumed as the
// answer to a multi-step flow instead of as a new chat turn. At most one
// intent is pending at a time; it is dispatch state, never persisted.
type PendingIntent int

const (
	IntentNone PendingIntent = iota
	IntentAwaitingSystemPrompt
	IntentAwaitingTargetLanguage
	IntentAwaitingTranslationText
	IntentAwaitingImageQuestion
)

func (i PendingIntent) String() string {
	switch i {
	case IntentAwaitingSystemPrompt:
		return "awaiting_system_prompt"
	case IntentAwaitingTargetLanguage:
		return "awaiting_target_language"
	case IntentAwaitingTranslationText:
		return "awaiting_translation_text"
	case IntentAwaitingImageQuestion:
		return "awaiting_image_question"
	default:
		return "none"
	}
}

// Session is the conversational state of a single user.
//
// History, CurrentModel, Provider, SystemPrompt, Mode, InterfaceLanguage and
// GroupImageGenerated survive restarts; PendingIntent, TranslationTarget and
// LastImage live only for the current interaction sequence.
type Session struct {
	UserID int64

	History      []Message
	CurrentModel string
	Provider     string
	Mode         Mode
	SystemPrompt string

	InterfaceLanguage   i18n.Locale
	GroupImageGenerated bool

	PendingIntent     PendingIntent
	TranslationTarget string
	LastImage         []byte
}

// New constructs a fresh default session: text mode, no model, default locale.
func New(userID int64) *Session {
	return &Session{
		UserID:            userID,
		Mode:              ModeText,
		InterfaceLanguage: i18n.DefaultLocale,
	}
}

// AddMessage appends an entry to the history. Content length is the caller's
// responsibility.
func (s *Session) AddMessage(role Role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content})
	slog.Debug("session message appended", "user_id", s.UserID, "role", role, "content_length", len(content))
}

// ClearHistory empties the history, re-seeds it with the system prompt when
// one is set, and drops the last received image. Called whenever the model,
// system prompt, or image-mode identity changes so that incompatible context
// is never mixed across a switch.
func (s *Session) ClearHistory() {
	slog.Debug("clearing session history", "user_id", s.UserID, "messages", len(s.History))
	s.History = nil
	if s.SystemPrompt != "" {
		s.AddMessage(RoleSystem, s.SystemPrompt)
	}
	s.LastImage = nil
}

// SetModel selects a model from the registry. On success it sets the model,
// its provider and the session mode, and resets the group image flag. It does
// not clear history; callers decide when context must be dropped.
func (s *Session) SetModel(reg *registry.Registry, id string, kind registry.Kind) error {
	m, err := reg.Lookup(kind, id)
	if err != nil {
		slog.Warn("attempted to set unknown model", "user_id", s.UserID, "model", id, "kind", kind)
		return err
	}

	s.CurrentModel = m.ID
	s.Provider = m.Provider
	if kind == registry.KindImage {
		s.Mode = ModeImage
	} else {
		s.Mode = ModeText
	}
	s.GroupImageGenerated = false

	slog.Info("session model set", "user_id", s.UserID, "model", m.ID, "provider", m.Provider, "mode", s.Mode)
	return nil
}

// SetSystemPrompt stores the prompt and clears the history so the prompt
// becomes the first entry.
func (s *Session) SetSystemPrompt(prompt string) {
	s.SystemPrompt = prompt
	s.ClearHistory()
}

// SupportsVision reports whether the currently selected text model accepts
// image input. Image-mode sessions never support vision.
func (s *Session) SupportsVision(reg *registry.Registry) bool {
	if s.CurrentModel == "" || s.Mode != ModeText {
		return false
	}
	m, err := reg.Lookup(registry.KindText, s.CurrentModel)
	if err != nil {
		return false
	}
	return m.Vision
}

// ResetImageModelInGroup clears the selected image model after a group-chat
// generation, forcing explicit re-selection before another group image.
// Returns whether a reset occurred.
func (s *Session) ResetImageModelInGroup() bool {
	if s.Mode != ModeImage {
		return false
	}
	s.CurrentModel = ""
	s.Provider = ""
	s.GroupImageGenerated = false
	slog.Info("image model reset after group generation", "user_id", s.UserID)
	return true
}

// SetInterfaceLanguage switches the UI locale. Unknown codes are rejected
// without mutation.
func (s *Session) SetInterfaceLanguage(code string) bool {
	if !i18n.IsSupported(code) {
		slog.Warn("attempted to set unknown interface language", "user_id", s.UserID, "code", code)
		return false
	}
	s.InterfaceLanguage = i18n.Locale(code)
	return true
}

// SetPendingIntent arms an intent. Setting any intent clears the previous one
// (the field is single-valued); leaving the translation flow drops the stored
// target language.
func (s *Session) SetPendingIntent(intent PendingIntent) {
	if intent != IntentAwaitingTranslationText {
		s.TranslationTarget = ""
	}
	s.PendingIntent = intent
}

// Locale is a convenience accessor for the session's interface locale.
func (s *Session) Locale() i18n.Locale {
	return s.InterfaceLanguage
}
