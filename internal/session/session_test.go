// Package session_test tests the session entity and its mutation rules.
package session_test

import (
	"errors"
	"testing"

	"github.com/terry-ai/terry/internal/i18n"
	"github.com/terry-ai/terry/internal/registry"
	"github.com/terry-ai/terry/internal/session"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg, err := registry.New(
		[]registry.Model{
			{ID: "gpt-4o", Provider: "openai", DisplayName: "GPT-4o", Vision: true},
			{ID: "gpt-4o-mini", Provider: "openai", DisplayName: "GPT-4o mini"},
		},
		[]registry.Model{
			{ID: "dall-e-3", Provider: "openai", DisplayName: "DALL-E 3"},
		},
	)
	if err != nil {
		t.Fatalf("failed to build test registry: %v", err)
	}
	return reg
}

func TestAddMessagePreservesOrder(t *testing.T) {
	t.Parallel()

	s := session.New(1)
	s.AddMessage(session.RoleUser, "first")
	s.AddMessage(session.RoleAssistant, "second")
	s.AddMessage(session.RoleUser, "third")

	want := []session.Message{
		{Role: session.RoleUser, Content: "first"},
		{Role: session.RoleAssistant, Content: "second"},
		{Role: session.RoleUser, Content: "third"},
	}

	if len(s.History) != len(want) {
		t.Fatalf("history length = %d, want %d", len(s.History), len(want))
	}
	for i, msg := range want {
		if s.History[i] != msg {
			t.Errorf("history[%d] = %+v, want %+v", i, s.History[i], msg)
		}
	}
}

func TestClearHistory(t *testing.T) {
	t.Parallel()

	t.Run("without system prompt", func(t *testing.T) {
		t.Parallel()

		s := session.New(1)
		s.AddMessage(session.RoleUser, "hello")
		s.LastImage = []byte{0x89, 0x50}

		s.ClearHistory()

		if len(s.History) != 0 {
			t.Errorf("history not empty after clear: %d entries", len(s.History))
		}
		if s.LastImage != nil {
			t.Error("last image survived history clear")
		}
	})

	t.Run("with system prompt reseeds", func(t *testing.T) {
		t.Parallel()

		s := session.New(1)
		s.SystemPrompt = "be brief"
		s.AddMessage(session.RoleUser, "hello")

		s.ClearHistory()

		if len(s.History) != 1 {
			t.Fatalf("history length = %d, want 1", len(s.History))
		}
		first := s.History[0]
		if first.Role != session.RoleSystem || first.Content != "be brief" {
			t.Errorf("history[0] = %+v, want system prompt entry", first)
		}
	})
}

func TestSetSystemPrompt(t *testing.T) {
	t.Parallel()

	s := session.New(1)
	s.AddMessage(session.RoleUser, "old context")

	s.SetSystemPrompt("you are a pirate")

	if s.SystemPrompt != "you are a pirate" {
		t.Errorf("system prompt = %q", s.SystemPrompt)
	}
	if len(s.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(s.History))
	}
	if s.History[0].Role != session.RoleSystem || s.History[0].Content != "you are a pirate" {
		t.Errorf("history[0] = %+v, want the new system prompt", s.History[0])
	}
}

func TestSetModel(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	t.Run("text model selection", func(t *testing.T) {
		t.Parallel()

		s := session.New(1)
		s.AddMessage(session.RoleUser, "kept")
		s.GroupImageGenerated = true

		if err := s.SetModel(reg, "gpt-4o", registry.KindText); err != nil {
			t.Fatalf("SetModel() error = %v", err)
		}

		if s.CurrentModel != "gpt-4o" || s.Provider != "openai" {
			t.Errorf("model/provider = %q/%q", s.CurrentModel, s.Provider)
		}
		if s.Mode != session.ModeText {
			t.Errorf("mode = %q, want text", s.Mode)
		}
		if s.GroupImageGenerated {
			t.Error("group image flag not reset on model selection")
		}
		if len(s.History) != 1 {
			t.Errorf("history was cleared by SetModel, length = %d", len(s.History))
		}
	})

	t.Run("image model selection", func(t *testing.T) {
		t.Parallel()

		s := session.New(1)
		if err := s.SetModel(reg, "dall-e-3", registry.KindImage); err != nil {
			t.Fatalf("SetModel() error = %v", err)
		}
		if s.Mode != session.ModeImage {
			t.Errorf("mode = %q, want image", s.Mode)
		}
		if s.GroupImageGenerated {
			t.Error("group image flag set after fresh image model selection")
		}
	})

	t.Run("unknown id leaves state unchanged", func(t *testing.T) {
		t.Parallel()

		s := session.New(1)
		if err := s.SetModel(reg, "gpt-4o", registry.KindText); err != nil {
			t.Fatalf("SetModel() error = %v", err)
		}

		err := s.SetModel(reg, "nonexistent", registry.KindText)
		if !errors.Is(err, registry.ErrUnknownModel) {
			t.Fatalf("SetModel() error = %v, want ErrUnknownModel", err)
		}
		if s.CurrentModel != "gpt-4o" || s.Provider != "openai" || s.Mode != session.ModeText {
			t.Errorf("state mutated on failed selection: %q/%q/%q", s.CurrentModel, s.Provider, s.Mode)
		}
	})

	t.Run("kind mismatch rejected", func(t *testing.T) {
		t.Parallel()

		s := session.New(1)
		if err := s.SetModel(reg, "dall-e-3", registry.KindText); err == nil {
			t.Error("selecting an image model as text succeeded")
		}
	})
}

func TestSupportsVision(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	tests := []struct {
		name  string
		setup func(s *session.Session)
		want  bool
	}{
		{
			name:  "no model selected",
			setup: func(s *session.Session) {},
			want:  false,
		},
		{
			name: "vision capable text model",
			setup: func(s *session.Session) {
				_ = s.SetModel(reg, "gpt-4o", registry.KindText)
			},
			want: true,
		},
		{
			name: "text model without vision",
			setup: func(s *session.Session) {
				_ = s.SetModel(reg, "gpt-4o-mini", registry.KindText)
			},
			want: false,
		},
		{
			name: "image mode never supports vision",
			setup: func(s *session.Session) {
				_ = s.SetModel(reg, "dall-e-3", registry.KindImage)
			},
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := session.New(1)
			tc.setup(s)
			if got := s.SupportsVision(reg); got != tc.want {
				t.Errorf("SupportsVision() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestResetImageModelInGroup(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	t.Run("resets in image mode", func(t *testing.T) {
		t.Parallel()

		s := session.New(1)
		if err := s.SetModel(reg, "dall-e-3", registry.KindImage); err != nil {
			t.Fatalf("SetModel() error = %v", err)
		}
		s.GroupImageGenerated = true

		if !s.ResetImageModelInGroup() {
			t.Fatal("ResetImageModelInGroup() = false, want true")
		}
		if s.CurrentModel != "" || s.Provider != "" {
			t.Errorf("model/provider survived reset: %q/%q", s.CurrentModel, s.Provider)
		}
		if s.GroupImageGenerated {
			t.Error("group image flag survived reset")
		}
	})

	t.Run("no-op in text mode", func(t *testing.T) {
		t.Parallel()

		s := session.New(1)
		if err := s.SetModel(reg, "gpt-4o", registry.KindText); err != nil {
			t.Fatalf("SetModel() error = %v", err)
		}

		if s.ResetImageModelInGroup() {
			t.Error("ResetImageModelInGroup() = true in text mode")
		}
		if s.CurrentModel != "gpt-4o" {
			t.Errorf("model changed: %q", s.CurrentModel)
		}
	})
}

func TestSetInterfaceLanguage(t *testing.T) {
	t.Parallel()

	s := session.New(1)
	if s.InterfaceLanguage != i18n.DefaultLocale {
		t.Fatalf("default locale = %q, want %q", s.InterfaceLanguage, i18n.DefaultLocale)
	}

	if !s.SetInterfaceLanguage("en") {
		t.Error("SetInterfaceLanguage(en) rejected")
	}
	if s.InterfaceLanguage != i18n.LocaleEN {
		t.Errorf("locale = %q, want en", s.InterfaceLanguage)
	}

	if s.SetInterfaceLanguage("klingon") {
		t.Error("SetInterfaceLanguage(klingon) accepted")
	}
	if s.InterfaceLanguage != i18n.LocaleEN {
		t.Errorf("locale mutated by rejected code: %q", s.InterfaceLanguage)
	}
}

func TestSetPendingIntent(t *testing.T) {
	t.Parallel()

	s := session.New(1)
	s.SetPendingIntent(session.IntentAwaitingTargetLanguage)
	s.TranslationTarget = "German"

	// The target survives the transition into the translation-text step.
	s.SetPendingIntent(session.IntentAwaitingTranslationText)
	if s.TranslationTarget != "German" {
		t.Errorf("translation target cleared on transition: %q", s.TranslationTarget)
	}

	// Any other intent drops it.
	s.SetPendingIntent(session.IntentNone)
	if s.TranslationTarget != "" {
		t.Errorf("translation target survived intent clear: %q", s.TranslationTarget)
	}
	if s.PendingIntent != session.IntentNone {
		t.Errorf("pending intent = %v, want none", s.PendingIntent)
	}
}
