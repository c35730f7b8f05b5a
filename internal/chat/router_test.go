// Package chat_test tests the conversation router's intent state machine.
package chat_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/terry-ai/terry/internal/ai"
	"github.com/terry-ai/terry/internal/chat"
	"github.com/terry-ai/terry/internal/database"
	"github.com/terry-ai/terry/internal/registry"
	"github.com/terry-ai/terry/internal/session"
)

type fakeStore struct {
	records map[int64]*database.SessionRecord
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int64]*database.SessionRecord)}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) GetSession(_ context.Context, userID int64) (*database.SessionRecord, error) {
	record, ok := f.records[userID]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (f *fakeStore) SaveSession(_ context.Context, record *database.SessionRecord) error {
	copied := *record
	f.records[record.UserID] = &copied
	f.saves++
	return nil
}

func (f *fakeStore) DeleteSession(_ context.Context, userID int64) error {
	delete(f.records, userID)
	return nil
}

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }

type fakeAI struct {
	textReply string
	textErr   error
	imageURL  string
	imageErr  error

	textCalls   int
	imageCalls  int
	lastModel   string
	lastHistory []session.Message
	lastImage   []byte
	lastPrompt  string
}

func (f *fakeAI) GenerateText(_ context.Context, _, model string, history []session.Message, image []byte) (string, error) {
	f.textCalls++
	f.lastModel = model
	f.lastHistory = append([]session.Message(nil), history...)
	f.lastImage = image
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.textReply, nil
}

func (f *fakeAI) GenerateImage(_ context.Context, _, model, prompt string) (string, error) {
	f.imageCalls++
	f.lastModel = model
	f.lastPrompt = prompt
	if f.imageErr != nil {
		return "", f.imageErr
	}
	return f.imageURL, nil
}

type fixture struct {
	router   *chat.Router
	sessions *session.Manager
	store    *fakeStore
	ai       *fakeAI
}

func newFixture(t *testing.T) *fixture {
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
		t.Fatalf("failed to build registry: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newFakeStore()
	sessions := session.NewManager(store, log, 0)
	aiClient := &fakeAI{textReply: "mocked-response", imageURL: "https://img.example/out.png"}

	return &fixture{
		router:   chat.NewRouter(log, sessions, aiClient, reg, "gpt-4o"),
		sessions: sessions,
		store:    store,
		ai:       aiClient,
	}
}

// inspect reads session state outside an event, releasing the lock before
// returning.
func (fx *fixture) inspect(t *testing.T, userID int64, check func(s *session.Session)) {
	t.Helper()
	s, release := fx.sessions.Acquire(context.Background(), userID)
	defer release()
	check(s)
}

func (fx *fixture) selectTextModel(t *testing.T, userID int64, id string) {
	t.Helper()
	ctx := context.Background()
	if reply := fx.router.HandleCallback(ctx, userID, "model:text:"+id); reply == nil {
		t.Fatalf("model selection %q produced no reply", id)
	}
	if reply := fx.router.HandleCallback(ctx, userID, "systemprompt:none"); reply == nil {
		t.Fatal("system prompt decision produced no reply")
	}
}

func (fx *fixture) selectImageModel(t *testing.T, userID int64, id string) {
	t.Helper()
	if reply := fx.router.HandleCallback(context.Background(), userID, "model:image:"+id); reply == nil {
		t.Fatalf("image model selection %q produced no reply", id)
	}
}

func TestNewChatScenario(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	menu := fx.router.NewChat(ctx, 1)
	if menu == nil || len(menu.Buttons) != 2 {
		t.Fatalf("NewChat() menu = %+v, want 2 model buttons", menu)
	}

	prompt := fx.router.HandleCallback(ctx, 1, "model:text:gpt-4o")
	if prompt == nil || len(prompt.Buttons) != 2 {
		t.Fatalf("model selection reply = %+v, want system prompt buttons", prompt)
	}
	if !prompt.Edit {
		t.Error("model selection reply should edit the menu message")
	}

	created := fx.router.HandleCallback(ctx, 1, "systemprompt:none")
	if created == nil || !strings.Contains(created.Text, "GPT-4o") {
		t.Fatalf("chat creation reply = %+v", created)
	}

	reply := fx.router.HandleText(ctx, 1, "Hello", false)
	if reply == nil || reply.Text != "mocked-response" {
		t.Fatalf("HandleText() reply = %+v", reply)
	}

	fx.inspect(t, 1, func(s *session.Session) {
		if s.Mode != session.ModeText {
			t.Errorf("mode = %q, want text", s.Mode)
		}
		if len(s.History) != 2 {
			t.Fatalf("history length = %d, want 2", len(s.History))
		}
		if s.History[0].Role != session.RoleUser || s.History[0].Content != "Hello" {
			t.Errorf("history[0] = %+v", s.History[0])
		}
		if s.History[1].Role != session.RoleAssistant || s.History[1].Content != "mocked-response" {
			t.Errorf("history[1] = %+v", s.History[1])
		}
	})

	if fx.store.saves == 0 {
		t.Error("session was not persisted after the successful turn")
	}
}

func TestHandleTextRequiresModel(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	reply := fx.router.HandleText(context.Background(), 1, "Hello", false)
	if reply == nil || !strings.Contains(reply.Text, "/newchat") {
		t.Fatalf("reply = %+v, want model selection hint", reply)
	}
	if fx.ai.textCalls != 0 {
		t.Errorf("AI called %d times without a selected model", fx.ai.textCalls)
	}
}

func TestSystemPromptIntentTakesPriority(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	fx.router.HandleCallback(ctx, 1, "model:text:gpt-4o")
	fx.router.HandleCallback(ctx, 1, "systemprompt:custom")

	// The next text message is the prompt, never a chat turn.
	reply := fx.router.HandleText(ctx, 1, "you are terse", false)
	if reply == nil || reply.Text == "mocked-response" {
		t.Fatalf("reply = %+v, want prompt confirmation", reply)
	}
	if fx.ai.textCalls != 0 {
		t.Errorf("AI called %d times while capturing the system prompt", fx.ai.textCalls)
	}

	fx.inspect(t, 1, func(s *session.Session) {
		if s.SystemPrompt != "you are terse" {
			t.Errorf("system prompt = %q", s.SystemPrompt)
		}
		if s.PendingIntent != session.IntentNone {
			t.Errorf("pending intent = %v after capture", s.PendingIntent)
		}
		if len(s.History) != 1 || s.History[0].Role != session.RoleSystem {
			t.Errorf("history = %+v, want seeded system entry", s.History)
		}
	})

	// The following message is a normal chat turn with the prompt in context.
	fx.router.HandleText(ctx, 1, "Hello", false)
	if fx.ai.textCalls != 1 {
		t.Fatalf("AI calls = %d, want 1", fx.ai.textCalls)
	}
	if len(fx.ai.lastHistory) != 2 || fx.ai.lastHistory[0].Role != session.RoleSystem {
		t.Errorf("AI history = %+v, want system entry first", fx.ai.lastHistory)
	}
}

func TestTranslationFlow(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()
	fx.ai.textReply = "Guten Tag"

	if reply := fx.router.Translate(ctx, 1); reply == nil {
		t.Fatal("Translate() produced no reply")
	}

	step := fx.router.HandleText(ctx, 1, "German", false)
	if step == nil || !strings.Contains(step.Text, "German") {
		t.Fatalf("target capture reply = %+v", step)
	}
	if fx.ai.textCalls != 0 {
		t.Errorf("AI called during target capture")
	}

	result := fx.router.HandleText(ctx, 1, "Good day", false)
	if result == nil || !strings.Contains(result.Text, "Guten Tag") {
		t.Fatalf("translation reply = %+v", result)
	}
	if fx.ai.textCalls != 1 {
		t.Errorf("AI calls = %d, want 1", fx.ai.textCalls)
	}
	if fx.ai.lastModel != "gpt-4o" {
		t.Errorf("translation used model %q, want the translate model", fx.ai.lastModel)
	}

	fx.inspect(t, 1, func(s *session.Session) {
		if s.PendingIntent != session.IntentNone {
			t.Errorf("pending intent = %v after translation", s.PendingIntent)
		}
		if s.TranslationTarget != "" {
			t.Errorf("translation target = %q after translation", s.TranslationTarget)
		}
		if len(s.History) != 0 {
			t.Errorf("translation leaked into conversation history: %+v", s.History)
		}
	})
}

func TestGroupImageOneShot(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()
	fx.selectImageModel(t, 1, "dall-e-3")

	first := fx.router.HandleText(ctx, 1, "a red cat", true)
	if first == nil || first.PhotoURL == "" {
		t.Fatalf("first prompt reply = %+v, want photo", first)
	}
	if fx.ai.imageCalls != 1 {
		t.Fatalf("image calls = %d, want 1", fx.ai.imageCalls)
	}

	fx.inspect(t, 1, func(s *session.Session) {
		if !s.GroupImageGenerated {
			t.Error("group image flag not set after generation")
		}
	})

	second := fx.router.HandleText(ctx, 1, "another cat", true)
	if second == nil || second.PhotoURL != "" {
		t.Fatalf("second prompt reply = %+v, want re-selection message", second)
	}
	if len(second.Buttons) == 0 {
		t.Error("re-selection reply has no model buttons")
	}
	if fx.ai.imageCalls != 1 {
		t.Errorf("image calls = %d, second prompt must not generate", fx.ai.imageCalls)
	}

	fx.inspect(t, 1, func(s *session.Session) {
		if s.CurrentModel != "" {
			t.Errorf("model = %q, want cleared after group reset", s.CurrentModel)
		}
		if s.GroupImageGenerated {
			t.Error("group image flag survived reset")
		}
	})
}

func TestPrivateChatImagesUnlimited(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()
	fx.selectImageModel(t, 1, "dall-e-3")

	fx.router.HandleText(ctx, 1, "a red cat", false)
	fx.router.HandleText(ctx, 1, "a blue cat", false)

	if fx.ai.imageCalls != 2 {
		t.Errorf("image calls = %d, want 2", fx.ai.imageCalls)
	}
	fx.inspect(t, 1, func(s *session.Session) {
		if s.GroupImageGenerated {
			t.Error("group image flag set in private chat")
		}
	})
}

func TestFailedTurnKeepsUserMessage(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()
	fx.selectTextModel(t, 1, "gpt-4o")
	fx.ai.textErr = &ai.Error{Kind: ai.KindProvider, Provider: "openai", Message: "boom"}

	reply := fx.router.HandleText(ctx, 1, "Hello", false)
	if reply == nil || !strings.Contains(reply.Text, "boom") {
		t.Fatalf("reply = %+v, want error with reason", reply)
	}

	fx.inspect(t, 1, func(s *session.Session) {
		if len(s.History) != 1 {
			t.Fatalf("history length = %d, want the user-only entry", len(s.History))
		}
		if s.History[0].Role != session.RoleUser {
			t.Errorf("history[0] role = %q", s.History[0].Role)
		}
	})

	if fx.store.saves != 0 {
		t.Errorf("failed turn was persisted %d times", fx.store.saves)
	}

	// A retry after recovery appends a second user entry; failed attempts
	// are not deduplicated.
	fx.ai.textErr = nil
	fx.router.HandleText(ctx, 1, "Hello", false)
	fx.inspect(t, 1, func(s *session.Session) {
		if len(s.History) != 3 {
			t.Errorf("history length = %d, want 3", len(s.History))
		}
	})
}

func TestPhotoFlow(t *testing.T) {
	t.Parallel()

	t.Run("requires model", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		reply := fx.router.HandlePhoto(context.Background(), 1, []byte{1, 2}, "")
		if reply == nil || !strings.Contains(reply.Text, "/newchat") {
			t.Fatalf("reply = %+v", reply)
		}
	})

	t.Run("rejects non vision model", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		fx.selectTextModel(t, 1, "gpt-4o-mini")

		fx.router.HandlePhoto(context.Background(), 1, []byte{1, 2}, "what is this")
		if fx.ai.textCalls != 0 {
			t.Errorf("AI called for a model without vision support")
		}
	})

	t.Run("caption is answered immediately", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		ctx := context.Background()
		fx.selectTextModel(t, 1, "gpt-4o")

		reply := fx.router.HandlePhoto(ctx, 1, []byte{1, 2, 3}, "what is this")
		if reply == nil || reply.Text != "mocked-response" {
			t.Fatalf("reply = %+v", reply)
		}
		if fx.ai.textCalls != 1 || len(fx.ai.lastImage) != 3 {
			t.Errorf("AI calls = %d, image bytes = %d", fx.ai.textCalls, len(fx.ai.lastImage))
		}
	})

	t.Run("caption-less photo waits for the question", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		ctx := context.Background()
		fx.selectTextModel(t, 1, "gpt-4o")

		held := fx.router.HandlePhoto(ctx, 1, []byte{9, 9}, "")
		if held == nil || held.Text == "mocked-response" {
			t.Fatalf("reply = %+v, want question prompt", held)
		}
		if fx.ai.textCalls != 0 {
			t.Error("AI called before the question arrived")
		}

		answer := fx.router.HandleText(ctx, 1, "describe it", false)
		if answer == nil || answer.Text != "mocked-response" {
			t.Fatalf("answer = %+v", answer)
		}
		if fx.ai.textCalls != 1 || len(fx.ai.lastImage) != 2 {
			t.Errorf("AI calls = %d, image bytes = %d", fx.ai.textCalls, len(fx.ai.lastImage))
		}
	})

	t.Run("question with no stored image", func(t *testing.T) {
		t.Parallel()

		fx := newFixture(t)
		ctx := context.Background()
		fx.selectTextModel(t, 1, "gpt-4o")

		fx.inspect(t, 1, func(s *session.Session) {
			s.SetPendingIntent(session.IntentAwaitingImageQuestion)
		})

		reply := fx.router.HandleText(ctx, 1, "describe it", false)
		if reply == nil || reply.Text == "mocked-response" {
			t.Fatalf("reply = %+v, want missing-image prompt", reply)
		}
		if fx.ai.textCalls != 0 {
			t.Error("AI called with no image available")
		}
	})
}

func TestCallbackValidation(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	if reply := fx.router.HandleCallback(ctx, 1, "model:text:nonexistent"); reply != nil {
		t.Errorf("unknown model selection replied: %+v", reply)
	}
	if reply := fx.router.HandleCallback(ctx, 1, "garbage"); reply != nil {
		t.Errorf("malformed payload replied: %+v", reply)
	}
	if reply := fx.router.HandleCallback(ctx, 1, "lang:klingon"); reply != nil {
		t.Errorf("unknown language replied: %+v", reply)
	}

	fx.inspect(t, 1, func(s *session.Session) {
		if s.CurrentModel != "" || s.PendingIntent != session.IntentNone {
			t.Errorf("state mutated by rejected callbacks: %+v", s)
		}
	})
}

func TestLanguageSwitch(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	menu := fx.router.Language(ctx, 1)
	if menu == nil || len(menu.Buttons) != 6 {
		t.Fatalf("Language() menu = %+v, want 6 locales", menu)
	}

	reply := fx.router.HandleCallback(ctx, 1, "lang:en")
	if reply == nil || !strings.Contains(reply.Text, "English") {
		t.Fatalf("reply = %+v", reply)
	}

	// Subsequent replies come back in the new locale.
	errReply := fx.router.HandleText(ctx, 1, "Hello", false)
	if errReply == nil || !strings.Contains(errReply.Text, "Please choose a model") {
		t.Fatalf("reply = %+v, want english model hint", errReply)
	}
}

func TestTranslationErrorSurfaced(t *testing.T) {
	t.Parallel()

	fx := newFixture(t)
	ctx := context.Background()

	fx.router.Translate(ctx, 1)
	fx.router.HandleText(ctx, 1, "German", false)

	fx.ai.textErr = errors.New("network down")
	reply := fx.router.HandleText(ctx, 1, "Good day", false)
	if reply == nil || reply.Text == "" {
		t.Fatal("no reply for failed translation")
	}
	if strings.Contains(reply.Text, "Guten") {
		t.Errorf("unexpected success reply: %q", reply.Text)
	}
}
