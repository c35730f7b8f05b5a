package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/terry-ai/terry/internal/database"
	"github.com/terry-ai/terry/internal/i18n"
)

// Manager owns the in-memory session map and its durable backing store.
//
// It also owns the concurrency policy: all processing for a single user id is
// serialized through a per-user mutex held for the whole event (AI calls
// included), while events for different users proceed concurrently. The
// transport delivers each update on its own goroutine; without this lock two
// rapid events from one user could interleave history appends and saves.
type Manager struct {
	logger    *slog.Logger
	store     database.Store
	opTimeout time.Duration

	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*sync.Mutex
}

// NewManager creates a session manager over the given store. opTimeout bounds
// individual persistence operations.
func NewManager(store database.Store, logger *slog.Logger, opTimeout time.Duration) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	return &Manager{
		logger:    logger.With("component", "session_manager"),
		store:     store,
		opTimeout: opTimeout,
		sessions:  make(map[int64]*Session),
		locks:     make(map[int64]*sync.Mutex),
	}
}

// Acquire locks the user's session for exclusive use and returns it together
// with the release function. The session is restored from the store on first
// access, or created fresh when no durable record exists.
func (m *Manager) Acquire(ctx context.Context, userID int64) (*Session, func()) {
	lock := m.userLock(userID)
	lock.Lock()
	return m.getOrCreate(ctx, userID), lock.Unlock
}

func (m *Manager) userLock(userID int64) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[userID] = lock
	}
	return lock
}

// getOrCreate is idempotent and safe to call on every inbound event.
// The caller must hold the user's lock.
func (m *Manager) getOrCreate(ctx context.Context, userID int64) *Session {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if ok {
		return s
	}

	s = m.restore(ctx, userID)
	if s == nil {
		s = New(userID)
		m.logger.InfoContext(ctx, "Created new session", "user_id", userID)
	} else {
		m.logger.InfoContext(ctx, "Restored previous session", "user_id", userID, "messages", len(s.History))
	}

	m.mu.Lock()
	m.sessions[userID] = s
	m.mu.Unlock()
	return s
}

// restore loads a durable record and rebuilds the live session, tolerating
// missing optional fields from older schema versions by falling back to
// defaults. Returns nil when no usable record exists.
func (m *Manager) restore(ctx context.Context, userID int64) *Session {
	dbCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()

	record, err := m.store.GetSession(dbCtx, userID)
	if err != nil {
		m.logger.ErrorContext(ctx, "Error restoring session, starting fresh", "user_id", userID, "error", err)
		return nil
	}
	if record == nil {
		return nil
	}

	s := New(userID)
	if len(record.History) > 0 {
		if err := json.Unmarshal(record.History, &s.History); err != nil {
			m.logger.ErrorContext(ctx, "Corrupt session history, starting fresh", "user_id", userID, "error", err)
			return nil
		}
	}
	s.CurrentModel = record.CurrentModel.String
	s.Provider = record.Provider.String
	s.SystemPrompt = record.SystemPrompt.String
	if record.Mode == string(ModeImage) {
		s.Mode = ModeImage
	}
	if i18n.IsSupported(record.InterfaceLanguage) {
		s.InterfaceLanguage = i18n.Locale(record.InterfaceLanguage)
	}
	s.GroupImageGenerated = record.GroupImageGenerated

	return s
}

// Save serializes the session's durable fields and writes them to the store.
// Sessions with empty history are never persisted. Failures are logged and
// returned, but callers treat them as soft: the session continues in memory.
func (m *Manager) Save(ctx context.Context, userID int64) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		m.logger.WarnContext(ctx, "Attempt to save non-existent session", "user_id", userID)
		return fmt.Errorf("no session for user %d", userID)
	}

	if len(s.History) == 0 {
		m.logger.DebugContext(ctx, "Skipping save, empty history", "user_id", userID)
		return nil
	}

	record, err := encodeRecord(s)
	if err != nil {
		m.logger.ErrorContext(ctx, "Error serializing session", "user_id", userID, "error", err)
		return err
	}

	dbCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	if err := m.store.SaveSession(dbCtx, record); err != nil {
		m.logger.ErrorContext(ctx, "Error saving session", "user_id", userID, "error", err)
		return err
	}

	m.logger.DebugContext(ctx, "Session saved", "user_id", userID, "messages", len(s.History))
	return nil
}

// FlushAll persists every in-memory session with conversational content.
// Sessions whose user lock is currently held are skipped; they save at the
// end of their in-flight event anyway.
func (m *Manager) FlushAll(ctx context.Context) (int, error) {
	m.mu.Lock()
	ids := make([]int64, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	flushed := 0
	var lastErr error
	for _, id := range ids {
		lock := m.userLock(id)
		if !lock.TryLock() {
			continue
		}
		err := m.Save(ctx, id)
		lock.Unlock()
		if err != nil {
			lastErr = err
			continue
		}
		flushed++
	}
	return flushed, lastErr
}

func encodeRecord(s *Session) (*database.SessionRecord, error) {
	history, err := json.Marshal(s.History)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return &database.SessionRecord{
		UserID:              s.UserID,
		History:             history,
		CurrentModel:        nullString(s.CurrentModel),
		Provider:            nullString(s.Provider),
		SystemPrompt:        nullString(s.SystemPrompt),
		Mode:                string(s.Mode),
		InterfaceLanguage:   string(s.InterfaceLanguage),
		GroupImageGenerated: s.GroupImageGenerated,
		LastInteraction:     time.Now().UTC(),
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
