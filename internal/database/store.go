package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the persistence interface for session records.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetSession retrieves the record for a user id. Returns nil, nil when
	// no record exists; callers fall back to fresh session creation.
	GetSession(ctx context.Context, userID int64) (*SessionRecord, error)

	// SaveSession inserts or updates a session record keyed by user id.
	SaveSession(ctx context.Context, record *SessionRecord) error

	// DeleteSession removes the record for a user id, if present.
	DeleteSession(ctx context.Context, userID int64) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetSession(ctx context.Context, userID int64) (*SessionRecord, error) {
	var record SessionRecord
	err := s.db.GetContext(ctx, &record, `SELECT * FROM sessions WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.DebugContext(ctx, "No saved session found", "user_id", userID)
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error loading session", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to load session for user %d: %w", userID, err)
	}
	return &record, nil
}

func (s *sqlxStore) SaveSession(ctx context.Context, record *SessionRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil session record")
	}
	if record.UserID == 0 {
		return fmt.Errorf("session record must have a non-zero user_id")
	}
	if len(record.History) == 0 {
		return fmt.Errorf("session record must have non-empty history")
	}

	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.LastInteraction.IsZero() {
		record.LastInteraction = now
	}

	query := `
        INSERT INTO sessions (
            user_id, history, current_model, provider, system_prompt,
            mode, interface_language, group_image_generated,
            last_interaction, created_at, updated_at
        ) VALUES (
            :user_id, :history, :current_model, :provider, :system_prompt,
            :mode, :interface_language, :group_image_generated,
            :last_interaction, :created_at, :updated_at
        )
        ON CONFLICT(user_id) DO UPDATE SET
            history = excluded.history,
            current_model = excluded.current_model,
            provider = excluded.provider,
            system_prompt = excluded.system_prompt,
            mode = excluded.mode,
            interface_language = excluded.interface_language,
            group_image_generated = excluded.group_image_generated,
            last_interaction = excluded.last_interaction,
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.NamedExecContext(ctx, query, record); err != nil {
		s.logger.ErrorContext(ctx, "Error saving session", "user_id", record.UserID, "error", err)
		return fmt.Errorf("failed to save session for user %d: %w", record.UserID, err)
	}

	s.logger.DebugContext(ctx, "Session saved", "user_id", record.UserID, "history_bytes", len(record.History))
	return nil
}

func (s *sqlxStore) DeleteSession(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		s.logger.ErrorContext(ctx, "Error deleting session", "user_id", userID, "error", err)
		return fmt.Errorf("failed to delete session for user %d: %w", userID, err)
	}
	return nil
}

// RunSQLMaintenance reclaims space and refreshes the query planner statistics.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	start := time.Now()

	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		return fmt.Errorf("pragma optimize failed: %w", err)
	}

	s.logger.InfoContext(ctx, "SQL maintenance completed", "duration", time.Since(start))
	return nil
}
