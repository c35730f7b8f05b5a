package database

import (
	"database/sql"
	"time"
)

// SessionRecord is the serialized, durable subset of a user session.
// History is stored as a JSON array of {role, content} objects. Ephemeral
// dispatch state (pending intent, translation target, last image) is
// intentionally absent: it resets at process restart.
type SessionRecord struct {
	UserID    int64     `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	History             []byte         `db:"history"`
	CurrentModel        sql.NullString `db:"current_model"`
	Provider            sql.NullString `db:"provider"`
	SystemPrompt        sql.NullString `db:"system_prompt"`
	Mode                string         `db:"mode"`
	InterfaceLanguage   string         `db:"interface_language"`
	GroupImageGenerated bool           `db:"group_image_generated"`
	LastInteraction     time.Time      `db:"last_interaction"`
}
