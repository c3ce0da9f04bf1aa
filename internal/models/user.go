package models

import (
	"database/sql"
	"time"
)

// User represents a chat user. The admin flag is only ever set through the
// bot's password gate; users are created on first interaction and never
// deleted.
type User struct {
	ID         int64          `db:"id" json:"id"`
	TelegramID int64          `db:"telegram_id" json:"telegramId"`
	Username   sql.NullString `db:"username" json:"username,omitempty"`
	IsAdmin    bool           `db:"is_admin" json:"isAdmin"`
	CreatedAt  time.Time      `db:"created_at" json:"-"`
}
