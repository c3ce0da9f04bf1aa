package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/printshop/printshop-api/internal/models"
)

// UserRepository handles data access for chat users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByTelegramID returns the user with the given chat identity, or
// sql.ErrNoRows when no such user exists.
func (r *UserRepository) GetByTelegramID(telegramID int64) (*models.User, error) {
	const q = `SELECT * FROM users WHERE telegram_id = ? LIMIT 1`

	var u models.User
	if err := r.db.Get(&u, q, telegramID); err != nil {
		return nil, err
	}
	return &u, nil
}

// Ensure creates the user row on first interaction and returns it. Existing
// rows are returned unchanged; the username is refreshed when it was empty.
func (r *UserRepository) Ensure(telegramID int64, username string) (*models.User, error) {
	u, err := r.GetByTelegramID(telegramID)
	if err == nil {
		if !u.Username.Valid && username != "" {
			const upd = `UPDATE users SET username = ? WHERE id = ?`
			if _, err := r.db.Exec(upd, username, u.ID); err != nil {
				return nil, err
			}
			u.Username = sql.NullString{String: username, Valid: true}
		}
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	const ins = `INSERT INTO users (telegram_id, username) VALUES (?, ?)`
	if _, err := r.db.Exec(ins, telegramID, nullable(username)); err != nil {
		return nil, err
	}
	return r.GetByTelegramID(telegramID)
}

// SetAdmin flips the admin flag for the given chat identity, creating the
// user row first if it does not exist yet.
func (r *UserRepository) SetAdmin(telegramID int64, isAdmin bool) error {
	if _, err := r.Ensure(telegramID, ""); err != nil {
		return err
	}
	const q = `UPDATE users SET is_admin = ? WHERE telegram_id = ?`
	_, err := r.db.Exec(q, isAdmin, telegramID)
	return err
}

// IsAdmin reports whether the chat identity belongs to an administrator.
// Unknown users are simply not admins.
func (r *UserRepository) IsAdmin(telegramID int64) bool {
	u, err := r.GetByTelegramID(telegramID)
	if err != nil {
		return false
	}
	return u.IsAdmin
}

// ListAdmins returns every user flagged as administrator.
func (r *UserRepository) ListAdmins() ([]models.User, error) {
	const q = `SELECT * FROM users WHERE is_admin = 1`

	var users []models.User
	if err := r.db.Select(&users, q); err != nil {
		return nil, err
	}
	return users, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
