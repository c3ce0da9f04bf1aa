package database

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // SQLite driver
)

// Connect opens the embedded SQLite database at the given path. Foreign keys
// are enabled so order_items cascade with their order, and a busy timeout
// keeps the single-writer engine from failing fast under overlapping access.
// The returned *sqlx.DB is pinged before returning.
func Connect(path string) (*sqlx.DB, error) {
	if path == "" {
		return nil, errors.New("empty database path")
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite serializes writes at the file level; a single connection avoids
	// SQLITE_BUSY churn between the bot and the HTTP handlers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
