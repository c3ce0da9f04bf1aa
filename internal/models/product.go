package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable catalog entry.
// Fields are tagged for both DB scanning and JSON serialization.
type Product struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description sql.NullString  `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	PhotoPath   sql.NullString  `db:"photo_path" json:"photo_path"`
	IsActive    bool            `db:"is_active" json:"-"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
}
