package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusPending is the only status this system ever assigns; orders are
// never transitioned after creation.
const OrderStatusPending = "pending"

// Order represents a completed checkout. Orders are immutable once created.
type Order struct {
	ID          int64           `db:"id" json:"id"`
	FirstName   string          `db:"first_name" json:"firstName"`
	LastName    string          `db:"last_name" json:"lastName"`
	Phone       string          `db:"phone" json:"phone"`
	Username    sql.NullString  `db:"username" json:"username,omitempty"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Status      string          `db:"status" json:"status"`
	Comment     sql.NullString  `db:"comment" json:"comment,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// OrderItem is one line of an order. ProductName and Price are snapshots taken
// at checkout so later catalog edits or deletes never alter historical orders.
// ProductID is nullable because the referenced product may be hard-deleted.
type OrderItem struct {
	ID          int64           `db:"id" json:"id"`
	OrderID     int64           `db:"order_id" json:"orderId"`
	ProductID   sql.NullInt64   `db:"product_id" json:"productId,omitempty"`
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Price       decimal.Decimal `db:"price" json:"price"`
}
