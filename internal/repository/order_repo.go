package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/printshop/printshop-api/internal/models"
)

// OrderRepository handles data access for orders and their line items.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithItems persists one order row and its line items in a single
// transaction and returns the new order id. Spreadsheet export and admin
// notification happen outside this transaction and stay best-effort.
func (r *OrderRepository) CreateWithItems(order *models.Order, items []models.OrderItem) (int64, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insOrder = `
        INSERT INTO orders (first_name, last_name, phone, username, total_amount, status, comment)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.Exec(insOrder,
		order.FirstName, order.LastName, order.Phone, order.Username,
		order.TotalAmount, models.OrderStatusPending, order.Comment)
	if err != nil {
		return 0, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	const insItem = `
        INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
        VALUES (?, ?, ?, ?, ?)`
	for i := range items {
		item := &items[i]
		if _, err := tx.Exec(insItem, orderID, item.ProductID, item.ProductName, item.Quantity, item.Price); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return orderID, nil
}

// GetByID returns a single order by id, or sql.ErrNoRows.
func (r *OrderRepository) GetByID(id int64) (*models.Order, error) {
	const q = `SELECT * FROM orders WHERE id = ? LIMIT 1`

	var o models.Order
	if err := r.db.Get(&o, q, id); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetItems returns the line items of an order in insertion order.
func (r *OrderRepository) GetItems(orderID int64) ([]models.OrderItem, error) {
	const q = `SELECT * FROM order_items WHERE order_id = ? ORDER BY id`

	var items []models.OrderItem
	if err := r.db.Select(&items, q, orderID); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUsername returns all orders placed under the given handle.
func (r *OrderRepository) ListByUsername(username string) ([]models.Order, error) {
	const q = `SELECT * FROM orders WHERE username = ? ORDER BY created_at, id`

	var orders []models.Order
	if err := r.db.Select(&orders, q, username); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListClientUsernames returns the distinct handles that have placed orders.
func (r *OrderRepository) ListClientUsernames() ([]string, error) {
	const q = `SELECT DISTINCT username FROM orders WHERE username IS NOT NULL ORDER BY username`

	var usernames []string
	if err := r.db.Select(&usernames, q); err != nil {
		return nil, err
	}
	return usernames, nil
}

// Count returns the total number of orders.
func (r *OrderRepository) Count() (int, error) {
	const q = `SELECT COUNT(1) FROM orders`

	var n int
	if err := r.db.Get(&n, q); err != nil {
		return 0, err
	}
	return n, nil
}

// TotalRevenue returns the sum of all order totals.
func (r *OrderRepository) TotalRevenue() (decimal.Decimal, error) {
	const q = `SELECT total_amount FROM orders`

	var totals []decimal.Decimal
	if err := r.db.Select(&totals, q); err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum, nil
}
