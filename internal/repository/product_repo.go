package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/printshop/printshop-api/internal/models"
)

// ProductRepository handles data access for catalog products.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListActive returns all active products ordered by creation time.
func (r *ProductRepository) ListActive() ([]models.Product, error) {
	const q = `SELECT * FROM products WHERE is_active = 1 ORDER BY created_at, id`

	var products []models.Product
	if err := r.db.Select(&products, q); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns a single product by id, or sql.ErrNoRows.
func (r *ProductRepository) GetByID(id int64) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = ? LIMIT 1`

	var p models.Product
	if err := r.db.Get(&p, q, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product and returns its id.
func (r *ProductRepository) Create(name, description string, price decimal.Decimal, photoPath string) (int64, error) {
	const q = `INSERT INTO products (name, description, price, photo_path) VALUES (?, ?, ?, ?)`

	res, err := r.db.Exec(q, name, nullable(description), price, nullable(photoPath))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateName sets a new name on an existing product.
func (r *ProductRepository) UpdateName(id int64, name string) error {
	return r.updateField(id, `UPDATE products SET name = ? WHERE id = ?`, name)
}

// UpdateDescription sets a new description on an existing product.
func (r *ProductRepository) UpdateDescription(id int64, description string) error {
	return r.updateField(id, `UPDATE products SET description = ? WHERE id = ?`, nullable(description))
}

// UpdatePrice sets a new price on an existing product.
func (r *ProductRepository) UpdatePrice(id int64, price decimal.Decimal) error {
	return r.updateField(id, `UPDATE products SET price = ? WHERE id = ?`, price)
}

// UpdatePhotoPath sets a new photo reference on an existing product.
func (r *ProductRepository) UpdatePhotoPath(id int64, photoPath string) error {
	return r.updateField(id, `UPDATE products SET photo_path = ? WHERE id = ?`, nullable(photoPath))
}

func (r *ProductRepository) updateField(id int64, q string, value interface{}) error {
	res, err := r.db.Exec(q, value, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a product permanently. Order item snapshots are unaffected;
// their product_id is set to NULL by the schema.
func (r *ProductRepository) Delete(id int64) error {
	const q = `DELETE FROM products WHERE id = ?`
	_, err := r.db.Exec(q, id)
	return err
}

// CountActive returns the number of active products.
func (r *ProductRepository) CountActive() (int, error) {
	const q = `SELECT COUNT(1) FROM products WHERE is_active = 1`

	var n int
	if err := r.db.Get(&n, q); err != nil {
		return 0, err
	}
	return n, nil
}
