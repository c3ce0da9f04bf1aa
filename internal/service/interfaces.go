package service

import (
	"io"

	"github.com/shopspring/decimal"

	"github.com/printshop/printshop-api/internal/export"
	"github.com/printshop/printshop-api/internal/models"
)

// ProductStore is the repository contract the services need for products.
type ProductStore interface {
	ListActive() ([]models.Product, error)
	GetByID(id int64) (*models.Product, error)
	Create(name, description string, price decimal.Decimal, photoPath string) (int64, error)
	UpdateName(id int64, name string) error
	UpdateDescription(id int64, description string) error
	UpdatePrice(id int64, price decimal.Decimal) error
	UpdatePhotoPath(id int64, photoPath string) error
	Delete(id int64) error
	CountActive() (int, error)
}

// OrderStore is the repository contract the services need for orders.
type OrderStore interface {
	CreateWithItems(order *models.Order, items []models.OrderItem) (int64, error)
	GetByID(id int64) (*models.Order, error)
	GetItems(orderID int64) ([]models.OrderItem, error)
	ListByUsername(username string) ([]models.Order, error)
	ListClientUsernames() ([]string, error)
	Count() (int, error)
	TotalRevenue() (decimal.Decimal, error)
}

// PhotoFiles abstracts the photo file store owned by product rows.
type PhotoFiles interface {
	Save(productName, uploadID string, r io.Reader) (string, error)
	Delete(publicPath string) error
}

// Exporter abstracts the append-only spreadsheet log of checkout events.
type Exporter interface {
	Append(row export.OrderRow) error
	FilePath() (string, error)
}

// Notifier hands a notification off to the background fan-out. Enqueue never
// blocks and never fails the caller.
type Notifier interface {
	Enqueue(text string)
}
