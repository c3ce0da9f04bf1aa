package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/printshop/printshop-api/internal/export"
	"github.com/printshop/printshop-api/internal/models"
	"github.com/printshop/printshop-api/internal/utils"
)

// CartLine is one product+quantity entry in a checkout request.
type CartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CheckoutRequest is the cart payload submitted by the storefront.
type CheckoutRequest struct {
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	Username  string     `json:"username"`
	Comment   string     `json:"comment"`
	Cart      []CartLine `json:"cart"`
}

// OrderService converts cart submissions into persisted orders, mirrors each
// checkout into the spreadsheet log, and hands a notification off to the
// admin fan-out. It also serves the order queries the bot needs.
type OrderService struct {
	orders   OrderStore
	products ProductStore
	exporter Exporter
	notifier Notifier
}

// NewOrderService constructs an OrderService.
func NewOrderService(orders OrderStore, products ProductStore, exporter Exporter, notifier Notifier) *OrderService {
	return &OrderService{orders: orders, products: products, exporter: exporter, notifier: notifier}
}

// Checkout validates the cart, snapshots product names and prices, persists
// the order with its line items, appends a row to the spreadsheet log and
// enqueues the admin notification. Export and notification are best-effort:
// their failure never affects the returned order id.
func (s *OrderService) Checkout(ctx context.Context, req *CheckoutRequest) (int64, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	phone := strings.TrimSpace(req.Phone)
	username := strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	comment := strings.TrimSpace(req.Comment)

	if firstName == "" || lastName == "" || phone == "" || len(req.Cart) == 0 {
		return 0, utils.NewValidationError("cart", "Missing required fields")
	}

	// Resolve every product before any write so a stale id aborts the whole
	// operation with zero rows created.
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(req.Cart))
	for _, line := range req.Cart {
		p, err := s.products.GetByID(line.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, utils.NewNotFoundError("product", line.ProductID)
			}
			return 0, err
		}
		lineTotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID:   sql.NullInt64{Int64: p.ID, Valid: true},
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
		})
	}

	order := &models.Order{
		FirstName:   firstName,
		LastName:    lastName,
		Phone:       phone,
		Username:    sql.NullString{String: username, Valid: username != ""},
		TotalAmount: total,
		Comment:     sql.NullString{String: comment, Valid: comment != ""},
	}

	orderID, err := s.orders.CreateWithItems(order, items)
	if err != nil {
		return 0, err
	}

	// The order is committed; the spreadsheet mirror must not undo that.
	exportRow := export.OrderRow{
		Date:      time.Now().Format("2006-01-02 15:04:05"),
		FirstName: firstName,
		LastName:  lastName,
		Phone:     phone,
		Username:  username,
	}
	for _, item := range items {
		exportRow.Items = append(exportRow.Items, export.Item{ProductName: item.ProductName, Quantity: item.Quantity})
	}
	if err := s.exporter.Append(exportRow); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("spreadsheet export failed")
	}

	s.notifier.Enqueue(buildOrderNotification(orderID, order, items))

	return orderID, nil
}

// GetOrder returns an order with its line items, or a NotFoundError.
func (s *OrderService) GetOrder(id int64) (*models.Order, []models.OrderItem, error) {
	o, err := s.orders.GetByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, utils.NewNotFoundError("order", id)
		}
		return nil, nil, err
	}
	items, err := s.orders.GetItems(id)
	if err != nil {
		return nil, nil, err
	}
	return o, items, nil
}

// ListByUsername returns all orders placed under the given handle.
func (s *OrderService) ListByUsername(username string) ([]models.Order, error) {
	return s.orders.ListByUsername(strings.TrimPrefix(username, "@"))
}

// ListClientUsernames returns the distinct handles that have placed orders.
func (s *OrderService) ListClientUsernames() ([]string, error) {
	return s.orders.ListClientUsernames()
}

// Stats aggregates storefront totals for the admin panel.
type Stats struct {
	ActiveProducts int
	Orders         int
	Revenue        decimal.Decimal
}

// Stats returns catalog and order totals.
func (s *OrderService) Stats() (*Stats, error) {
	products, err := s.products.CountActive()
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.Count()
	if err != nil {
		return nil, err
	}
	revenue, err := s.orders.TotalRevenue()
	if err != nil {
		return nil, err
	}
	return &Stats{ActiveProducts: products, Orders: orders, Revenue: revenue}, nil
}

// buildOrderNotification renders the admin notification text for an order.
func buildOrderNotification(orderID int64, order *models.Order, items []models.OrderItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🛒 Новый заказ #%d\n\n", orderID)
	fmt.Fprintf(&b, "👤 %s %s\n", order.FirstName, order.LastName)
	fmt.Fprintf(&b, "📞 %s\n", order.Phone)
	if order.Username.Valid {
		fmt.Fprintf(&b, "👤 @%s\n", order.Username.String)
	}
	fmt.Fprintf(&b, "💰 %s ₽\n\n", order.TotalAmount.StringFixed(2))
	b.WriteString("📦 Товары:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "  • %s — %d шт\n", item.ProductName, item.Quantity)
	}
	if order.Comment.Valid {
		fmt.Fprintf(&b, "\n💬 %s", order.Comment.String)
	}
	return b.String()
}
