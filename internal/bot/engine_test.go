package bot

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/printshop/printshop-api/internal/export"
	"github.com/printshop/printshop-api/internal/models"
	"github.com/printshop/printshop-api/internal/service"
)

type fakeProducts struct {
	seq int64
	m   map[int64]*models.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{m: make(map[int64]*models.Product)}
}

func (f *fakeProducts) ListActive() ([]models.Product, error) {
	var out []models.Product
	for i := int64(1); i <= f.seq; i++ {
		if p, ok := f.m[i]; ok && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProducts) GetByID(id int64) (*models.Product, error) {
	p, ok := f.m[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Create(name, description string, price decimal.Decimal, photoPath string) (int64, error) {
	f.seq++
	f.m[f.seq] = &models.Product{
		ID:          f.seq,
		Name:        name,
		Description: sql.NullString{String: description, Valid: description != ""},
		Price:       price,
		PhotoPath:   sql.NullString{String: photoPath, Valid: photoPath != ""},
		IsActive:    true,
	}
	return f.seq, nil
}

func (f *fakeProducts) update(id int64, fn func(*models.Product)) error {
	p, ok := f.m[id]
	if !ok {
		return sql.ErrNoRows
	}
	fn(p)
	return nil
}

func (f *fakeProducts) UpdateName(id int64, name string) error {
	return f.update(id, func(p *models.Product) { p.Name = name })
}

func (f *fakeProducts) UpdateDescription(id int64, description string) error {
	return f.update(id, func(p *models.Product) {
		p.Description = sql.NullString{String: description, Valid: description != ""}
	})
}

func (f *fakeProducts) UpdatePrice(id int64, price decimal.Decimal) error {
	return f.update(id, func(p *models.Product) { p.Price = price })
}

func (f *fakeProducts) UpdatePhotoPath(id int64, photoPath string) error {
	return f.update(id, func(p *models.Product) {
		p.PhotoPath = sql.NullString{String: photoPath, Valid: photoPath != ""}
	})
}

func (f *fakeProducts) Delete(id int64) error {
	delete(f.m, id)
	return nil
}

func (f *fakeProducts) CountActive() (int, error) {
	n := 0
	for _, p := range f.m {
		if p.IsActive {
			n++
		}
	}
	return n, nil
}

type fakeOrders struct {
	seq    int64
	orders map[int64]*models.Order
	items  map[int64][]models.OrderItem
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[int64]*models.Order), items: make(map[int64][]models.OrderItem)}
}

func (f *fakeOrders) CreateWithItems(order *models.Order, items []models.OrderItem) (int64, error) {
	f.seq++
	cp := *order
	cp.ID = f.seq
	cp.Status = models.OrderStatusPending
	f.orders[f.seq] = &cp
	for i := range items {
		items[i].OrderID = f.seq
	}
	f.items[f.seq] = append([]models.OrderItem(nil), items...)
	return f.seq, nil
}

func (f *fakeOrders) GetByID(id int64) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetItems(orderID int64) ([]models.OrderItem, error) {
	return append([]models.OrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeOrders) ListByUsername(username string) ([]models.Order, error) {
	var out []models.Order
	for i := int64(1); i <= f.seq; i++ {
		if o, ok := f.orders[i]; ok && o.Username.Valid && o.Username.String == username {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListClientUsernames() ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for i := int64(1); i <= f.seq; i++ {
		if o, ok := f.orders[i]; ok && o.Username.Valid && !seen[o.Username.String] {
			seen[o.Username.String] = true
			out = append(out, o.Username.String)
		}
	}
	return out, nil
}

func (f *fakeOrders) Count() (int, error) { return len(f.orders), nil }

func (f *fakeOrders) TotalRevenue() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, o := range f.orders {
		sum = sum.Add(o.TotalAmount)
	}
	return sum, nil
}

type fakePhotos struct {
	saved   []string
	deleted []string
}

func (f *fakePhotos) Save(productName, uploadID string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	path := "/static/assets/photos/" + strings.ReplaceAll(productName, " ", "_") + "_" + uploadID + ".jpg"
	f.saved = append(f.saved, path)
	return path, nil
}

func (f *fakePhotos) Delete(publicPath string) error {
	f.deleted = append(f.deleted, publicPath)
	return nil
}

type fakeExporter struct {
	rows []export.OrderRow
}

func (f *fakeExporter) Append(row export.OrderRow) error { f.rows = append(f.rows, row); return nil }
func (f *fakeExporter) FilePath() (string, error)        { return "orders.xlsx", nil }

type fakeNotifier struct {
	texts []string
}

func (f *fakeNotifier) Enqueue(text string) { f.texts = append(f.texts, text) }

type fakeUsers struct {
	admins map[int64]bool
}

func newFakeUsers() *fakeUsers { return &fakeUsers{admins: make(map[int64]bool)} }

func (f *fakeUsers) Ensure(telegramID int64, username string) (*models.User, error) {
	return &models.User{TelegramID: telegramID, IsAdmin: f.admins[telegramID]}, nil
}

func (f *fakeUsers) IsAdmin(telegramID int64) bool { return f.admins[telegramID] }

func (f *fakeUsers) SetAdmin(telegramID int64, isAdmin bool) error {
	f.admins[telegramID] = isAdmin
	return nil
}

func (f *fakeUsers) ListAdmins() ([]models.User, error) {
	var out []models.User
	for id, isAdmin := range f.admins {
		if isAdmin {
			out = append(out, models.User{TelegramID: id})
		}
	}
	return out, nil
}

type fakeFiles struct {
	data []byte
}

func (f *fakeFiles) Fetch(ctx context.Context, fileID string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type engineFixture struct {
	engine   *Engine
	users    *fakeUsers
	products *fakeProducts
	orders   *fakeOrders
	photos   *fakePhotos
	files    *fakeFiles
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	users := newFakeUsers()
	products := newFakeProducts()
	orders := newFakeOrders()
	photos := &fakePhotos{}
	files := &fakeFiles{}
	exporter := &fakeExporter{}
	catalog := service.NewCatalogService(products, photos)
	orderSvc := service.NewOrderService(orders, products, exporter, &fakeNotifier{})
	engine := NewEngine(users, catalog, orderSvc, exporter, files, "secret", "https://shop.example")
	return &engineFixture{engine: engine, users: users, products: products, orders: orders, photos: photos, files: files}
}

func textOf(t *testing.T, effects []Effect) string {
	t.Helper()
	require.NotEmpty(t, effects)
	for _, e := range effects {
		if e.Kind == EffectSendText || e.Kind == EffectEditText {
			return e.Text
		}
	}
	t.Fatalf("no text effect in %v", effects)
	return ""
}

func TestPasswordGate(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	in := Input{ChatID: 1, UserID: 1}

	in.Text = "/admin"
	assert.Contains(t, textOf(t, fx.engine.Handle(ctx, in)), "Введите пароль")
	assert.Equal(t, StateAwaitingPassword, fx.engine.sessions.Get(1).State)

	in.Text = "wrong"
	assert.Contains(t, textOf(t, fx.engine.Handle(ctx, in)), "Неверный пароль")
	assert.Equal(t, StateAwaitingPassword, fx.engine.sessions.Get(1).State)
	assert.False(t, fx.users.IsAdmin(1))

	in.Text = "secret"
	assert.Contains(t, textOf(t, fx.engine.Handle(ctx, in)), "Добро пожаловать")
	assert.Equal(t, StateIdle, fx.engine.sessions.Get(1).State)
	assert.True(t, fx.users.IsAdmin(1))
}

func TestPasswordGateCancel(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: "/admin"})
	out := fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: btnCancel})
	assert.Contains(t, textOf(t, out), "Отменено")
	assert.Equal(t, StateIdle, fx.engine.sessions.Get(1).State)
	assert.False(t, fx.users.IsAdmin(1))
}

func TestAddProductFlow(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	fx.users.SetAdmin(1, true)
	in := Input{ChatID: 1, UserID: 1}

	in.Text = btnAddProduct
	effects := fx.engine.Handle(ctx, in)
	require.Len(t, effects, 1)
	assert.NotEmpty(t, effects[0].Inline)

	out := fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "add_manual", MessageID: 10})
	assert.Contains(t, textOf(t, out), "Введите название")
	assert.Equal(t, StateAddName, fx.engine.sessions.Get(1).State)

	// Over-long name re-prompts without advancing.
	in.Text = strings.Repeat("х", 101)
	assert.Contains(t, textOf(t, fx.engine.Handle(ctx, in)), "слишком длинное")
	assert.Equal(t, StateAddName, fx.engine.sessions.Get(1).State)

	in.Text = "Кружка"
	assert.Contains(t, textOf(t, fx.engine.Handle(ctx, in)), "Введите описание")

	in.Text = "Керамика"
	assert.Contains(t, textOf(t, fx.engine.Handle(ctx, in)), "Введите цену")

	// Garbage price re-prompts and keeps earlier fields.
	in.Text = "дорого"
	assert.Contains(t, textOf(t, fx.engine.Handle(ctx, in)), "введите число")
	assert.Equal(t, "Кружка", fx.engine.sessions.Get(1).Draft.Name)

	in.Text = "150,50"
	assert.Contains(t, textOf(t, fx.engine.Handle(ctx, in)), "Отправьте фото")
	assert.Equal(t, StateAddPhoto, fx.engine.sessions.Get(1).State)

	// Plain text while waiting for a photo is silently ignored.
	in.Text = "не фото"
	assert.Empty(t, fx.engine.Handle(ctx, in))
	assert.Equal(t, StateAddPhoto, fx.engine.sessions.Get(1).State)

	out = fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "skip_photo", MessageID: 11})
	assert.Contains(t, textOf(t, out), "добавлен")
	assert.Equal(t, StateIdle, fx.engine.sessions.Get(1).State)

	p, err := fx.products.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "Кружка", p.Name)
	assert.Equal(t, "Керамика", p.Description.String)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("150.5")))
	assert.False(t, p.PhotoPath.Valid)
}

func TestAddProductWithPhoto(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	fx.users.SetAdmin(1, true)

	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "add_manual"})
	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: "Футболка"})
	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: "Хлопок"})
	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: "500"})

	out := fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, PhotoID: "file42"})
	assert.Contains(t, textOf(t, out), "добавлен с фото")

	p, err := fx.products.GetByID(1)
	require.NoError(t, err)
	require.True(t, p.PhotoPath.Valid)
	assert.Contains(t, p.PhotoPath.String, "Футболка_file42")
}

func TestNewFlowDiscardsPreviousState(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	fx.users.SetAdmin(1, true)

	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "add_manual"})
	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: "Недоделанный"})
	require.Equal(t, "Недоделанный", fx.engine.sessions.Get(1).Draft.Name)

	// Switching to the import flow drops the half-entered draft.
	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "add_import"})
	sess := fx.engine.sessions.Get(1)
	assert.Equal(t, StateImportFile, sess.State)
	assert.Empty(t, sess.Draft.Name)
}

func TestCancelDiscardsDraft(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	fx.users.SetAdmin(1, true)

	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "add_manual"})
	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: "Черновик"})
	out := fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: btnCancel})
	assert.Contains(t, textOf(t, out), "Отменено")

	sess := fx.engine.sessions.Get(1)
	assert.Equal(t, StateIdle, sess.State)
	assert.Empty(t, sess.Draft.Name)
	n, _ := fx.products.CountActive()
	assert.Zero(t, n)
}

func TestSessionIsolation(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	fx.users.SetAdmin(1, true)
	fx.users.SetAdmin(2, true)

	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "add_manual"})
	fx.engine.Handle(ctx, Input{ChatID: 2, UserID: 2, Callback: "add_manual"})
	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: "Товар первого"})
	fx.engine.Handle(ctx, Input{ChatID: 2, UserID: 2, Text: "Товар второго"})

	assert.Equal(t, "Товар первого", fx.engine.sessions.Get(1).Draft.Name)
	assert.Equal(t, "Товар второго", fx.engine.sessions.Get(2).Draft.Name)
	assert.Equal(t, StateAddDescription, fx.engine.sessions.Get(1).State)
}

func TestEditPriceFlow(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	fx.users.SetAdmin(1, true)
	id, err := fx.products.Create("Кепка", "", decimal.NewFromInt(300), "")
	require.NoError(t, err)

	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "edit_price_1"})
	sess := fx.engine.sessions.Get(1)
	assert.Equal(t, StateEditPrice, sess.State)
	assert.Equal(t, id, sess.ProductID)

	out := fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: "2000000"})
	assert.Contains(t, textOf(t, out), "цена должна быть")

	out = fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Text: "450"})
	assert.Contains(t, textOf(t, out), "Цена изменена")

	p, _ := fx.products.GetByID(id)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(450)))
}

func TestDeleteProductRemovesPhoto(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	fx.users.SetAdmin(1, true)
	_, err := fx.products.Create("Плакат", "", decimal.NewFromInt(100), "/static/assets/photos/p.jpg")
	require.NoError(t, err)

	out := fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "delete_1", MessageID: 5})
	assert.Contains(t, textOf(t, out), "Товар удалён")
	assert.Contains(t, fx.photos.deleted, "/static/assets/photos/p.jpg")
	_, err = fx.products.GetByID(1)
	assert.Error(t, err)
}

func TestImportFlow(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()
	fx.users.SetAdmin(1, true)

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Открытка", "Бумага", 50}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Магнит", "Винил", "дорого"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	fx.files.data = buf.Bytes()

	fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, Callback: "add_import"})
	out := fx.engine.Handle(ctx, Input{ChatID: 1, UserID: 1, DocumentID: "doc1"})
	text := textOf(t, out)
	assert.Contains(t, text, "Импортировано: 1")
	assert.Contains(t, text, "Строка 2")
	assert.Equal(t, StateIdle, fx.engine.sessions.Get(1).State)
}

func TestAdminButtonsIgnoredForNonAdmin(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	for _, text := range []string{btnAddProduct, btnEditProducts, btnStats, btnClients, btnGetExcel} {
		assert.Empty(t, fx.engine.Handle(ctx, Input{ChatID: 9, UserID: 9, Text: text}), text)
	}
}

func TestMyOrdersWithoutUsername(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	out := fx.engine.Handle(ctx, Input{ChatID: 3, UserID: 3, Text: btnMyOrders})
	assert.Contains(t, textOf(t, out), "не установлен username")
}

func TestMyOrdersListsOwnOrders(t *testing.T) {
	fx := newEngineFixture(t)
	ctx := context.Background()

	_, err := fx.orders.CreateWithItems(&models.Order{
		FirstName:   "Иван",
		LastName:    "Петров",
		Phone:       "+79990000000",
		Username:    sql.NullString{String: "ivan", Valid: true},
		TotalAmount: decimal.NewFromInt(300),
	}, nil)
	require.NoError(t, err)

	out := fx.engine.Handle(ctx, Input{ChatID: 3, UserID: 3, Username: "ivan", Text: btnMyOrders})
	text := textOf(t, out)
	assert.Contains(t, text, "Ваши заказы (@ivan)")
	assert.Contains(t, text, "Всего: 1")
}
