package bot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/printshop/printshop-api/internal/config"
)

// productListKeyboard builds the paginated active-product picker. Page state
// travels in the callback data, not in the session.
func (e *Engine) productListKeyboard(page int) (InlineKeyboard, int, error) {
	products, err := e.catalog.ListActive()
	if err != nil {
		return nil, 0, err
	}
	kb := paginationKeyboard(len(products), page, config.PageSize, "products", func(i int) InlineButton {
		p := products[i]
		return InlineButton{
			Text: fmt.Sprintf("%s — %s ₽", p.Name, p.Price.StringFixed(2)),
			Data: fmt.Sprintf("product_%d", p.ID),
		}
	})
	return kb, len(products), nil
}

func (e *Engine) showProductList(chatID int64, page int, deleteFirst bool, messageID int) ([]Effect, error) {
	kb, total, err := e.productListKeyboard(page)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return []Effect{e.sendText(chatID, "❌ Нет товаров", adminKeyboard())}, nil
	}
	effects := []Effect{}
	if deleteFirst {
		effects = append(effects, Effect{Kind: EffectDeleteMessage, ChatID: chatID, MessageID: messageID})
	}
	return append(effects, e.sendInline(chatID, "📦 Выберите товар:", kb)), nil
}

func (e *Engine) productsPage(in Input, page int) ([]Effect, error) {
	kb, _, err := e.productListKeyboard(page)
	if err != nil {
		return nil, err
	}
	return []Effect{{Kind: EffectEditMarkup, ChatID: in.ChatID, MessageID: in.MessageID, Inline: kb}}, nil
}

func (e *Engine) backToProducts(in Input) ([]Effect, error) {
	return e.showProductList(in.ChatID, 0, true, in.MessageID)
}

// showProductCard replaces the list message with a single product card and
// its per-field edit actions.
func (e *Engine) showProductCard(in Input, productID int64) ([]Effect, error) {
	p, err := e.catalog.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📦 %s\n\n", p.Name)
	if p.Description.Valid {
		fmt.Fprintf(&b, "📝 %s\n\n", p.Description.String)
	}
	fmt.Fprintf(&b, "💰 Цена: %s ₽", p.Price.StringFixed(2))

	effects := []Effect{{Kind: EffectDeleteMessage, ChatID: in.ChatID, MessageID: in.MessageID}}
	if p.PhotoPath.Valid {
		effects = append(effects, Effect{
			Kind:     EffectSendPhoto,
			ChatID:   in.ChatID,
			PhotoURL: e.photoURL(p.PhotoPath.String),
			Text:     b.String(),
			Inline:   productActionsKeyboard(p.ID),
		})
	} else {
		effects = append(effects, e.sendInline(in.ChatID, b.String(), productActionsKeyboard(p.ID)))
	}
	return effects, nil
}

func (e *Engine) showStats(chatID int64) ([]Effect, error) {
	stats, err := e.orders.Stats()
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("📊 Статистика:\n\n📦 Товаров: %d\n🛒 Заказов: %d\n💰 Выручка: %s ₽",
		stats.ActiveProducts, stats.Orders, stats.Revenue.StringFixed(2))
	return []Effect{e.sendText(chatID, text, adminKeyboard())}, nil
}

func (e *Engine) clientListKeyboard(page int) (InlineKeyboard, int, error) {
	usernames, err := e.orders.ListClientUsernames()
	if err != nil {
		return nil, 0, err
	}
	kb := paginationKeyboard(len(usernames), page, config.PageSize, "clients", func(i int) InlineButton {
		return InlineButton{Text: "@" + usernames[i], Data: "client_" + usernames[i]}
	})
	return kb, len(usernames), nil
}

func (e *Engine) showClients(chatID int64, page int, deleteFirst bool, messageID int) ([]Effect, error) {
	kb, total, err := e.clientListKeyboard(page)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return []Effect{e.sendText(chatID, "❌ Нет клиентов с username", adminKeyboard())}, nil
	}
	effects := []Effect{}
	if deleteFirst {
		effects = append(effects, Effect{Kind: EffectDeleteMessage, ChatID: chatID, MessageID: messageID})
	}
	return append(effects, e.sendInline(chatID, "👥 Клиенты:", kb)), nil
}

func (e *Engine) clientsPage(in Input, page int) ([]Effect, error) {
	kb, _, err := e.clientListKeyboard(page)
	if err != nil {
		return nil, err
	}
	return []Effect{{Kind: EffectEditMarkup, ChatID: in.ChatID, MessageID: in.MessageID, Inline: kb}}, nil
}

func (e *Engine) backToClients(in Input) ([]Effect, error) {
	kb, _, err := e.clientListKeyboard(0)
	if err != nil {
		return nil, err
	}
	return []Effect{{Kind: EffectEditText, ChatID: in.ChatID, MessageID: in.MessageID, Text: "👥 Клиенты:", Inline: kb}}, nil
}

// showClientCard replaces the client list with one client's order history.
func (e *Engine) showClientCard(in Input, username string) ([]Effect, error) {
	orders, err := e.orders.ListByUsername(username)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.TotalAmount)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 Клиент: @%s\n\n", username)
	fmt.Fprintf(&b, "🛒 Заказов: %d\n", len(orders))
	fmt.Fprintf(&b, "💰 Выручка: %s ₽\n\n", revenue.StringFixed(2))
	b.WriteString("📦 Заказы:")

	var kb InlineKeyboard
	for _, o := range orders {
		kb = append(kb, []InlineButton{{
			Text: fmt.Sprintf("#%d — %s ₽", o.ID, o.TotalAmount.StringFixed(2)),
			Data: fmt.Sprintf("order_%d", o.ID),
		}})
	}
	kb = append(kb, []InlineButton{{Text: "🔙 Назад", Data: "back_to_clients"}})

	return []Effect{{Kind: EffectEditText, ChatID: in.ChatID, MessageID: in.MessageID, Text: b.String(), Inline: kb}}, nil
}

// showOrderDetail renders the admin view of one order, linking back to the
// client card it was opened from.
func (e *Engine) showOrderDetail(in Input, orderID int64) ([]Effect, error) {
	o, items, err := e.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Заказ #%d\n\n", o.ID)
	fmt.Fprintf(&b, "👤 %s %s\n", o.FirstName, o.LastName)
	fmt.Fprintf(&b, "📞 %s\n", o.Phone)
	if o.Username.Valid {
		fmt.Fprintf(&b, "👤 @%s\n", o.Username.String)
	}
	fmt.Fprintf(&b, "📅 %s\n", o.CreatedAt.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "💰 %s ₽\n\n", o.TotalAmount.StringFixed(2))
	b.WriteString("📦 Товары:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "  • %s — %d шт × %s ₽\n", item.ProductName, item.Quantity, item.Price.StringFixed(2))
	}
	if o.Comment.Valid {
		fmt.Fprintf(&b, "\n💬 %s", o.Comment.String)
	}

	kb := InlineKeyboard{{{Text: "🔙 Назад", Data: "client_" + o.Username.String}}}
	return []Effect{{Kind: EffectEditText, ChatID: in.ChatID, MessageID: in.MessageID, Text: b.String(), Inline: kb}}, nil
}

func (e *Engine) myOrdersKeyboard(username string, page int) (InlineKeyboard, int, error) {
	orders, err := e.orders.ListByUsername(username)
	if err != nil {
		return nil, 0, err
	}
	kb := paginationKeyboard(len(orders), page, config.PageSize, "user_orders", func(i int) InlineButton {
		return InlineButton{Text: orderButtonLabel(&orders[i]), Data: fmt.Sprintf("user_order_%d", orders[i].ID)}
	})
	return kb, len(orders), nil
}

// showMyOrders lists the requester's own orders, matched by handle.
func (e *Engine) showMyOrders(in Input) ([]Effect, error) {
	if in.Username == "" {
		text := "❌ У вас не установлен username в Telegram\n\n" +
			"Установите username в настройках Telegram и попробуйте снова"
		return []Effect{e.sendText(in.ChatID, text, mainKeyboard(e.webAppURL))}, nil
	}

	kb, total, err := e.myOrdersKeyboard(in.Username, 0)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		text := fmt.Sprintf("❌ Заказы для @%s не найдены\n\n"+
			"Возможно, вы указали другой username при оформлении заказа", in.Username)
		return []Effect{e.sendText(in.ChatID, text, mainKeyboard(e.webAppURL))}, nil
	}

	text := fmt.Sprintf("📦 Ваши заказы (@%s):\nВсего: %d", in.Username, total)
	return []Effect{e.sendInline(in.ChatID, text, kb)}, nil
}

func (e *Engine) myOrdersPage(in Input, page int) ([]Effect, error) {
	kb, _, err := e.myOrdersKeyboard(in.Username, page)
	if err != nil {
		return nil, err
	}
	return []Effect{{Kind: EffectEditMarkup, ChatID: in.ChatID, MessageID: in.MessageID, Inline: kb}}, nil
}

func (e *Engine) backToMyOrders(in Input) ([]Effect, error) {
	if in.Username == "" {
		return []Effect{{Kind: EffectEditText, ChatID: in.ChatID, MessageID: in.MessageID, Text: "❌ Username не найден"}}, nil
	}
	kb, total, err := e.myOrdersKeyboard(in.Username, 0)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return []Effect{{Kind: EffectEditText, ChatID: in.ChatID, MessageID: in.MessageID,
			Text: fmt.Sprintf("❌ Заказы для @%s не найдены", in.Username)}}, nil
	}
	text := fmt.Sprintf("📦 Ваши заказы (@%s):\nВсего: %d", in.Username, total)
	return []Effect{{Kind: EffectEditText, ChatID: in.ChatID, MessageID: in.MessageID, Text: text, Inline: kb}}, nil
}

// showMyOrderDetail renders the customer's view of one of their orders.
func (e *Engine) showMyOrderDetail(in Input, orderID int64) ([]Effect, error) {
	o, items, err := e.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Заказ #%d\n\n", o.ID)
	fmt.Fprintf(&b, "📅 %s\n", o.CreatedAt.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "👤 %s %s\n", o.FirstName, o.LastName)
	fmt.Fprintf(&b, "📞 %s\n", o.Phone)
	fmt.Fprintf(&b, "💰 Итого: %s ₽\n\n", o.TotalAmount.StringFixed(2))
	b.WriteString("📦 Товары:\n")
	for _, item := range items {
		sum := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		fmt.Fprintf(&b, "  • %s\n", item.ProductName)
		fmt.Fprintf(&b, "    %d шт × %s ₽ = %s ₽\n", item.Quantity, item.Price.StringFixed(2), sum.StringFixed(2))
	}
	if o.Comment.Valid {
		fmt.Fprintf(&b, "\n💬 Комментарий: %s", o.Comment.String)
	}

	kb := InlineKeyboard{{{Text: "🔙 К списку заказов", Data: "back_to_user_orders"}}}
	return []Effect{{Kind: EffectEditText, ChatID: in.ChatID, MessageID: in.MessageID, Text: b.String(), Inline: kb}}, nil
}
