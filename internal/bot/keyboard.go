package bot

import "fmt"

// Button labels understood by the engine. The reply keyboard sends these
// back as plain message text.
const (
	btnOpenShop     = "🛍 Открыть магазин"
	btnMyOrders     = "📦 Мои заказы"
	btnAddProduct   = "➕ Добавить товар"
	btnEditProducts = "✏️ Редактировать товары"
	btnStats        = "📊 Статистика"
	btnClients      = "👥 Клиенты"
	btnGetExcel     = "📥 Получить Excel"
	btnLeaveMenu    = "🚪 Выйти из меню"
	btnCancel       = "❌ Отмена"
)

// ReplyButton is one button of a persistent reply keyboard. WebAppURL, when
// set, opens the storefront webapp instead of sending the label back.
type ReplyButton struct {
	Text      string
	WebAppURL string
}

// ReplyKeyboard is a persistent keyboard shown under the input field.
type ReplyKeyboard [][]ReplyButton

// InlineButton is one button of an inline keyboard; Data is the callback
// payload routed back into the engine.
type InlineButton struct {
	Text string
	Data string
}

// InlineKeyboard is a keyboard attached to a single message.
type InlineKeyboard [][]InlineButton

func mainKeyboard(webAppURL string) ReplyKeyboard {
	return ReplyKeyboard{
		{{Text: btnOpenShop, WebAppURL: webAppURL}},
		{{Text: btnMyOrders}},
	}
}

func adminKeyboard() ReplyKeyboard {
	return ReplyKeyboard{
		{{Text: btnAddProduct}},
		{{Text: btnEditProducts}},
		{{Text: btnStats}, {Text: btnClients}},
		{{Text: btnGetExcel}},
		{{Text: btnLeaveMenu}},
	}
}

func cancelKeyboard() ReplyKeyboard {
	return ReplyKeyboard{{{Text: btnCancel}}}
}

func addChoiceKeyboard() InlineKeyboard {
	return InlineKeyboard{
		{{Text: "✍️ Добавить вручную", Data: "add_manual"}},
		{{Text: "📁 Импортировать из Excel", Data: "add_import"}},
	}
}

func skipPhotoKeyboard() InlineKeyboard {
	return InlineKeyboard{{{Text: "⏭️ Пропустить фото", Data: "skip_photo"}}}
}

func productActionsKeyboard(productID int64) InlineKeyboard {
	return InlineKeyboard{
		{{Text: "✏️ Изменить название", Data: fmt.Sprintf("edit_name_%d", productID)}},
		{{Text: "📝 Изменить описание", Data: fmt.Sprintf("edit_desc_%d", productID)}},
		{{Text: "💰 Изменить цену", Data: fmt.Sprintf("edit_price_%d", productID)}},
		{{Text: "🖼 Изменить фото", Data: fmt.Sprintf("edit_photo_%d", productID)}},
		{{Text: "🗑 Удалить товар", Data: fmt.Sprintf("delete_%d", productID)}},
		{{Text: "🔙 Назад", Data: "back_to_products"}},
	}
}
