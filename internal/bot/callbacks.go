package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/printshop/printshop-api/internal/config"
)

// handleCallback routes inline keyboard presses. Prefix order matters:
// "products_page_" must be checked before "product_", and "user_order"
// variants before the bare "order_" prefix.
func (e *Engine) handleCallback(ctx context.Context, sess *Session, in Input) ([]Effect, error) {
	data := in.Callback

	switch data {
	case "page_info":
		return nil, nil
	case "add_manual":
		sess.enter(StateAddName)
		return []Effect{
			{Kind: EffectDeleteMessage, ChatID: in.ChatID, MessageID: in.MessageID},
			e.sendText(in.ChatID, fmt.Sprintf(promptName, config.MaxNameLength), cancelKeyboard()),
		}, nil
	case "add_import":
		sess.enter(StateImportFile)
		return []Effect{
			{Kind: EffectDeleteMessage, ChatID: in.ChatID, MessageID: in.MessageID},
			e.sendText(in.ChatID, importHelpText(), cancelKeyboard()),
		}, nil
	case "skip_photo":
		return e.skipPhoto(sess, in)
	case "back_to_products":
		return e.backToProducts(in)
	case "back_to_clients":
		return e.backToClients(in)
	case "back_to_user_orders":
		return e.backToMyOrders(in)
	}

	switch {
	case strings.HasPrefix(data, "user_orders_page_"):
		page, err := parsePage(data)
		if err != nil {
			return nil, err
		}
		return e.myOrdersPage(in, page)
	case strings.HasPrefix(data, "user_order_"):
		id, err := parseID(data, "user_order_")
		if err != nil {
			return nil, err
		}
		return e.showMyOrderDetail(in, id)
	case strings.HasPrefix(data, "products_page_"):
		page, err := parsePage(data)
		if err != nil {
			return nil, err
		}
		return e.productsPage(in, page)
	case strings.HasPrefix(data, "product_"):
		id, err := parseID(data, "product_")
		if err != nil {
			return nil, err
		}
		return e.showProductCard(in, id)
	case strings.HasPrefix(data, "clients_page_"):
		page, err := parsePage(data)
		if err != nil {
			return nil, err
		}
		return e.clientsPage(in, page)
	case strings.HasPrefix(data, "client_"):
		return e.showClientCard(in, strings.TrimPrefix(data, "client_"))
	case strings.HasPrefix(data, "edit_name_"):
		return e.enterEdit(sess, in, StateEditName, "edit_name_",
			fmt.Sprintf("Введите новое название (макс. %d символов):", config.MaxNameLength))
	case strings.HasPrefix(data, "edit_desc_"):
		return e.enterEdit(sess, in, StateEditDescription, "edit_desc_",
			fmt.Sprintf("Введите новое описание (макс. %d символов):", config.MaxDescriptionLength))
	case strings.HasPrefix(data, "edit_price_"):
		return e.enterEdit(sess, in, StateEditPrice, "edit_price_",
			fmt.Sprintf("Введите новую цену (%v-%v ₽):", config.MinPrice, config.MaxPrice))
	case strings.HasPrefix(data, "edit_photo_"):
		return e.enterEdit(sess, in, StateEditPhoto, "edit_photo_", "Отправьте новое фото:")
	case strings.HasPrefix(data, "delete_"):
		id, err := parseID(data, "delete_")
		if err != nil {
			return nil, err
		}
		return e.deleteProduct(in, id)
	case strings.HasPrefix(data, "order_"):
		id, err := parseID(data, "order_")
		if err != nil {
			return nil, err
		}
		return e.showOrderDetail(in, id)
	}

	return nil, nil
}

// skipPhoto commits the accumulated draft without a photo. Valid only while
// the add flow is waiting for one; a stale button press is ignored.
func (e *Engine) skipPhoto(sess *Session, in Input) ([]Effect, error) {
	if sess.State != StateAddPhoto {
		return nil, nil
	}
	draft := sess.Draft
	if _, err := e.catalog.Create(draft.Name, draft.Description, draft.Price, ""); err != nil {
		return nil, err
	}
	sess.reset()
	return []Effect{
		{Kind: EffectDeleteMessage, ChatID: in.ChatID, MessageID: in.MessageID},
		e.sendText(in.ChatID, fmt.Sprintf("✅ Товар '%s' добавлен!", draft.Name), adminKeyboard()),
	}, nil
}

// enterEdit starts a single-field edit flow for the product named in the
// callback data.
func (e *Engine) enterEdit(sess *Session, in Input, state State, prefix, prompt string) ([]Effect, error) {
	id, err := parseID(in.Callback, prefix)
	if err != nil {
		return nil, err
	}
	sess.enter(state)
	sess.ProductID = id
	return []Effect{e.sendText(in.ChatID, prompt, cancelKeyboard())}, nil
}

func (e *Engine) deleteProduct(in Input, id int64) ([]Effect, error) {
	if err := e.catalog.Delete(id); err != nil {
		return nil, err
	}
	return []Effect{
		{Kind: EffectDeleteMessage, ChatID: in.ChatID, MessageID: in.MessageID},
		e.sendText(in.ChatID, "✅ Товар удалён", adminKeyboard()),
	}, nil
}

func importHelpText() string {
	return fmt.Sprintf(
		"📁 Отправьте Excel файл для импорта\n\n"+
			"📋 Формат файла:\n"+
			"• Колонка A: Название\n"+
			"• Колонка B: Описание\n"+
			"• Колонка C: Цена\n\n"+
			"⚠️ Ограничения:\n"+
			"• Название: до %d символов\n"+
			"• Описание: до %d символов\n"+
			"• Цена: от %v до %v ₽\n\n"+
			"ℹ️ Фото можно добавить через редактирование",
		config.MaxNameLength, config.MaxDescriptionLength, config.MinPrice, config.MaxPrice)
}

// parseID extracts the numeric id after a callback prefix.
func parseID(data, prefix string) (int64, error) {
	return strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
}

// parsePage extracts the page number from a "<prefix>_page_<n>" callback.
func parsePage(data string) (int, error) {
	idx := strings.LastIndex(data, "_")
	return strconv.Atoi(data[idx+1:])
}
