package bot

import (
	"context"
	"fmt"

	"github.com/printshop/printshop-api/internal/config"
	"github.com/printshop/printshop-api/internal/service"
	"github.com/printshop/printshop-api/internal/utils"
)

const (
	promptName        = "Введите название товара (макс. %d символов):"
	promptDescription = "Введите описание (макс. %d символов):"
	promptPrice       = "Введите цену (%v-%v ₽):"
)

// handleFlowInput advances a session that is inside a guided flow. Input of
// an unexpected class is silently ignored; validation failures re-prompt
// without losing earlier entered fields.
func (e *Engine) handleFlowInput(ctx context.Context, sess *Session, in Input) ([]Effect, error) {
	if in.Text == btnCancel {
		kb := adminKeyboard()
		if sess.State == StateAwaitingPassword {
			kb = mainKeyboard(e.webAppURL)
		}
		sess.reset()
		return []Effect{e.sendText(in.ChatID, "❌ Отменено", kb)}, nil
	}

	switch sess.State {
	case StateAwaitingPassword:
		return e.checkPassword(sess, in)
	case StateAddName:
		return e.addName(sess, in)
	case StateAddDescription:
		return e.addDescription(sess, in)
	case StateAddPrice:
		return e.addPrice(sess, in)
	case StateAddPhoto:
		return e.addPhoto(ctx, sess, in)
	case StateEditName:
		return e.editName(sess, in)
	case StateEditDescription:
		return e.editDescription(sess, in)
	case StateEditPrice:
		return e.editPrice(sess, in)
	case StateEditPhoto:
		return e.editPhoto(ctx, sess, in)
	case StateImportFile:
		return e.importFile(ctx, sess, in)
	}
	return nil, nil
}

func (e *Engine) checkPassword(sess *Session, in Input) ([]Effect, error) {
	if in.Text == "" {
		return nil, nil
	}
	if in.Text != e.password {
		return []Effect{e.sendText(in.ChatID, "❌ Неверный пароль", cancelKeyboard())}, nil
	}
	if _, err := e.users.Ensure(in.UserID, in.Username); err != nil {
		return nil, err
	}
	if err := e.users.SetAdmin(in.UserID, true); err != nil {
		return nil, err
	}
	sess.reset()
	return []Effect{e.sendText(in.ChatID, "✅ Добро пожаловать в админ-панель!", adminKeyboard())}, nil
}

func (e *Engine) addName(sess *Session, in Input) ([]Effect, error) {
	if in.Text == "" {
		return nil, nil
	}
	if err := service.ValidateName(in.Text); err != nil {
		return []Effect{e.sendText(in.ChatID, "❌ "+err.Error(), cancelKeyboard())}, nil
	}
	sess.Draft.Name = in.Text
	sess.State = StateAddDescription
	return []Effect{e.sendText(in.ChatID,
		fmt.Sprintf(promptDescription, config.MaxDescriptionLength), cancelKeyboard())}, nil
}

func (e *Engine) addDescription(sess *Session, in Input) ([]Effect, error) {
	if in.Text == "" {
		return nil, nil
	}
	if err := service.ValidateDescription(in.Text); err != nil {
		return []Effect{e.sendText(in.ChatID, "❌ "+err.Error(), cancelKeyboard())}, nil
	}
	sess.Draft.Description = in.Text
	sess.State = StateAddPrice
	return []Effect{e.sendText(in.ChatID,
		fmt.Sprintf(promptPrice, config.MinPrice, config.MaxPrice), cancelKeyboard())}, nil
}

func (e *Engine) addPrice(sess *Session, in Input) ([]Effect, error) {
	if in.Text == "" {
		return nil, nil
	}
	price, err := service.ParsePrice(in.Text)
	if err != nil {
		return []Effect{e.sendText(in.ChatID, "❌ "+err.Error(), cancelKeyboard())}, nil
	}
	sess.Draft.Price = price
	sess.State = StateAddPhoto
	return []Effect{e.sendInline(in.ChatID, "Отправьте фото или пропустите:", skipPhotoKeyboard())}, nil
}

func (e *Engine) addPhoto(ctx context.Context, sess *Session, in Input) ([]Effect, error) {
	if in.PhotoID == "" {
		return nil, nil
	}
	content, err := e.files.Fetch(ctx, in.PhotoID)
	if err != nil {
		return nil, err
	}
	defer content.Close()

	draft := sess.Draft
	if _, err := e.catalog.CreateWithPhoto(draft.Name, draft.Description, draft.Price, in.PhotoID, content); err != nil {
		return nil, err
	}
	sess.reset()
	return []Effect{e.sendText(in.ChatID,
		fmt.Sprintf("✅ Товар '%s' добавлен с фото!", draft.Name), adminKeyboard())}, nil
}

func (e *Engine) editName(sess *Session, in Input) ([]Effect, error) {
	if in.Text == "" {
		return nil, nil
	}
	if err := e.catalog.UpdateName(sess.ProductID, in.Text); err != nil {
		if utils.IsValidation(err) {
			return []Effect{e.sendText(in.ChatID, "❌ "+err.Error(), cancelKeyboard())}, nil
		}
		return nil, err
	}
	sess.reset()
	return []Effect{e.sendText(in.ChatID, "✅ Название изменено!", adminKeyboard())}, nil
}

func (e *Engine) editDescription(sess *Session, in Input) ([]Effect, error) {
	if in.Text == "" {
		return nil, nil
	}
	if err := e.catalog.UpdateDescription(sess.ProductID, in.Text); err != nil {
		if utils.IsValidation(err) {
			return []Effect{e.sendText(in.ChatID, "❌ "+err.Error(), cancelKeyboard())}, nil
		}
		return nil, err
	}
	sess.reset()
	return []Effect{e.sendText(in.ChatID, "✅ Описание изменено!", adminKeyboard())}, nil
}

func (e *Engine) editPrice(sess *Session, in Input) ([]Effect, error) {
	if in.Text == "" {
		return nil, nil
	}
	price, err := service.ParsePrice(in.Text)
	if err != nil {
		return []Effect{e.sendText(in.ChatID, "❌ "+err.Error(), cancelKeyboard())}, nil
	}
	if err := e.catalog.UpdatePrice(sess.ProductID, price); err != nil {
		return nil, err
	}
	sess.reset()
	return []Effect{e.sendText(in.ChatID, "✅ Цена изменена!", adminKeyboard())}, nil
}

func (e *Engine) editPhoto(ctx context.Context, sess *Session, in Input) ([]Effect, error) {
	if in.PhotoID == "" {
		return nil, nil
	}
	content, err := e.files.Fetch(ctx, in.PhotoID)
	if err != nil {
		return nil, err
	}
	defer content.Close()

	if err := e.catalog.ReplacePhoto(sess.ProductID, in.PhotoID, content); err != nil {
		return nil, err
	}
	sess.reset()
	return []Effect{e.sendText(in.ChatID, "✅ Фото изменено!", adminKeyboard())}, nil
}

func (e *Engine) importFile(ctx context.Context, sess *Session, in Input) ([]Effect, error) {
	if in.DocumentID == "" {
		return nil, nil
	}
	sess.reset()

	content, err := e.files.Fetch(ctx, in.DocumentID)
	if err != nil {
		return []Effect{e.sendText(in.ChatID,
			fmt.Sprintf("❌ Ошибка импорта: %v", err), adminKeyboard())}, nil
	}
	defer content.Close()

	result, err := e.catalog.ImportSpreadsheet(content)
	if err != nil {
		return []Effect{e.sendText(in.ChatID,
			fmt.Sprintf("❌ Ошибка импорта: %v", err), adminKeyboard())}, nil
	}
	return []Effect{e.sendText(in.ChatID, result.Summary(), adminKeyboard())}, nil
}
