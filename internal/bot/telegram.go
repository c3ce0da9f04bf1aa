package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Telegram is the transport adapter: it feeds incoming updates into the
// engine and executes the effects the engine returns. It also implements the
// notify worker's MessageSender and the engine's FileFetcher.
type Telegram struct {
	api    *tgbotapi.BotAPI
	engine *Engine
}

// NewTelegram connects to the Bot API with the given token.
func NewTelegram(token string, engine *Engine) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{api: api, engine: engine}, nil
}

// SetEngine wires the engine after construction. The engine needs the
// adapter as its FileFetcher, so the two are connected in two steps.
func (t *Telegram) SetEngine(engine *Engine) {
	t.engine = engine
}

// Run starts long polling and blocks until the context is cancelled.
func (t *Telegram) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.api.GetUpdatesChan(cfg)

	log.Info().Str("username", t.api.Self.UserName).Msg("Starting bot")

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			log.Info().Msg("Bot stopped")
			return
		case update := <-updates:
			in, ok := toInput(update)
			if !ok {
				continue
			}
			if update.CallbackQuery != nil {
				// Acknowledge the button press so the client stops spinning.
				if _, err := t.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
					log.Warn().Err(err).Msg("callback ack failed")
				}
			}
			for _, effect := range t.engine.Handle(ctx, in) {
				if err := t.execute(effect); err != nil {
					log.Warn().Err(err).Int64("chat_id", effect.ChatID).Msg("effect execution failed")
				}
			}
		}
	}
}

// SendMessage delivers one plain text message; used by the notify worker.
func (t *Telegram) SendMessage(chatID int64, text string) error {
	_, err := t.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Fetch downloads the content of an uploaded file by its id.
func (t *Telegram) Fetch(ctx context.Context, fileID string) (io.ReadCloser, error) {
	file, err := t.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(t.api.Token), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("file download failed: %s", resp.Status)
	}
	return resp.Body, nil
}

// toInput converts a raw update into an engine input.
func toInput(update tgbotapi.Update) (Input, bool) {
	if update.CallbackQuery != nil {
		cb := update.CallbackQuery
		if cb.Message == nil {
			return Input{}, false
		}
		return Input{
			ChatID:    cb.Message.Chat.ID,
			MessageID: cb.Message.MessageID,
			UserID:    cb.From.ID,
			Username:  cb.From.UserName,
			Callback:  cb.Data,
		}, true
	}
	if update.Message != nil {
		msg := update.Message
		in := Input{
			ChatID:    msg.Chat.ID,
			MessageID: msg.MessageID,
			UserID:    msg.From.ID,
			Username:  msg.From.UserName,
			Text:      msg.Text,
		}
		if len(msg.Photo) > 0 {
			// Telegram sends several resolutions; the last one is the largest.
			in.PhotoID = msg.Photo[len(msg.Photo)-1].FileID
		}
		if msg.Document != nil {
			in.DocumentID = msg.Document.FileID
		}
		return in, true
	}
	return Input{}, false
}

func (t *Telegram) execute(effect Effect) error {
	switch effect.Kind {
	case EffectSendText:
		msg := tgbotapi.NewMessage(effect.ChatID, effect.Text)
		if effect.Reply != nil {
			msg.ReplyMarkup = toReplyMarkup(effect.Reply)
		} else if effect.Inline != nil {
			msg.ReplyMarkup = toInlineMarkup(effect.Inline)
		}
		_, err := t.api.Send(msg)
		return err

	case EffectSendPhoto:
		photo := tgbotapi.NewPhoto(effect.ChatID, tgbotapi.FileURL(effect.PhotoURL))
		photo.Caption = effect.Text
		if effect.Inline != nil {
			photo.ReplyMarkup = toInlineMarkup(effect.Inline)
		}
		_, err := t.api.Send(photo)
		return err

	case EffectSendDocument:
		doc := tgbotapi.NewDocument(effect.ChatID, tgbotapi.FilePath(effect.FilePath))
		doc.Caption = effect.Text
		_, err := t.api.Send(doc)
		return err

	case EffectEditText:
		edit := tgbotapi.NewEditMessageText(effect.ChatID, effect.MessageID, effect.Text)
		if effect.Inline != nil {
			markup := toInlineMarkup(effect.Inline)
			edit.ReplyMarkup = &markup
		}
		_, err := t.api.Send(edit)
		return err

	case EffectEditMarkup:
		edit := tgbotapi.NewEditMessageReplyMarkup(effect.ChatID, effect.MessageID, toInlineMarkup(effect.Inline))
		_, err := t.api.Send(edit)
		return err

	case EffectDeleteMessage:
		_, err := t.api.Request(tgbotapi.NewDeleteMessage(effect.ChatID, effect.MessageID))
		return err
	}
	return nil
}

func toReplyMarkup(kb ReplyKeyboard) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, b := range row {
			button := tgbotapi.KeyboardButton{Text: b.Text}
			if b.WebAppURL != "" {
				button.WebApp = &tgbotapi.WebAppInfo{URL: b.WebAppURL}
			}
			buttons = append(buttons, button)
		}
		rows = append(rows, buttons)
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

func toInlineMarkup(kb InlineKeyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
