package bot

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/printshop/printshop-api/internal/models"
	"github.com/printshop/printshop-api/internal/service"
)

// Input is one incoming conversational event, already decoupled from the
// chat transport. Exactly one of Text, PhotoID, DocumentID or Callback is
// expected to be meaningful.
type Input struct {
	ChatID     int64
	MessageID  int
	UserID     int64
	Username   string
	Text       string
	PhotoID    string
	DocumentID string
	Callback   string
}

// EffectKind tags an Effect with the transport action it requests.
type EffectKind int

const (
	EffectSendText EffectKind = iota
	EffectSendPhoto
	EffectSendDocument
	EffectEditText
	EffectEditMarkup
	EffectDeleteMessage
)

// Effect is one transport action produced by a transition. The engine only
// emits effects; the adapter executes them.
type Effect struct {
	Kind      EffectKind
	ChatID    int64
	MessageID int
	Text      string
	PhotoURL  string
	FilePath  string
	Reply     ReplyKeyboard
	Inline    InlineKeyboard
}

// FileFetcher retrieves the content of an uploaded file by its opaque id.
type FileFetcher interface {
	Fetch(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// UserDirectory is the user store contract the engine needs.
type UserDirectory interface {
	Ensure(telegramID int64, username string) (*models.User, error)
	IsAdmin(telegramID int64) bool
	SetAdmin(telegramID int64, isAdmin bool) error
}

// Engine is the conversation state machine. Each Handle call is one
// transition: (session state, input) -> (new state, effects). It holds no
// transport handles, so flows are testable without a live chat connection.
type Engine struct {
	users     UserDirectory
	catalog   *service.CatalogService
	orders    *service.OrderService
	exporter  service.Exporter
	files     FileFetcher
	password  string
	webAppURL string
	sessions  *Sessions
}

// NewEngine constructs an Engine.
func NewEngine(users UserDirectory, catalog *service.CatalogService, orders *service.OrderService,
	exporter service.Exporter, files FileFetcher, password, webAppURL string) *Engine {
	return &Engine{
		users:     users,
		catalog:   catalog,
		orders:    orders,
		exporter:  exporter,
		files:     files,
		password:  password,
		webAppURL: webAppURL,
		sessions:  NewSessions(),
	}
}

// Handle processes one input for its conversation session and returns the
// effects to execute. Unexpected errors degrade to a generic apology and
// drop back to the idle state without losing authentication.
func (e *Engine) Handle(ctx context.Context, in Input) []Effect {
	sess := e.sessions.Get(in.ChatID)

	effects, err := e.dispatch(ctx, sess, in)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", in.ChatID).Msg("conversation turn failed")
		sess.reset()
		return []Effect{e.sendText(in.ChatID, "😔 Что-то пошло не так. Попробуйте ещё раз", e.homeKeyboard(in.UserID))}
	}
	return effects
}

func (e *Engine) dispatch(ctx context.Context, sess *Session, in Input) ([]Effect, error) {
	if in.Callback != "" {
		return e.handleCallback(ctx, sess, in)
	}
	if sess.State != StateIdle {
		return e.handleFlowInput(ctx, sess, in)
	}
	return e.handleCommand(ctx, sess, in)
}

// handleCommand routes idle-state messages: commands, menu buttons and the
// unknown-input fallback.
func (e *Engine) handleCommand(ctx context.Context, sess *Session, in Input) ([]Effect, error) {
	switch in.Text {
	case "/start":
		if _, err := e.users.Ensure(in.UserID, in.Username); err != nil {
			return nil, err
		}
		text := "👋 Добро пожаловать в Print Shop!\n\n" +
			"🛍 Откройте магазин через кнопку ниже\n" +
			"📦 Или проверьте свои заказы"
		return []Effect{e.sendText(in.ChatID, text, mainKeyboard(e.webAppURL))}, nil

	case "/help":
		return []Effect{e.sendText(in.ChatID, e.helpText(in.UserID), e.homeKeyboard(in.UserID))}, nil

	case "/admin":
		if e.users.IsAdmin(in.UserID) {
			return []Effect{e.sendText(in.ChatID, "🔐 Админ-панель", adminKeyboard())}, nil
		}
		sess.enter(StateAwaitingPassword)
		return []Effect{e.sendText(in.ChatID, "🔐 Введите пароль:", cancelKeyboard())}, nil

	case btnOpenShop:
		return []Effect{e.sendText(in.ChatID, "🛍️ Откройте магазин через кнопку выше", mainKeyboard(e.webAppURL))}, nil

	case btnMyOrders:
		return e.showMyOrders(in)

	case btnLeaveMenu:
		return []Effect{e.sendText(in.ChatID, "👋 Возврат в главное меню", mainKeyboard(e.webAppURL))}, nil

	case btnAddProduct:
		if !e.users.IsAdmin(in.UserID) {
			return nil, nil
		}
		return []Effect{e.sendInline(in.ChatID, "Выберите способ добавления:", addChoiceKeyboard())}, nil

	case btnEditProducts:
		if !e.users.IsAdmin(in.UserID) {
			return nil, nil
		}
		return e.showProductList(in.ChatID, 0, false, 0)

	case btnStats:
		if !e.users.IsAdmin(in.UserID) {
			return nil, nil
		}
		return e.showStats(in.ChatID)

	case btnClients:
		if !e.users.IsAdmin(in.UserID) {
			return nil, nil
		}
		return e.showClients(in.ChatID, 0, false, 0)

	case btnGetExcel:
		if !e.users.IsAdmin(in.UserID) {
			return nil, nil
		}
		path, err := e.exporter.FilePath()
		if err != nil {
			return nil, err
		}
		return []Effect{{Kind: EffectSendDocument, ChatID: in.ChatID, FilePath: path, Text: "📥 Заказы"}}, nil
	}

	// Unknown input outside any flow.
	if e.users.IsAdmin(in.UserID) {
		return []Effect{e.sendText(in.ChatID,
			"🤔 Не понял команду. Используйте кнопки меню или /help", adminKeyboard())}, nil
	}
	text := "🤔 Не понял команду.\n\n" +
		"🛍 Откройте магазин через кнопку\n" +
		"📦 Или проверьте свои заказы\n" +
		"ℹ️ Используйте /help для справки"
	return []Effect{e.sendText(in.ChatID, text, mainKeyboard(e.webAppURL))}, nil
}

func (e *Engine) helpText(userID int64) string {
	var b strings.Builder
	b.WriteString("ℹ️ Справка:\n\n")
	b.WriteString("/start - начать работу\n")
	b.WriteString("/help - показать справку\n")
	b.WriteString("🛍 Открыть магазин - перейти в каталог\n")
	b.WriteString("📦 Мои заказы - посмотреть заказы\n")
	if e.users.IsAdmin(userID) {
		b.WriteString("\n👑 Админ команды:\n")
		b.WriteString("/admin - админ-панель\n")
		b.WriteString("➕ Добавить товар\n")
		b.WriteString("✏️ Редактировать товары\n")
		b.WriteString("📊 Статистика\n")
		b.WriteString("👥 Клиенты\n")
		b.WriteString("📥 Получить Excel\n")
	}
	return b.String()
}

// homeKeyboard picks the idle keyboard for a user.
func (e *Engine) homeKeyboard(userID int64) ReplyKeyboard {
	if e.users.IsAdmin(userID) {
		return adminKeyboard()
	}
	return mainKeyboard(e.webAppURL)
}

func (e *Engine) sendText(chatID int64, text string, kb ReplyKeyboard) Effect {
	return Effect{Kind: EffectSendText, ChatID: chatID, Text: text, Reply: kb}
}

func (e *Engine) sendInline(chatID int64, text string, kb InlineKeyboard) Effect {
	return Effect{Kind: EffectSendText, ChatID: chatID, Text: text, Inline: kb}
}

func (e *Engine) photoURL(publicPath string) string {
	return strings.TrimSuffix(e.webAppURL, "/") + publicPath
}

func orderButtonLabel(o *models.Order) string {
	return fmt.Sprintf("#%d — %s ₽ (%s)", o.ID, o.TotalAmount.StringFixed(2), o.CreatedAt.Format("02.01.2006"))
}
