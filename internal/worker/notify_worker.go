package worker

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/printshop/printshop-api/internal/models"
)

// AdminLister returns the users to fan a notification out to.
type AdminLister interface {
	ListAdmins() ([]models.User, error)
}

// MessageSender delivers one message to one chat.
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// NotifyWorker fans checkout notifications out to all administrators in the
// background. Delivery is best-effort on every level: a full queue drops the
// message, an unreachable recipient is skipped, and a dead transport is
// logged and ignored. The triggering request never waits on any of it.
type NotifyWorker struct {
	admins AdminLister
	sender MessageSender
	queue  chan string
}

// NewNotifyWorker constructs a NotifyWorker with a bounded queue.
func NewNotifyWorker(admins AdminLister, sender MessageSender) *NotifyWorker {
	return &NotifyWorker{
		admins: admins,
		sender: sender,
		queue:  make(chan string, 64),
	}
}

// Enqueue hands a notification to the worker without blocking. When the
// queue is full the notification is dropped and logged.
func (w *NotifyWorker) Enqueue(text string) {
	select {
	case w.queue <- text:
	default:
		log.Warn().Msg("notification queue full, dropping message")
	}
}

// Start begins the delivery loop and listens for context cancellation.
func (w *NotifyWorker) Start(ctx context.Context) {
	log.Info().Msg("Starting notify worker")

	for {
		select {
		case text := <-w.queue:
			w.fanOut(text)
		case <-ctx.Done():
			log.Info().Msg("Notify worker stopped")
			return
		}
	}
}

// fanOut attempts one delivery per administrator, isolating each failure.
func (w *NotifyWorker) fanOut(text string) {
	admins, err := w.admins.ListAdmins()
	if err != nil {
		log.Error().Err(err).Msg("failed to list admins for notification")
		return
	}
	for _, admin := range admins {
		if err := w.sender.SendMessage(admin.TelegramID, text); err != nil {
			log.Warn().Err(err).Int64("telegram_id", admin.TelegramID).Msg("admin notification failed")
		}
	}
}
