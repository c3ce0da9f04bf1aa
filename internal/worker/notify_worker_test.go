package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printshop/printshop-api/internal/models"
)

type stubAdmins struct {
	admins []models.User
	err    error
}

func (s *stubAdmins) ListAdmins() ([]models.User, error) { return s.admins, s.err }

type recordingSender struct {
	mu   sync.Mutex
	sent map[int64][]string
	err  error
	done chan struct{}
}

func newRecordingSender(expect int) *recordingSender {
	return &recordingSender{sent: make(map[int64][]string), done: make(chan struct{}, expect)}
}

func (s *recordingSender) SendMessage(chatID int64, text string) error {
	s.mu.Lock()
	s.sent[chatID] = append(s.sent[chatID], text)
	s.mu.Unlock()
	s.done <- struct{}{}
	return s.err
}

func (s *recordingSender) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for deliveries")
		}
	}
}

func TestFanOutToAllAdmins(t *testing.T) {
	admins := &stubAdmins{admins: []models.User{{TelegramID: 1}, {TelegramID: 2}}}
	sender := newRecordingSender(2)
	w := NewNotifyWorker(admins, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	w.Enqueue("🛒 Новый заказ #1")
	sender.wait(t, 2)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Equal(t, []string{"🛒 Новый заказ #1"}, sender.sent[1])
	assert.Equal(t, []string{"🛒 Новый заказ #1"}, sender.sent[2])
}

func TestDeliveryFailureDoesNotStopFanOut(t *testing.T) {
	admins := &stubAdmins{admins: []models.User{{TelegramID: 1}, {TelegramID: 2}}}
	sender := newRecordingSender(2)
	sender.err = errors.New("blocked by user")
	w := NewNotifyWorker(admins, sender)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	w.Enqueue("текст")
	sender.wait(t, 2)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.sent, 2, "both recipients attempted despite errors")
}

func TestEnqueueNeverBlocks(t *testing.T) {
	// No running worker drains the queue; enqueueing past capacity must
	// still return immediately.
	w := NewNotifyWorker(&stubAdmins{}, newRecordingSender(0))

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			w.Enqueue("переполнение")
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	w := NewNotifyWorker(&stubAdmins{}, newRecordingSender(0))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
