package notify

import (
	"context"
	"fmt"
	"sync"

	"letterbox/internal/lb"
)

// SentNotification is a notification recorded by MemoryNotifier.
type SentNotification struct {
	Recipients   []string
	Notification lb.Notification
}

// MemoryNotifier records notifications instead of delivering them.
// This implementation is safe for concurrent use.
type MemoryNotifier struct {
	mu   sync.Mutex
	sent []SentNotification
	err  error
}

func NewMemoryNotifier() *MemoryNotifier {
	return &MemoryNotifier{}
}

func (m *MemoryNotifier) Send(ctx context.Context, recipients []string, n lb.Notification) (*lb.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	m.sent = append(m.sent, SentNotification{
		Recipients:   append([]string(nil), recipients...),
		Notification: n,
	})
	return &lb.Delivery{
		ID:         fmt.Sprintf("memory-%d", len(m.sent)),
		Recipients: len(recipients),
	}, nil
}

// Sent returns a copy of everything sent so far.
func (m *MemoryNotifier) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentNotification(nil), m.sent...)
}

// FailWith makes every following Send return err. Pass nil to recover.
func (m *MemoryNotifier) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

var _ lb.Notifier = (*MemoryNotifier)(nil)
