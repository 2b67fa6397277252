package broadcast

import (
	"context"
	"sync"

	"metalrates/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultSubscriberBuffer = 4

// Subscription receives every payload published after it was opened.
type Subscription struct {
	ID uuid.UUID
	C  <-chan domain.RatePayload

	ch   chan domain.RatePayload
	hub  *Hub
	once sync.Once
}

// Close detaches the subscription; it is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.unsubscribe(s) })
}

// Hub fans payloads out to in-process subscribers such as SSE streams. A
// subscriber whose buffer is full misses that update; Publish never blocks on it.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]*Subscription
	buffer int
}

func (h *Hub) Subscribe() *Subscription {
	ch := make(chan domain.RatePayload, h.buffer)
	s := &Subscription{ID: uuid.New(), C: ch, ch: ch, hub: h}

	h.mu.Lock()
	h.subs[s.ID] = s
	h.mu.Unlock()
	return s
}

func (h *Hub) unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s.ID]; ok {
		delete(h.subs, s.ID)
		close(s.ch)
	}
}

func (h *Hub) Publish(_ context.Context, payload domain.RatePayload) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, s := range h.subs {
		select {
		case s.ch <- payload:
		default:
			logrus.WithField("subscriber", id).Warn("Subscriber is slow, dropping rate update")
		}
	}
	return nil
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Hub{subs: make(map[uuid.UUID]*Subscription), buffer: buffer}
}
