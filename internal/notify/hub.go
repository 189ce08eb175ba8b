// Package notify fans out collection change events to in-process subscribers.
package notify

import (
	"context"
	"sync"

	"github.com/ArowuTest/lasto-station-backend/internal/models"
	"go.uber.org/zap"
)

const defaultBuffer = 16

// Notifier publishes change events and hands out subscriptions.
type Notifier interface {
	Publish(ev models.ChangeEvent)
	Subscribe(ctx context.Context, collections ...string) *Subscription
}

// Hub is the central change-notification point. A slow subscriber drops
// events instead of blocking writers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	logger *zap.Logger
}

var _ Notifier = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscription receives events for the collections it was opened with, or
// for every collection when none were given.
type Subscription struct {
	C <-chan models.ChangeEvent

	ch          chan models.ChangeEvent
	done        chan struct{}
	collections map[string]struct{}
	hub         *Hub
	once        sync.Once
}

// Subscribe registers a subscription. It is released by Close or when ctx
// is done, whichever comes first.
func (h *Hub) Subscribe(ctx context.Context, collections ...string) *Subscription {
	ch := make(chan models.ChangeEvent, defaultBuffer)
	sub := &Subscription{C: ch, ch: ch, done: make(chan struct{}), hub: h}
	if len(collections) > 0 {
		sub.collections = make(map[string]struct{}, len(collections))
		for _, c := range collections {
			sub.collections[c] = struct{}{}
		}
	}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("subscription opened", zap.Strings("collections", collections))

	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	return sub
}

// Publish delivers ev to every interested subscriber.
func (h *Hub) Publish(ev models.ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if !sub.wants(ev.Collection) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			h.logger.Warn("dropping change event for slow subscriber",
				zap.String("collection", ev.Collection),
				zap.String("operation", ev.Operation))
		}
	}
}

// Len reports the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unregisters the subscription and closes C. It is safe to call more
// than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		close(s.ch)
		s.hub.mu.Unlock()
		close(s.done)
	})
}

func (s *Subscription) wants(collection string) bool {
	if s.collections == nil {
		return true
	}
	_, ok := s.collections[collection]
	return ok
}

// SubscribeOnly wraps a hub so that Publish is a no-op. It is used when
// events come from the database change stream rather than from local writes.
func SubscribeOnly(h *Hub) Notifier {
	return subscribeOnly{h}
}

type subscribeOnly struct{ *Hub }

func (subscribeOnly) Publish(models.ChangeEvent) {}
