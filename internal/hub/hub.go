// Package hub fans processed events out to the persistence gateway and any
// number of UI subscribers. Persistence is a synchronous call on the
// publishing path; subscribers are decoupled behind bounded drop-oldest
// buffers so a slow consumer can never stall ingestion.
package hub

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/ringcast/ringcast/internal/adapters/repository"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/buffer"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/ringcast/ringcast/pkg/metrics"
)

// Default hub configuration constants.
const (
	defaultSubscriberBuffer = 256
)

// Subscription is one UI consumer's view of the event stream. Events arrive
// on C in publish order; under backpressure the oldest pending events are
// dropped first.
type Subscription struct {
	C <-chan model.Event

	id     string
	ring   *buffer.Ring[model.Event]
	notify chan struct{}
	out    chan model.Event
	stop   chan struct{}
	once   sync.Once
}

// Hub broadcasts events and hands each one to the store exactly once.
type Hub struct {
	store      repository.Store
	bufferSize int
	log        logger.Logger

	mu   sync.RWMutex
	subs map[string]*Subscription
}

// New creates a hub. A nil store disables persistence.
func New(store repository.Store, opts ...Option) *Hub {
	h := &Hub{
		store:      store,
		bufferSize: defaultSubscriberBuffer,
		subs:       make(map[string]*Subscription),
	}

	// Apply all options
	for _, opt := range opts {
		opt(h)
	}

	if h.log == nil {
		h.log = logger.Get().Named("hub")
	}
	return h
}

// Publish persists the event and delivers it to every subscriber. The
// publishing goroutine never blocks on a subscriber.
func (h *Hub) Publish(ctx context.Context, ev model.Event, matchNumber, day string) {
	if h.store != nil {
		if err := h.store.SaveEvent(ctx, ev, matchNumber, day); err != nil {
			// Persistence failures must not interrupt the event flow.
			h.log.Error(ctx, "persisting event failed",
				logger.String("event_id", ev.ID), logger.Error(err))
		}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if dropped := sub.ring.Write(ev); dropped {
			metrics.RecordBroadcastDropped()
		}
		metrics.RecordBroadcastDelivered()

		select {
		case sub.notify <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a new consumer and starts its delivery pump.
func (h *Hub) Subscribe() *Subscription {
	out := make(chan model.Event)
	sub := &Subscription{
		id:     uuid.NewString(),
		ring:   buffer.New[model.Event](h.bufferSize),
		notify: make(chan struct{}, 1),
		out:    out,
		stop:   make(chan struct{}),
	}
	sub.C = out

	h.mu.Lock()
	h.subs[sub.id] = sub
	count := len(h.subs)
	h.mu.Unlock()
	metrics.UpdateHubSubscribers(count)

	go sub.pump()
	return sub
}

// Unsubscribe removes the consumer and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	_, ok := h.subs[sub.id]
	delete(h.subs, sub.id)
	count := len(h.subs)
	h.mu.Unlock()

	if !ok {
		return
	}
	metrics.UpdateHubSubscribers(count)
	sub.close()
}

// Subscribers returns the current consumer count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close tears down every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.subs = make(map[string]*Subscription)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
	metrics.UpdateHubSubscribers(0)
}

func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.stop)
	})
}

// pump drains the ring into the consumer channel. The ring absorbs bursts,
// so blocking on the send here is fine.
func (s *Subscription) pump() {
	defer close(s.out)
	for {
		ev, ok := s.ring.Read()
		if !ok {
			select {
			case <-s.notify:
				continue
			case <-s.stop:
				return
			}
		}

		select {
		case s.out <- ev:
		case <-s.stop:
			return
		}
	}
}
