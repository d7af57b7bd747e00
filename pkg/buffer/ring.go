// Package buffer provides a thread-safe bounded ring buffer that drops the
// oldest item on overflow. It backs per-subscriber queues where a slow
// consumer must never stall the producer.
package buffer

import "sync"

// Option applies a configuration option to the ring.
type Option[T any] func(*Ring[T])

// WithDropCallback registers a callback invoked with each item dropped on
// overflow or Clear. The callback runs outside the ring's lock.
func WithDropCallback[T any](fn func(T)) Option[T] {
	return func(r *Ring[T]) {
		r.dropCallback = fn
	}
}

// Ring is a fixed-capacity FIFO that overwrites the oldest item when full.
type Ring[T any] struct {
	mu           sync.RWMutex
	items        []T
	capacity     int
	size         int
	head         int // next write position
	tail         int // next read position
	dropped      uint64
	dropCallback func(T)
}

// New creates a ring with the given capacity. Capacities below one are
// raised to one.
func New[T any](capacity int, opts ...Option[T]) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}

	r := &Ring[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Write adds an item, evicting the oldest one when the ring is full.
// It reports whether an item was dropped to make room.
func (r *Ring[T]) Write(item T) bool {
	r.mu.Lock()

	var droppedItem T
	dropped := false
	if r.size == r.capacity {
		droppedItem = r.items[r.tail]
		r.tail = (r.tail + 1) % r.capacity
		r.size--
		r.dropped++
		dropped = true
	}

	r.items[r.head] = item
	r.head = (r.head + 1) % r.capacity
	r.size++
	cb := r.dropCallback
	r.mu.Unlock()

	if dropped && cb != nil {
		cb(droppedItem)
	}
	return dropped
}

// Read removes and returns the oldest item.
func (r *Ring[T]) Read() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.size == 0 {
		return zero, false
	}

	item := r.items[r.tail]
	r.items[r.tail] = zero // release for GC
	r.tail = (r.tail + 1) % r.capacity
	r.size--
	return item, true
}

// ReadBatch removes and returns up to max of the oldest items.
func (r *Ring[T]) ReadBatch(max int) []T {
	if max <= 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.size == 0 {
		return nil
	}

	n := max
	if n > r.size {
		n = r.size
	}

	var zero T
	result := make([]T, n)
	for i := 0; i < n; i++ {
		result[i] = r.items[r.tail]
		r.items[r.tail] = zero
		r.tail = (r.tail + 1) % r.capacity
		r.size--
	}
	return result
}

// Peek returns the oldest item without removing it.
func (r *Ring[T]) Peek() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var zero T
	if r.size == 0 {
		return zero, false
	}
	return r.items[r.tail], true
}

// Len returns the current number of items.
func (r *Ring[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return r.capacity
}

// Dropped returns the total number of items evicted on overflow.
func (r *Ring[T]) Dropped() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// Clear removes all items. Cleared items are reported to the drop callback.
func (r *Ring[T]) Clear() {
	r.mu.Lock()

	var cleared []T
	if r.dropCallback != nil && r.size > 0 {
		cleared = make([]T, r.size)
		for i := 0; i < r.size; i++ {
			cleared[i] = r.items[(r.tail+i)%r.capacity]
		}
	}

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.tail = 0
	r.size = 0
	cb := r.dropCallback
	r.mu.Unlock()

	if cb != nil {
		for _, item := range cleared {
			cb(item)
		}
	}
}
