package hub

import "github.com/ringcast/ringcast/pkg/logger"

// Option applies a configuration option to the Hub.
type Option func(*Hub)

// WithSubscriberBuffer sets the per-subscriber buffer capacity.
func WithSubscriberBuffer(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.bufferSize = size
		}
	}
}

// WithLogger sets the logger used by the hub.
func WithLogger(log logger.Logger) Option {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}
