package udp

import "github.com/ringcast/ringcast/pkg/logger"

// Option applies a configuration option to the Listener.
type Option func(*Listener)

// WithChannelBuffer sets the event channel capacity.
func WithChannelBuffer(size int) Option {
	return func(l *Listener) {
		if size > 0 {
			l.channelBuffer = size
		}
	}
}

// WithLogger sets the logger used by the listener.
func WithLogger(log logger.Logger) Option {
	return func(l *Listener) {
		if log != nil {
			l.log = log
		}
	}
}
