package obs

import (
	"time"

	"github.com/ringcast/ringcast/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithRequestTimeout sets how long a request waits for its response.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

// WithHandshakeTimeout bounds the dial and identification exchange.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.handshakeTimeout = timeout
		}
	}
}

// WithLogger sets the logger used by the client.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
