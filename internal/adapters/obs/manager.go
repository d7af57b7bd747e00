package obs

import (
	"context"
	"sync"

	"github.com/ringcast/ringcast/pkg/logger"
)

// Manager holds independent named clients. Connections fail and recover
// independently; one tool instance going away never affects the others.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     logger.Logger
}

// ManagerOption applies a configuration option to the Manager.
type ManagerOption func(*Manager)

// WithManagerLogger sets the logger used by the manager.
func WithManagerLogger(log logger.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates an empty client manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		clients: make(map[string]*Client),
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	if m.log == nil {
		m.log = logger.Get().Named("obs")
	}
	return m
}

// Add registers a client under its connection name, replacing any previous
// client with the same name.
func (m *Manager) Add(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.Name()] = client
}

// Client returns the client registered under name.
func (m *Manager) Client(name string) (*Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clients[name]
	if !ok {
		return nil, ErrClientNotFound
	}
	return c, nil
}

// Names returns the registered connection names.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	return names
}

// ConnectAll dials every registered client. Failures are logged and do not
// stop the remaining connections; the first error is returned.
func (m *Manager) ConnectAll(ctx context.Context) error {
	m.mu.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.RUnlock()

	var firstErr error
	for _, c := range clients {
		if err := c.Connect(ctx); err != nil {
			m.log.Warn(ctx, "connection failed",
				logger.String("connection", c.Name()), logger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// DisconnectAll closes every registered client's connection.
func (m *Manager) DisconnectAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.clients {
		_ = c.Disconnect()
	}
}

// Statuses returns the status of every registered client by name.
func (m *Manager) Statuses() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	statuses := make(map[string]Status, len(m.clients))
	for name, c := range m.clients {
		statuses[name] = c.Status()
	}
	return statuses
}
