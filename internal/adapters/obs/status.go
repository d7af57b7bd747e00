package obs

// Status represents the connection lifecycle of a client.
type Status int

// Connection statuses.
const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusAuthenticating
	StatusAuthenticated
	StatusError
)

// String returns the human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}
