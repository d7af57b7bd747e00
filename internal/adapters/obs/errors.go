package obs

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrConnectionRefused = errors.New("connection refused")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrVersionMismatch   = errors.New("protocol version mismatch")
	ErrRequestTimeout    = errors.New("request timed out")
	ErrNotConnected      = errors.New("not connected")
	ErrClientNotFound    = errors.New("client not found")
)

// RequestError is returned when the tool rejects a request.
type RequestError struct {
	RequestType string
	Code        int
	Comment     string
}

func (e *RequestError) Error() string {
	if e.Comment == "" {
		return fmt.Sprintf("%s failed with code %d", e.RequestType, e.Code)
	}
	return fmt.Sprintf("%s failed with code %d: %s", e.RequestType, e.Code, e.Comment)
}
