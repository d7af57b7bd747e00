package correlate

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrSessionNotFound = errors.New("session not found")
)
