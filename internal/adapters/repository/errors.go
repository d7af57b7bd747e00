package repository

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrNotFound = errors.New("record not found")
)
