package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// wrapKind tags an error kind with the failing operation and a detail line.
func wrapKind(op string, kind error, detail string) error {
	return fmt.Errorf("%s: %w: %s", op, kind, detail)
}
