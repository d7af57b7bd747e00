package pss

import "fmt"

// ClockFormatError reports a display clock that does not match M:SS.
type ClockFormatError struct {
	Value string
}

func (e *ClockFormatError) Error() string {
	return fmt.Sprintf("invalid clock value %q", e.Value)
}
