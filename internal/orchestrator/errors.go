package orchestrator

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrReplayNotFound = errors.New("replay not available before deadline")
	ErrNotRecording   = errors.New("no recording in progress")
)
