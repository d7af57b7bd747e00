package orchestrator

// State is the recording lifecycle position.
type State int

// Orchestrator states.
const (
	StateIdle State = iota
	StatePreparing
	StateRecording
	StateStopping
	StateError
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
