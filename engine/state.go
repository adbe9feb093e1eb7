package engine

// State is an engine's lifecycle state.
type State int32

const (
	// StateConstructed: canvas bound and systems built, no frames yet.
	StateConstructed State = iota
	// StateRunning: the scheduler is delivering frames.
	StateRunning
	// StateStopped: frames are no longer scheduled. Start resumes unless
	// the engine was destroyed.
	StateStopped
)

// String returns the lowercase state name used in logs.
func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}
