package domain

// State is a stage of a streaming upload session.
type State int

const (
	StateConnecting State = iota
	StateHeadersSent
	StateStreaming
	StateFinalizing
	StateAwaitingResponse
	StateClosed
	StateAborted
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateHeadersSent:
		return "HeadersSent"
	case StateStreaming:
		return "Streaming"
	case StateFinalizing:
		return "Finalizing"
	case StateAwaitingResponse:
		return "AwaitingResponse"
	case StateClosed:
		return "Closed"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is possible from s.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateAborted
}

// CanTransitionTo reports whether the session may move from s to next.
// Aborted is reachable from every non-terminal state.
func (s State) CanTransitionTo(next State) bool {
	if s.Terminal() {
		return false
	}
	if next == StateAborted {
		return true
	}
	return next == s+1
}
