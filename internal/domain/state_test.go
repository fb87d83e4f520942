package domain

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateConnecting, "Connecting"},
		{StateHeadersSent, "HeadersSent"},
		{StateStreaming, "Streaming"},
		{StateFinalizing, "Finalizing"},
		{StateAwaitingResponse, "AwaitingResponse"},
		{StateClosed, "Closed"},
		{StateAborted, "Aborted"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{"connecting to headers sent", StateConnecting, StateHeadersSent, true},
		{"headers sent to streaming", StateHeadersSent, StateStreaming, true},
		{"streaming to finalizing", StateStreaming, StateFinalizing, true},
		{"finalizing to awaiting response", StateFinalizing, StateAwaitingResponse, true},
		{"awaiting response to closed", StateAwaitingResponse, StateClosed, true},
		{"connecting to aborted", StateConnecting, StateAborted, true},
		{"streaming to aborted", StateStreaming, StateAborted, true},
		{"awaiting response to aborted", StateAwaitingResponse, StateAborted, true},
		{"skip a state", StateConnecting, StateStreaming, false},
		{"go backwards", StateStreaming, StateHeadersSent, false},
		{"closed is terminal", StateClosed, StateAborted, false},
		{"aborted is terminal", StateAborted, StateClosed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
