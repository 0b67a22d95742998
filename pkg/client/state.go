package client

// State is the state of a measurement session.
type State int

const (
	// StateIdle is the state of a Client that has not run yet.
	StateIdle State = iota
	// StateConnecting means the connection is being established.
	StateConnecting
	// StateRunning means probes are being sent and echoes collected.
	StateRunning
	// StateDraining means the probe loops are being stopped.
	StateDraining
	// StateReporting means the final summary is being built.
	StateReporting
	// StateClosed is the terminal state.
	StateClosed
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateConnecting: "connecting",
	StateRunning:    "running",
	StateDraining:   "draining",
	StateReporting:  "reporting",
	StateClosed:     "closed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
