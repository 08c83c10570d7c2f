package runner

import "time"

// State is the lifecycle position of one invocation.
type State int

const (
	// StatePending means the invocation has not started.
	StatePending State = iota
	// StateRunning means the process has been spawned.
	StateRunning
	// StateSucceeded means the process exited with status 0.
	StateSucceeded
	// StateFailed means the invocation ended with an error.
	StateFailed
)

var stateNames = map[State]string{
	StatePending:   "pending",
	StateRunning:   "running",
	StateSucceeded: "succeeded",
	StateFailed:    "failed",
}

// String returns the lowercase state name.
func (state State) String() string {
	if name, known := stateNames[state]; known {
		return name
	}
	return "unknown"
}

// Outcome summarizes one finished invocation.
type Outcome struct {
	RepositoryName string
	Directory      string
	State          State
	ExitCode       int
	TranscriptPath string
	StartedAt      time.Time
	Duration       time.Duration
	Err            error
}
