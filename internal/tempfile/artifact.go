package tempfile

import "sync"

// State is the lifecycle position of an intermediate artifact.
type State string

const (
	StateCreated   State = "created"
	StatePersisted State = "persisted"
	StateDeleted   State = "deleted"
)

// Artifact is an intermediate file owned by one conversion job.
type Artifact struct {
	Path  string
	JobID string

	mu     sync.Mutex
	state  State
	remove func(string) error
}

// State reports the current lifecycle state.
func (a *Artifact) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Release deletes the artifact. Only the first call touches the filesystem;
// later calls return nil. The artifact is marked deleted even when removal
// fails so the error is reported exactly once.
func (a *Artifact) Release() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StatePersisted {
		return nil
	}
	a.state = StateDeleted
	return a.remove(a.Path)
}
