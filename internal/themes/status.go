package themes

import (
	"sync"
	"time"
)

// RunState is the lifecycle state of the engine.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateCancelled RunState = "cancelled"
	StateFailed    RunState = "failed"
)

// validTransitions defines allowed state transitions.
// Terminal states are only left by starting the next run.
var validTransitions = map[RunState][]RunState{
	StateIdle:      {StateRunning},
	StateRunning:   {StateCompleted, StateCancelled, StateFailed},
	StateCompleted: {StateRunning},
	StateCancelled: {StateRunning},
	StateFailed:    {StateRunning},
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s RunState) CanTransitionTo(target RunState) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true for the states a run ends in.
func (s RunState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// StatusSnapshot is a point-in-time copy of RunStatus.
type StatusSnapshot struct {
	IsRunning bool
	Progress  float64 // percent, 0-100
	LastRun   *time.Time
	RunID     string
	State     RunState
}

// RunStatus is the process-wide run state. Only the active run mutates it;
// Snapshot may be called from any goroutine.
type RunStatus struct {
	mu        sync.RWMutex
	state     RunState
	runID     string
	progress  float64
	processed int
	total     int
	lastRun   time.Time

	// restored by abort when a reserved run never starts
	prevState    RunState
	prevRunID    string
	prevProgress float64
}

// NewRunStatus returns an idle status that has never run.
func NewRunStatus() *RunStatus {
	return &RunStatus{state: StateIdle}
}

// Snapshot returns the current status.
func (s *RunStatus) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := StatusSnapshot{
		IsRunning: s.state == StateRunning,
		Progress:  s.progress,
		RunID:     s.runID,
		State:     s.state,
	}
	if !s.lastRun.IsZero() {
		t := s.lastRun
		snap.LastRun = &t
	}
	return snap
}

// tryBegin reserves the status for a new run. It returns false if a run is active.
func (s *RunStatus) tryBegin(runID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanTransitionTo(StateRunning) {
		return false
	}
	s.prevState, s.prevRunID, s.prevProgress = s.state, s.runID, s.progress
	s.state = StateRunning
	s.runID = runID
	s.progress = 0
	s.processed = 0
	s.total = 0
	return true
}

// abort releases a reservation made by tryBegin for a run that never started.
// LastRun is left untouched.
func (s *RunStatus) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return
	}
	s.state, s.runID, s.progress = s.prevState, s.prevRunID, s.prevProgress
}

// setTotal records how many candidates the run will process.
// An empty run is complete by definition.
func (s *RunStatus) setTotal(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = n
	s.processed = 0
	if n == 0 {
		s.progress = 100
	}
}

// itemDone counts one terminal outcome and returns the new progress.
func (s *RunStatus) itemDone() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processed < s.total {
		s.processed++
		s.progress = float64(s.processed) / float64(s.total) * 100
	}
	return s.progress
}

// finish ends the active run. Progress keeps its last reported value.
func (s *RunStatus) finish(state RunState, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanTransitionTo(state) {
		return
	}
	s.state = state
	s.lastRun = at
}
