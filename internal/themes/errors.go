package themes

import "errors"

// Sentinel errors for the themes package.
var (
	// ErrAlreadyRunning is returned when a run is requested while another is active.
	ErrAlreadyRunning = errors.New("theme run already in progress")

	// ErrInvalidSettings is returned when settings fail validation. The run never starts.
	ErrInvalidSettings = errors.New("invalid theme settings")

	// ErrOrchestration wraps failures of the run itself, as opposed to per-series failures.
	ErrOrchestration = errors.New("theme run failed")
)
