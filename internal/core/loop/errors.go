package loop

import "errors"

var (
	ErrAlreadyRunning = errors.New("frame loop is already running")
	ErrNotRunning     = errors.New("frame loop is not running")
	ErrNoRegistry     = errors.New("session has no registry")
	ErrBadThreshold   = errors.New("proximity threshold must be positive")
	ErrFocusPresent   = errors.New("session already has a focus")
)
