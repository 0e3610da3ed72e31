package remote

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrConnectFailed is returned when the SSH connection cannot be
	// established.
	ErrConnectFailed = errors.New("connection failed")

	// ErrCommandFailed is returned when a remote command exits non-zero.
	ErrCommandFailed = errors.New("remote command failed")

	// ErrTimeout is returned when a remote command exceeds its timeout.
	ErrTimeout = errors.New("remote command timed out")

	// ErrUnknownSubsystem is returned for a reload of an unknown subsystem.
	ErrUnknownSubsystem = errors.New("unknown subsystem")
)

// StepError wraps a failed remote primitive with its operation, target and
// any diagnostic output the host produced.
type StepError struct {
	Op     string // e.g., "WriteFile"
	Target string // path or unit name
	Output string // combined remote output, may be empty
	Err    error
}

func (e *StepError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s %s: %v: %s", e.Op, e.Target, e.Err, e.Output)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError creates a new StepError.
func NewStepError(op, target, output string, err error) *StepError {
	return &StepError{Op: op, Target: target, Output: output, Err: err}
}
