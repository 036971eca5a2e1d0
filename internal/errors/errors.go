package errors

import (
	"errors"
	"fmt"
)

// Exit codes for devsess
const (
	ExitSuccess        = 0
	ExitGeneralError   = 1
	ExitNotFound       = 2
	ExitExhaustedRange = 3
	ExitLockTimeout    = 4
	ExitCorruptState   = 5
	ExitOrchestration  = 6
	ExitConfigError    = 7
)

// SessionError is the base error type for devsess
type SessionError struct {
	Code    int
	Message string
	Cause   error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *SessionError) ExitCode() int {
	return e.Code
}

// New creates a new SessionError
func New(code int, message string) *SessionError {
	return &SessionError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a SessionError
func Wrap(code int, message string, cause error) *SessionError {
	return &SessionError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// SessionNotFound returns an error for an unknown session id
func SessionNotFound(id string) *SessionError {
	return New(ExitNotFound, fmt.Sprintf("session not found: %s", id))
}

// ExhaustedRange returns an error for a port range with no free port left
// for the named service.
func ExhaustedRange(service string, from, to int) *SessionError {
	return New(ExitExhaustedRange,
		fmt.Sprintf("no free port in range %d-%d for service %s", from, to, service))
}

// LockTimeout returns an error for a lock that could not be acquired in time
func LockTimeout(path string, cause error) *SessionError {
	return Wrap(ExitLockTimeout, fmt.Sprintf("timed out waiting for lock %s", path), cause)
}

// CorruptState returns an error for unparseable or invalid persisted state.
// Corrupt state is never repaired automatically; it is surfaced for manual
// intervention so another process's live allocations are not discarded.
func CorruptState(path string, cause error) *SessionError {
	return Wrap(ExitCorruptState, fmt.Sprintf("allocation state %s is corrupt", path), cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *SessionError {
	return Wrap(ExitConfigError, message, cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *SessionError {
	return New(ExitGeneralError, message)
}

// OrchestrationError reports a failed container-orchestration invocation.
// It carries the tool's exit code and captured stderr for diagnosis.
type OrchestrationError struct {
	Op       string // "up", "down", ...
	ToolExit int
	Stderr   string
}

func (e *OrchestrationError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("compose %s failed (exit %d): %s", e.Op, e.ToolExit, e.Stderr)
	}
	return fmt.Sprintf("compose %s failed (exit %d)", e.Op, e.ToolExit)
}

// ExitCode returns the exit code for this error
func (e *OrchestrationError) ExitCode() int {
	return ExitOrchestration
}

// Orchestration returns an error for a failed orchestration tool invocation
func Orchestration(op string, toolExit int, stderr string) *OrchestrationError {
	return &OrchestrationError{Op: op, ToolExit: toolExit, Stderr: stderr}
}

// exitCoder is implemented by errors that map to a process exit code.
type exitCoder interface {
	ExitCode() int
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
