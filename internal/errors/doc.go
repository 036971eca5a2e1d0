// Package errors provides typed errors with exit codes for devsess.
//
// # Error Types
//
// SessionError is the base error type that wraps an error with an exit code:
//
//	type SessionError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// OrchestrationError additionally carries the orchestration tool's own exit
// code and captured stderr.
//
// # Exit Codes
//
// Defined exit codes for different error categories:
//
//	ExitSuccess        = 0  // Success
//	ExitGeneralError   = 1  // General/unknown errors
//	ExitNotFound       = 2  // Session does not exist
//	ExitExhaustedRange = 3  // No free port in the configured range
//	ExitLockTimeout    = 4  // Cross-process lock not acquired in time
//	ExitCorruptState   = 5  // Persisted allocation state failed validation
//	ExitOrchestration  = 6  // Container orchestration tool failed
//	ExitConfigError    = 7  // Configuration error
//
// # Error Constructors
//
// Use the provided constructors for consistent error creation:
//
//	errors.SessionNotFound("4f1c2ab0")
//	errors.ExhaustedRange("graph", 30000, 40000)
//	errors.LockTimeout(path, err)
//	errors.Orchestration("up", 1, stderr)
//
// # Extracting Exit Codes
//
// Use GetExitCode to extract the exit code from an error chain:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
