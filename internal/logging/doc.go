// Package logging provides logging utilities for devsess.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("allocating ports", "session", id, "services", services)
//	logging.Warn("compose down failed", "project", name, "error", err)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Creating session...")
//	logging.UserSuccess("Session %s created", shortID)
//	logging.UserWarning("containers left running for %s", project)
//	logging.UserError("Failed to create session: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
package logging
