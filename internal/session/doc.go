// Package session manages the lifecycle of development stack sessions.
//
// A session is one isolated instance of the service stack: a random
// UUID identity, a deterministic 8-character short id, a compose
// project name derived from the short id, a per-service port
// assignment, and two generated files (env file, stack file) handed to
// the orchestration tool.
//
// The Store persists one JSON record per session with atomic
// write-then-rename semantics. The Manager composes the port
// allocator, the store and the compose orchestrator: creation is
// transactional (a failed creation releases its ports and leaves no
// record), teardown is idempotent and best-effort ordered (containers,
// then ports, then the record).
package session
