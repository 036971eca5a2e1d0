// Package compose drives the external container-orchestration tool for
// one session at a time.
//
// Every invocation is scoped by the session's unique project name and
// its generated env and stack files. The orchestrator shells out to
// the configured binary (docker by default) through the system
// executor seam, so the up/down sequencing is unit-testable without
// spawning processes.
//
// Failures carry the tool's exit code and captured stderr. Up does not
// retry; Down treats "nothing running" as success.
package compose
