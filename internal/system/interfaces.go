// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"context"
	"net"
	"strconv"
)

// Result holds the outcome of a subprocess invocation. A non-zero exit
// code is reported here, not as an error: Run only errors when the
// process could not be started at all.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Run executes a command with the given extra environment and
	// captures its output streams separately.
	Run(ctx context.Context, env []string, name string, args ...string) (*Result, error)
}

// PortProber abstracts OS-level port availability checks.
type PortProber interface {
	// Free reports whether the port can currently be bound on localhost.
	Free(port int) bool
}

// Default instances using real OS operations.
var (
	defaultExecutor CommandExecutor = &osExecutor{}
	defaultProber   PortProber      = &tcpProber{}
)

// DefaultExecutor returns the default CommandExecutor implementation.
func DefaultExecutor() CommandExecutor {
	return defaultExecutor
}

// DefaultProber returns the default PortProber implementation.
func DefaultProber() PortProber {
	return defaultProber
}

// tcpProber implements PortProber with a live TCP bind test.
type tcpProber struct{}

func (p *tcpProber) Free(port int) bool {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	_ = l.Close()
	return true
}
