// Package lockfile provides cross-process mutual exclusion via an
// advisory file lock.
//
// The lock protects the shared allocation state file against concurrent
// devsess processes. Acquisition polls with a bounded retry interval up
// to a hard timeout rather than blocking indefinitely; the kernel drops
// the lock when a crashed holder's descriptor closes, so a dead process
// can never wedge its peers.
package lockfile

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofrs/flock"

	"github.com/driftworks/devsess/internal/errors"
	"github.com/driftworks/devsess/internal/logging"
)

// DefaultRetryDelay is the poll interval between lock attempts.
const DefaultRetryDelay = 50 * time.Millisecond

// Lock is a cross-process advisory lock on a single file path.
type Lock struct {
	path       string
	timeout    time.Duration
	retryDelay time.Duration
}

// Option configures a Lock.
type Option func(*Lock)

// WithRetryDelay overrides the poll interval between acquisition attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(l *Lock) {
		l.retryDelay = d
	}
}

// New creates a Lock for the given path. The lock file is created on
// first acquisition if it does not exist.
func New(path string, timeout time.Duration, opts ...Option) *Lock {
	l := &Lock{
		path:       path,
		timeout:    timeout,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// WithLock runs fn while holding the exclusive lock. The lock is
// released on every exit path, including a panic inside fn. Returns a
// lock-timeout error if the lock cannot be acquired within the
// configured timeout.
func (l *Lock) WithLock(fn func() error) error {
	fl := flock.New(l.path)

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	start := time.Now()
	locked, err := fl.TryLockContext(ctx, l.retryDelay)
	if err != nil && !stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ExitGeneralError, "failed to open lock file "+l.path, err)
	}
	if !locked {
		return errors.LockTimeout(l.path, err)
	}
	logging.Debug("acquired allocation lock", "path", l.path, "wait", time.Since(start))

	defer func() {
		if err := fl.Unlock(); err != nil {
			logging.Warn("failed to release allocation lock", "path", l.path, "error", err)
		}
	}()

	return fn()
}
