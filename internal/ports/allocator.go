package ports

import (
	"time"

	"github.com/driftworks/devsess/internal/config"
	"github.com/driftworks/devsess/internal/errors"
	"github.com/driftworks/devsess/internal/lockfile"
	"github.com/driftworks/devsess/internal/logging"
	"github.com/driftworks/devsess/internal/system"
)

// Allocator reserves ports from a fixed range and records reservations
// in the shared allocation state file. Every state mutation runs inside
// the cross-process lock as a load, transform, atomic-write sequence.
type Allocator struct {
	statePath string
	lock      *lockfile.Lock
	prober    system.PortProber
	portRange config.PortRange
	now       func() time.Time
	lockOpts  []lockfile.Option
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithProber overrides the OS port availability probe.
func WithProber(p system.PortProber) Option {
	return func(a *Allocator) {
		a.prober = p
	}
}

// WithClock overrides the allocation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) {
		a.now = now
	}
}

// WithLockOptions passes options through to the underlying lock.
func WithLockOptions(lockOpts ...lockfile.Option) Option {
	return func(a *Allocator) {
		a.lockOpts = lockOpts
	}
}

// New creates an Allocator over the state layout in paths.
func New(paths *config.Paths, portRange config.PortRange, lockTimeout time.Duration, opts ...Option) *Allocator {
	a := &Allocator{
		statePath: paths.AllocationsFile,
		prober:    system.DefaultProber(),
		portRange: portRange,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.lock = lockfile.New(paths.LockFile, lockTimeout, a.lockOpts...)
	return a
}

// Allocate reserves one port per service for the session, all-or-nothing.
// For each service it picks the lowest port in range that is neither
// recorded in the state file nor currently bindable at the OS level. If
// any service cannot be satisfied, nothing is persisted.
func (a *Allocator) Allocate(sessionID string, services []string) (map[string]int, error) {
	if sessionID == "" {
		return nil, errors.ValidationError("session id is required")
	}
	if len(services) == 0 {
		return nil, errors.ValidationError("at least one service is required")
	}
	seen := make(map[string]bool, len(services))
	for _, svc := range services {
		if err := config.ValidateServiceName(svc); err != nil {
			return nil, errors.ValidationError(err.Error())
		}
		if seen[svc] {
			return nil, errors.ValidationError("duplicate service name: " + svc)
		}
		seen[svc] = true
	}

	assigned := make(map[string]int, len(services))

	err := a.withState(func(state *State) (bool, error) {
		taken := make(map[int]bool)
		next := a.portRange.From

		for _, svc := range services {
			port, ok := a.nextFree(state, taken, next)
			if !ok {
				// Nothing is persisted: the transform reports
				// no change and the prior state survives.
				return false, errors.ExhaustedRange(svc, a.portRange.From, a.portRange.To)
			}
			taken[port] = true
			next = port + 1
			assigned[svc] = port

			state.Add(Allocation{
				Port:        port,
				Service:     svc,
				SessionID:   sessionID,
				AllocatedAt: a.now().UTC(),
			})
		}

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	logging.Debug("allocated ports", "session", sessionID, "ports", assigned)
	return assigned, nil
}

// nextFree returns the lowest free port at or above from, or false when
// the range is exhausted. A port is free when it is absent from the
// recorded state, not picked earlier in this call, and passes the live
// bind probe. The probe guards against drift between bookkeeping and
// reality, such as an unmanaged process squatting on a port.
func (a *Allocator) nextFree(state *State, taken map[int]bool, from int) (int, bool) {
	for port := from; port <= a.portRange.To; port++ {
		if state.Has(port) || taken[port] {
			continue
		}
		if !a.prober.Free(port) {
			logging.Debug("port busy at OS level, skipping", "port", port)
			continue
		}
		return port, true
	}
	return 0, false
}

// Release removes all allocations owned by the session. Releasing a
// session with no allocations is a no-op success so cleanup is safe to
// retry.
func (a *Allocator) Release(sessionID string) error {
	if sessionID == "" {
		return errors.ValidationError("session id is required")
	}

	return a.withState(func(state *State) (bool, error) {
		removed := state.RemoveSession(sessionID)
		if len(removed) == 0 {
			return false, nil
		}
		logging.Debug("released ports", "session", sessionID, "count", len(removed))
		return true, nil
	})
}

// Reconcile drops allocations whose owning session no longer exists
// according to sessionExists, and returns the removed allocations. This
// self-heals state left behind by crashed or abandoned sessions.
func (a *Allocator) Reconcile(sessionExists func(sessionID string) bool) ([]Allocation, error) {
	var removed []Allocation

	err := a.withState(func(state *State) (bool, error) {
		orphaned := make(map[string]bool)
		for _, alloc := range state.Allocations {
			if _, checked := orphaned[alloc.SessionID]; !checked {
				orphaned[alloc.SessionID] = !sessionExists(alloc.SessionID)
			}
		}

		for id, isOrphan := range orphaned {
			if isOrphan {
				removed = append(removed, state.RemoveSession(id)...)
			}
		}

		return len(removed) > 0, nil
	})
	if err != nil {
		return nil, err
	}

	if len(removed) > 0 {
		logging.Debug("reconciled orphaned allocations", "count", len(removed))
	}
	return removed, nil
}

// Snapshot returns a copy of the current allocation state, loaded under
// the lock. Read-only; callers cannot mutate the persisted state
// through it.
func (a *Allocator) Snapshot() (*State, error) {
	var snapshot *State
	err := a.lock.WithLock(func() error {
		state, err := loadState(a.statePath)
		if err != nil {
			return err
		}
		snapshot = state
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// withState runs a transform over the persisted state inside the lock.
// The transform returns whether it changed the state; only changed
// state is written back, atomically. An error from the transform
// discards any in-memory mutation.
func (a *Allocator) withState(transform func(*State) (bool, error)) error {
	return a.lock.WithLock(func() error {
		state, err := loadState(a.statePath)
		if err != nil {
			return err
		}

		changed, err := transform(state)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		return saveState(a.statePath, state)
	})
}
