package session

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/driftworks/devsess/internal/compose"
	"github.com/driftworks/devsess/internal/config"
	"github.com/driftworks/devsess/internal/errors"
	"github.com/driftworks/devsess/internal/logging"
	"github.com/driftworks/devsess/internal/ports"
	"github.com/driftworks/devsess/internal/stack"
)

// Manager orchestrates session creation, lookup and teardown over the
// port allocator, the session store and the compose orchestrator.
type Manager struct {
	cfg   *config.Config
	paths *config.Paths
	alloc *ports.Allocator
	store *Store
	orch  *compose.Orchestrator
}

// NewManager wires a Manager from its collaborators.
func NewManager(cfg *config.Config, paths *config.Paths, alloc *ports.Allocator, store *Store, orch *compose.Orchestrator) *Manager {
	return &Manager{
		cfg:   cfg,
		paths: paths,
		alloc: alloc,
		store: store,
		orch:  orch,
	}
}

// Store exposes the underlying session store.
func (m *Manager) Store() *Store {
	return m.store
}

// CreateOptions configures session creation.
type CreateOptions struct {
	// Services to allocate ports for. Empty means the configured
	// default service set.
	Services []string

	// Profile selects the stack profile handed to the orchestrator.
	Profile string

	// StartContainers starts the stack after the session is created.
	StartContainers bool
}

// Create mints a new session: identity, deterministic naming, port
// allocation, stack and env files, and the persisted record.
//
// Allocation or storage failure rolls back any reserved ports; no
// record survives a failed creation. A container-start failure does
// NOT unwind the session: the record is kept in the stopped state and
// returned alongside the error, since a created-but-unstarted session
// is a valid, inspectable state.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*Session, error) {
	services := opts.Services
	if len(services) == 0 {
		services = m.cfg.DefaultServices
	}
	profile := opts.Profile
	if profile == "" {
		profile = m.cfg.DefaultProfile
	}
	if !stack.ValidProfile(profile) {
		return nil, errors.ValidationError("unknown profile: " + profile)
	}

	if err := m.paths.EnsureDirs(); err != nil {
		return nil, errors.ConfigError("failed to prepare state directory", err)
	}

	id := NewID()
	short := ShortID(id)
	logging.Debug("creating session", "id", id, "short", short, "services", services)

	assigned, err := m.alloc.Allocate(id, services)
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:          id,
		ShortID:     short,
		ProjectName: ProjectName(short),
		CreatedAt:   time.Now().UTC(),
		Status:      StatusStopped,
		Profile:     profile,
		Ports:       assigned,
		EnvPath:     filepath.Join(m.paths.EnvDir, short+".env"),
		StackPath:   filepath.Join(m.paths.StacksDir, short+".compose.yaml"),
	}

	// Everything after allocation compensates on failure so a failed
	// creation never leaks ports.
	if err := stack.Write(s.StackPath, s.Services()); err != nil {
		m.rollback(s)
		return nil, err
	}
	if err := WriteEnvFile(s.EnvPath, s); err != nil {
		m.rollback(s)
		return nil, err
	}
	if err := m.store.Save(s); err != nil {
		m.rollback(s)
		return nil, err
	}

	if !opts.StartContainers {
		return s, nil
	}

	if err := m.orch.Up(ctx, m.project(s)); err != nil {
		// The session stays: record kept, ports held, status stopped.
		return s, err
	}

	s.Status = StatusActive
	if err := m.store.Save(s); err != nil {
		return s, err
	}

	return s, nil
}

// rollback releases a partially-created session's resources.
func (m *Manager) rollback(s *Session) {
	if err := m.alloc.Release(s.ID); err != nil {
		logging.Warn("failed to release ports during rollback", "session", s.ID, "error", err)
	}
	m.removeDerivedFiles(s)
	if err := m.store.Delete(s.ID); err != nil {
		logging.Warn("failed to delete record during rollback", "session", s.ID, "error", err)
	}
}

// removeDerivedFiles deletes the generated env and stack files.
func (m *Manager) removeDerivedFiles(s *Session) {
	for _, path := range []string{s.EnvPath, s.StackPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove generated file", "path", path, "error", err)
		}
	}
}

// project builds the orchestration scope for a session.
func (m *Manager) project(s *Session) compose.Project {
	return compose.Project{
		Name:      s.ProjectName,
		EnvFile:   s.EnvPath,
		StackFile: s.StackPath,
		Profile:   s.Profile,
	}
}

// List returns all persisted sessions. Pure read, no side effects.
func (m *Manager) List() ([]*Session, error) {
	return m.store.List()
}

// Status returns the session for a full or short id, or a not-found
// error.
func (m *Manager) Status(id string) (*Session, error) {
	s, err := m.resolve(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errors.SessionNotFound(id)
	}
	return s, nil
}

// Running reports whether the session's containers are up.
func (m *Manager) Running(ctx context.Context, s *Session) (bool, error) {
	return m.orch.Running(ctx, m.project(s))
}

// Cleanup tears a session down best-effort, in order: containers, then
// ports, then the record. A Down failure is downgraded to a warning so
// port release still proceeds; orphaned containers are recoverable by
// inspection, a leaked port reservation is not. Cleanup of an unknown
// id, or a second Cleanup of the same id, succeeds and converges to
// "ports free, record gone".
func (m *Manager) Cleanup(ctx context.Context, id string) error {
	s, err := m.resolve(id)
	if err != nil {
		return err
	}

	fullID := id
	if s != nil {
		fullID = s.ID
	} else if _, err := uuid.Parse(id); err != nil {
		// No record and not a full id: nothing addressable remains.
		logging.Debug("cleanup of unknown session", "id", id)
		return nil
	}

	if s != nil {
		if err := m.orch.Down(ctx, m.project(s)); err != nil {
			logging.Warn("compose down failed, continuing cleanup",
				"project", s.ProjectName, "error", err)
		}
		m.removeDerivedFiles(s)
	}

	if err := m.alloc.Release(fullID); err != nil {
		return err
	}

	return m.store.Delete(fullID)
}

// Reconcile drops port allocations whose session record no longer
// exists and returns them. Runs only on explicit operator request.
func (m *Manager) Reconcile() ([]ports.Allocation, error) {
	return m.alloc.Reconcile(m.store.Exists)
}

// Orphans previews what Reconcile would remove, without mutating state.
func (m *Manager) Orphans() ([]ports.Allocation, error) {
	state, err := m.alloc.Snapshot()
	if err != nil {
		return nil, err
	}

	var orphans []ports.Allocation
	for _, a := range state.Allocations {
		if !m.store.Exists(a.SessionID) {
			orphans = append(orphans, a)
		}
	}
	return orphans, nil
}

// resolve finds a session by full id or short id. Returns nil without
// error when no record matches.
func (m *Manager) resolve(id string) (*Session, error) {
	if id == "" {
		return nil, errors.ValidationError("session id is required")
	}

	if s, ok, err := m.store.Get(id); err == nil && ok {
		return s, nil
	}

	sessions, err := m.store.List()
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		if s.ShortID == id {
			return s, nil
		}
	}

	return nil, nil
}
