package ports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/driftworks/devsess/internal/errors"
)

// StateVersion is the schema version written to the allocation state file.
const StateVersion = 1

// Allocation is a single service-name-to-port binding owned by a session.
type Allocation struct {
	Port        int       `json:"port"`
	Service     string    `json:"service"`
	SessionID   string    `json:"sessionId"`
	AllocatedAt time.Time `json:"allocatedAt"`
}

// State is the durable mapping of all active allocations on the host,
// keyed by decimal port number. It is the single source of truth for
// "is port P free" and is only ever mutated while holding the
// cross-process lock.
type State struct {
	Version     int                   `json:"version"`
	Allocations map[string]Allocation `json:"allocations"`
}

// NewState returns an empty allocation state at the current version.
func NewState() *State {
	return &State{
		Version:     StateVersion,
		Allocations: make(map[string]Allocation),
	}
}

// Has reports whether the port is currently allocated.
func (s *State) Has(port int) bool {
	_, ok := s.Allocations[strconv.Itoa(port)]
	return ok
}

// Add records an allocation, replacing any prior entry for the port.
func (s *State) Add(a Allocation) {
	s.Allocations[strconv.Itoa(a.Port)] = a
}

// RemoveSession drops all allocations owned by the session and returns them.
func (s *State) RemoveSession(sessionID string) []Allocation {
	var removed []Allocation
	for key, a := range s.Allocations {
		if a.SessionID == sessionID {
			removed = append(removed, a)
			delete(s.Allocations, key)
		}
	}
	return removed
}

// BySession returns all allocations owned by the session.
func (s *State) BySession(sessionID string) []Allocation {
	var out []Allocation
	for _, a := range s.Allocations {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out
}

// validate checks structural integrity of loaded state.
func (s *State) validate() error {
	if s.Version != StateVersion {
		return fmt.Errorf("unsupported state version %d (want %d)", s.Version, StateVersion)
	}
	for key, a := range s.Allocations {
		port, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("allocation key %q is not a port number", key)
		}
		if port != a.Port {
			return fmt.Errorf("allocation key %q does not match port %d", key, a.Port)
		}
		if a.Port < 1 || a.Port > 65535 {
			return fmt.Errorf("allocation port %d out of bounds", a.Port)
		}
		if a.Service == "" {
			return fmt.Errorf("allocation for port %d has no service name", a.Port)
		}
		if a.SessionID == "" {
			return fmt.Errorf("allocation for port %d has no session id", a.Port)
		}
	}
	return nil
}

// loadState reads and validates the state file. A missing or empty file
// yields a fresh empty state; anything unparseable or structurally
// invalid is a corrupt-state error and is never repaired here.
func loadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, errors.Wrap(errors.ExitGeneralError, "failed to read allocation state", err)
	}
	if len(data) == 0 {
		return NewState(), nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.CorruptState(path, err)
	}
	if state.Allocations == nil {
		state.Allocations = make(map[string]Allocation)
	}
	if err := state.validate(); err != nil {
		return nil, errors.CorruptState(path, err)
	}

	return &state, nil
}

// saveState writes the state file atomically: marshal to a temp file in
// the same directory, sync, then rename over the old file. A crash mid
// write leaves the prior state intact.
func saveState(path string, state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal allocation state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".allocations-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write allocation state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync allocation state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close allocation state: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace allocation state: %w", err)
	}

	return nil
}
