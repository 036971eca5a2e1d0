package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/driftworks/devsess/internal/logging"
)

// Store is the durable record of sessions: one JSON file per session
// under the sessions directory, keyed by session id.
type Store struct {
	dir string
}

// NewStore creates a Store over the given sessions directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// recordPath resolves the on-disk path for a session id, refusing ids
// that would escape the sessions directory.
func (st *Store) recordPath(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("session id is required")
	}
	if filepath.Base(id) != id {
		return "", fmt.Errorf("invalid session id %q", id)
	}
	path, err := securejoin.SecureJoin(st.dir, id+".json")
	if err != nil {
		return "", fmt.Errorf("invalid session id %q: %w", id, err)
	}
	return path, nil
}

// Save writes a session record, replacing any prior record with the
// same id. The write is atomic (temp file then rename) so a crash mid
// write never leaves a half-written record observable.
func (st *Store) Save(s *Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid session: %w", err)
	}

	if err := os.MkdirAll(st.dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	path, err := st.recordPath(s.ID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(st.dir, "."+s.ShortID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp record: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write session record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close session record: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace session record: %w", err)
	}

	return nil
}

// Get loads a session record by full id. A missing record is not an
// error; the second return value reports presence.
func (st *Store) Get(id string) (*Session, bool, error) {
	path, err := st.recordPath(id)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read session record: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, false, fmt.Errorf("failed to parse session record %s: %w", path, err)
	}

	return &s, true, nil
}

// Exists reports whether a record exists for the session id.
func (st *Store) Exists(id string) bool {
	path, err := st.recordPath(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// List returns all valid session records. A malformed record is
// skipped with a warning rather than failing the whole listing; the
// store optimizes for offline recoverability over all-or-nothing
// reads.
func (st *Store) List() ([]*Session, error) {
	entries, err := os.ReadDir(st.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessions []*Session
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		s, ok, err := st.Get(id)
		if err != nil || !ok {
			logging.Warn("skipping unreadable session record", "file", name, "error", err)
			continue
		}
		if err := s.Validate(); err != nil {
			logging.Warn("skipping invalid session record", "file", name, "error", err)
			continue
		}
		sessions = append(sessions, s)
	}

	return sessions, nil
}

// Delete removes a session record. Deleting a missing record is a
// no-op success, so cleanup is safe to retry.
func (st *Store) Delete(id string) error {
	path, err := st.recordPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session record: %w", err)
	}
	return nil
}
