package session

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/driftworks/devsess/internal/config"
)

// Status is the lifecycle state of a persisted session.
type Status string

const (
	// StatusActive means the session's containers were started.
	StatusActive Status = "active"

	// StatusStopped means the session exists (ports reserved, files
	// generated) but its containers are not running.
	StatusStopped Status = "stopped"
)

// shortIDLen is the length of the deterministic short identity.
const shortIDLen = 8

// Session is one isolated, uniquely-named instance of the development
// stack: its identity, naming, port assignment and generated files.
type Session struct {
	ID          string         `json:"id"`
	ShortID     string         `json:"shortId"`
	ProjectName string         `json:"projectName"`
	CreatedAt   time.Time      `json:"createdAt"`
	Status      Status         `json:"status"`
	Profile     string         `json:"profile,omitempty"`
	Ports       map[string]int `json:"ports"`
	EnvPath     string         `json:"envPath"`
	StackPath   string         `json:"stackPath"`
}

// NewID mints a random session identity (UUID v4).
func NewID() string {
	return uuid.NewString()
}

// ShortID derives the fixed-length short form of a session id: the
// first 8 hex digits of the UUID with dashes stripped. Pure function;
// the same id always yields the same short form.
func ShortID(id string) string {
	compact := strings.ReplaceAll(id, "-", "")
	if len(compact) < shortIDLen {
		return compact
	}
	return compact[:shortIDLen]
}

// ProjectName derives the compose project name from a short id. Pure
// function, so naming is reproducible and human-auditable.
func ProjectName(shortID string) string {
	return config.ProjectPrefix + shortID
}

// Validate checks structural integrity of a session record.
func (s *Session) Validate() error {
	if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("invalid session id %q: %w", s.ID, err)
	}
	if s.ShortID != ShortID(s.ID) {
		return fmt.Errorf("short id %q does not match session id %s", s.ShortID, s.ID)
	}
	if s.ProjectName != ProjectName(s.ShortID) {
		return fmt.Errorf("project name %q does not match short id %s", s.ProjectName, s.ShortID)
	}
	if s.Status != StatusActive && s.Status != StatusStopped {
		return fmt.Errorf("invalid status %q", s.Status)
	}
	if len(s.Ports) == 0 {
		return fmt.Errorf("session has no allocated ports")
	}
	for svc, port := range s.Ports {
		if err := config.ValidateServiceName(svc); err != nil {
			return err
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("port %d for service %s out of bounds", port, svc)
		}
	}
	return nil
}

// Services returns the session's service names in sorted order.
func (s *Session) Services() []string {
	names := make([]string, 0, len(s.Ports))
	for svc := range s.Ports {
		names = append(names, svc)
	}
	sort.Strings(names)
	return names
}
