package session

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/driftworks/devsess/internal/stack"
)

// EnvVars returns the environment projection of a session: identity,
// naming, and one <SERVICE>_PORT entry per allocated service.
func EnvVars(s *Session) map[string]string {
	vars := map[string]string{
		"SESSION_ID":           s.ID,
		"SESSION_SHORT_ID":     s.ShortID,
		"PROJECT_NAME":         s.ProjectName,
		"COMPOSE_PROJECT_NAME": s.ProjectName,
	}
	for svc, port := range s.Ports {
		vars[stack.PortEnvKey(svc)] = fmt.Sprintf("%d", port)
	}
	return vars
}

// WriteEnvFile materializes the session's env file at path: sorted
// KEY=value lines with a trailing newline. The file is a pure
// projection of the record and is regenerated in full on every
// creation; it is never a source of truth.
func WriteEnvFile(path string, s *Session) error {
	vars := EnvVars(s)

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, vars[k])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	return nil
}
