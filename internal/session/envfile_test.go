package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEnvVars(t *testing.T) {
	s := validSession()
	s.Ports = map[string]int{"graph": 30000, "llm-proxy": 30001}

	vars := EnvVars(s)

	if vars["SESSION_ID"] != s.ID {
		t.Errorf("SESSION_ID = %q", vars["SESSION_ID"])
	}
	if vars["SESSION_SHORT_ID"] != s.ShortID {
		t.Errorf("SESSION_SHORT_ID = %q", vars["SESSION_SHORT_ID"])
	}
	if vars["PROJECT_NAME"] != s.ProjectName {
		t.Errorf("PROJECT_NAME = %q", vars["PROJECT_NAME"])
	}
	if vars["COMPOSE_PROJECT_NAME"] != s.ProjectName {
		t.Errorf("COMPOSE_PROJECT_NAME = %q", vars["COMPOSE_PROJECT_NAME"])
	}
	if vars["GRAPH_PORT"] != "30000" {
		t.Errorf("GRAPH_PORT = %q", vars["GRAPH_PORT"])
	}
	if vars["LLM_PROXY_PORT"] != "30001" {
		t.Errorf("LLM_PROXY_PORT = %q, hyphens should map to underscores", vars["LLM_PROXY_PORT"])
	}
}

func TestWriteEnvFile_SortedAndComplete(t *testing.T) {
	s := validSession()
	path := filepath.Join(t.TempDir(), "test.env")

	if err := WriteEnvFile(path, s); err != nil {
		t.Fatalf("WriteEnvFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read env file: %v", err)
	}
	content := string(data)

	if !strings.HasSuffix(content, "\n") {
		t.Error("env file should end with a newline")
	}

	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	if len(lines) != len(EnvVars(s)) {
		t.Errorf("env file has %d lines, want %d", len(lines), len(EnvVars(s)))
	}

	// Lines are sorted by key so diffs between regenerations are stable.
	for i := 1; i < len(lines); i++ {
		if lines[i-1] >= lines[i] {
			t.Errorf("lines out of order: %q before %q", lines[i-1], lines[i])
		}
	}

	for _, line := range lines {
		if !strings.Contains(line, "=") {
			t.Errorf("malformed line %q", line)
		}
	}
	if !strings.Contains(content, "BUS_PORT=30001\n") {
		t.Errorf("missing BUS_PORT line in:\n%s", content)
	}
}
