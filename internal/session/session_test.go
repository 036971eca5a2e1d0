package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func validSession() *Session {
	id := "a1b2c3d4-e5f6-4789-abcd-ef0123456789"
	short := ShortID(id)
	return &Session{
		ID:          id,
		ShortID:     short,
		ProjectName: ProjectName(short),
		CreatedAt:   time.Now().UTC(),
		Status:      StatusStopped,
		Profile:     "core",
		Ports:       map[string]int{"graph": 30000, "bus": 30001},
		EnvPath:     "/tmp/env",
		StackPath:   "/tmp/stack",
	}
}

func TestShortID_Deterministic(t *testing.T) {
	id := "a1b2c3d4-e5f6-4789-abcd-ef0123456789"

	got := ShortID(id)
	if got != "a1b2c3d4" {
		t.Errorf("ShortID(%s) = %q, want a1b2c3d4", id, got)
	}
	if got != ShortID(id) {
		t.Error("ShortID should be deterministic")
	}
}

func TestProjectName(t *testing.T) {
	if got := ProjectName("a1b2c3d4"); got != "devsess-a1b2c3d4" {
		t.Errorf("ProjectName = %q, want devsess-a1b2c3d4", got)
	}
}

func TestNewID_IsUUID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("NewID() = %q, not a valid UUID: %v", id, err)
	}
	if id == NewID() {
		t.Error("consecutive ids should differ")
	}
}

func TestSession_Validate(t *testing.T) {
	if err := validSession().Validate(); err != nil {
		t.Fatalf("valid session should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Session)
	}{
		{"bad id", func(s *Session) { s.ID = "not-a-uuid" }},
		{"short id mismatch", func(s *Session) { s.ShortID = "deadbeef" }},
		{"project name mismatch", func(s *Session) { s.ProjectName = "other-name" }},
		{"bad status", func(s *Session) { s.Status = "paused" }},
		{"no ports", func(s *Session) { s.Ports = nil }},
		{"bad service name", func(s *Session) { s.Ports = map[string]int{"Bad Name": 30000} }},
		{"port out of bounds", func(s *Session) { s.Ports = map[string]int{"graph": 70000} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSession()
			tt.mutate(s)
			if err := s.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestSession_Services_Sorted(t *testing.T) {
	s := validSession()
	s.Ports = map[string]int{"storage": 30002, "bus": 30001, "graph": 30000}

	got := s.Services()
	want := []string{"bus", "graph", "storage"}
	if len(got) != len(want) {
		t.Fatalf("Services() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Services()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
