package session

import (
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "sessions"))
}

func TestStore_SaveAndGet(t *testing.T) {
	st := testStore(t)
	s := validSession()

	if err := st.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, ok, err := st.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("saved session should exist")
	}
	if got.ID != s.ID || got.ShortID != s.ShortID || got.Status != s.Status {
		t.Errorf("round-tripped session = %+v", got)
	}
	if got.Ports["graph"] != 30000 {
		t.Errorf("ports = %v", got.Ports)
	}
}

func TestStore_GetMissing(t *testing.T) {
	st := testStore(t)

	s, ok, err := st.Get("a1b2c3d4-e5f6-4789-abcd-ef0123456789")
	if err != nil {
		t.Fatalf("Get of missing record should not error: %v", err)
	}
	if ok || s != nil {
		t.Error("missing record should report absent")
	}
}

func TestStore_RejectsInvalidSession(t *testing.T) {
	st := testStore(t)
	s := validSession()
	s.Ports = nil

	if err := st.Save(s); err == nil {
		t.Error("Save of invalid session should fail")
	}
}

func TestStore_RejectsTraversalIDs(t *testing.T) {
	st := testStore(t)

	for _, id := range []string{"", "../escape", "a/b", "../../etc/passwd"} {
		if _, _, err := st.Get(id); err == nil {
			t.Errorf("Get(%q) should fail", id)
		}
		if err := st.Delete(id); err == nil {
			t.Errorf("Delete(%q) should fail", id)
		}
	}
}

func TestStore_List(t *testing.T) {
	st := testStore(t)

	a := validSession()
	b := validSession()
	b.ID = "99999999-e5f6-4789-abcd-ef0123456789"
	b.ShortID = ShortID(b.ID)
	b.ProjectName = ProjectName(b.ShortID)

	for _, s := range []*Session{a, b} {
		if err := st.Save(s); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	sessions, err := st.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("List returned %d sessions, want 2", len(sessions))
	}
}

func TestStore_ListSkipsMalformedRecords(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	st := NewStore(dir)

	s := validSession()
	if err := st.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A corrupt record sits next to a good one.
	bad := filepath.Join(dir, "deadbeef-0000-4000-8000-000000000000.json")
	if err := os.WriteFile(bad, []byte("{broken"), 0644); err != nil {
		t.Fatalf("failed to write corrupt record: %v", err)
	}

	sessions, err := st.List()
	if err != nil {
		t.Fatalf("List should survive a corrupt record: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("List returned %d sessions, want 1", len(sessions))
	}
	if len(sessions) == 1 && sessions[0].ID != s.ID {
		t.Errorf("surviving session = %s, want %s", sessions[0].ID, s.ID)
	}
}

func TestStore_ListEmptyDir(t *testing.T) {
	st := NewStore(filepath.Join(t.TempDir(), "never-created"))

	sessions, err := st.List()
	if err != nil {
		t.Fatalf("List of missing directory should not error: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("List returned %d sessions, want 0", len(sessions))
	}
}

func TestStore_DeleteIdempotent(t *testing.T) {
	st := testStore(t)
	s := validSession()

	if err := st.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := st.Delete(s.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if st.Exists(s.ID) {
		t.Error("deleted session should not exist")
	}
	if err := st.Delete(s.ID); err != nil {
		t.Fatalf("second Delete should succeed: %v", err)
	}
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	st := testStore(t)
	s := validSession()

	if err := st.Save(s); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	s.Status = StatusActive
	if err := st.Save(s); err != nil {
		t.Fatalf("re-Save failed: %v", err)
	}

	got, _, err := st.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != StatusActive {
		t.Errorf("status = %q, want %q", got.Status, StatusActive)
	}
}
