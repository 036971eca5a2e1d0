package ports

import (
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/driftworks/devsess/internal/config"
	"github.com/driftworks/devsess/internal/errors"
	"github.com/driftworks/devsess/internal/lockfile"
	"github.com/driftworks/devsess/internal/system"
)

func testAllocator(t *testing.T, from, to int) (*Allocator, *system.MockProber, *config.Paths) {
	t.Helper()

	paths := config.NewPaths(t.TempDir())
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	prober := system.NewMockProber()
	alloc := New(paths, config.PortRange{From: from, To: to}, 2*time.Second,
		WithProber(prober),
		WithLockOptions(lockfile.WithRetryDelay(time.Millisecond)))

	return alloc, prober, paths
}

func TestAllocate_FirstFit(t *testing.T) {
	alloc, _, _ := testAllocator(t, 30000, 30005)

	got, err := alloc.Allocate("session-a", []string{"graph", "bus"})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	if got["graph"] != 30000 || got["bus"] != 30001 {
		t.Errorf("allocation = %v, want graph:30000 bus:30001", got)
	}
}

func TestAllocate_SkipsExistingAllocations(t *testing.T) {
	alloc, _, _ := testAllocator(t, 30000, 30005)

	if _, err := alloc.Allocate("session-a", []string{"db", "bus"}); err != nil {
		t.Fatalf("first Allocate failed: %v", err)
	}

	got, err := alloc.Allocate("session-b", []string{"db", "bus"})
	if err != nil {
		t.Fatalf("second Allocate failed: %v", err)
	}

	if got["db"] != 30002 || got["bus"] != 30003 {
		t.Errorf("allocation = %v, want db:30002 bus:30003", got)
	}
}

func TestAllocate_SkipsOSBusyPorts(t *testing.T) {
	alloc, prober, _ := testAllocator(t, 30000, 30005)
	prober.SetBusy(30000, true)
	prober.SetBusy(30002, true)

	got, err := alloc.Allocate("session-a", []string{"graph", "bus"})
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	if got["graph"] != 30001 || got["bus"] != 30003 {
		t.Errorf("allocation = %v, want graph:30001 bus:30003", got)
	}
}

func TestAllocate_AllOrNothing(t *testing.T) {
	alloc, _, _ := testAllocator(t, 30000, 30004)

	// Take four of the five ports, leaving exactly one free.
	if _, err := alloc.Allocate("session-a", []string{"a", "b", "c", "d"}); err != nil {
		t.Fatalf("setup Allocate failed: %v", err)
	}

	before, err := alloc.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	_, err = alloc.Allocate("session-b", []string{"db", "bus"})
	if err == nil {
		t.Fatal("expected exhausted-range error")
	}
	if errors.GetExitCode(err) != errors.ExitExhaustedRange {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitExhaustedRange)
	}

	// No partial reservation may survive the failed call.
	after, err := alloc.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(after.Allocations) != len(before.Allocations) {
		t.Errorf("allocations changed on failure: before %d, after %d",
			len(before.Allocations), len(after.Allocations))
	}
	if len(after.BySession("session-b")) != 0 {
		t.Error("failed allocation left stranded reservations")
	}
}

func TestAllocate_Validation(t *testing.T) {
	alloc, _, _ := testAllocator(t, 30000, 30005)

	if _, err := alloc.Allocate("", []string{"db"}); err == nil {
		t.Error("empty session id should fail")
	}
	if _, err := alloc.Allocate("s", nil); err == nil {
		t.Error("empty service list should fail")
	}
	if _, err := alloc.Allocate("s", []string{"db", "db"}); err == nil {
		t.Error("duplicate service should fail")
	}
	if _, err := alloc.Allocate("s", []string{"Bad Name"}); err == nil {
		t.Error("invalid service name should fail")
	}

	// None of the rejected calls may have persisted anything.
	state, err := alloc.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(state.Allocations) != 0 {
		t.Errorf("state has %d allocations, want 0", len(state.Allocations))
	}
}

func TestRelease_Idempotent(t *testing.T) {
	alloc, _, _ := testAllocator(t, 30000, 30005)

	if _, err := alloc.Allocate("session-a", []string{"db", "bus"}); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	if err := alloc.Release("session-a"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := alloc.Release("session-a"); err != nil {
		t.Fatalf("second Release should succeed: %v", err)
	}
	if err := alloc.Release("never-existed"); err != nil {
		t.Fatalf("Release of unknown session should succeed: %v", err)
	}

	state, err := alloc.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(state.Allocations) != 0 {
		t.Errorf("state has %d allocations after release, want 0", len(state.Allocations))
	}
}

func TestRelease_FreesPortsForReuse(t *testing.T) {
	alloc, _, _ := testAllocator(t, 30000, 30001)

	if _, err := alloc.Allocate("session-a", []string{"db", "bus"}); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if err := alloc.Release("session-a"); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	got, err := alloc.Allocate("session-b", []string{"db", "bus"})
	if err != nil {
		t.Fatalf("Allocate after release failed: %v", err)
	}
	if got["db"] != 30000 || got["bus"] != 30001 {
		t.Errorf("allocation = %v, released ports should be reused", got)
	}
}

func TestReconcile_DropsOrphans(t *testing.T) {
	alloc, _, _ := testAllocator(t, 30000, 30010)

	if _, err := alloc.Allocate("live-session", []string{"db"}); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if _, err := alloc.Allocate("dead-session", []string{"db", "bus"}); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	removed, err := alloc.Reconcile(func(id string) bool {
		return id == "live-session"
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(removed) != 2 {
		t.Errorf("removed %d allocations, want 2", len(removed))
	}
	for _, a := range removed {
		if a.SessionID != "dead-session" {
			t.Errorf("removed allocation for %s, want dead-session only", a.SessionID)
		}
	}

	state, err := alloc.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(state.BySession("live-session")) != 1 {
		t.Error("live session's allocation should survive reconcile")
	}
	if len(state.BySession("dead-session")) != 0 {
		t.Error("dead session's allocations should be gone")
	}
}

func TestAllocate_CorruptState(t *testing.T) {
	alloc, _, paths := testAllocator(t, 30000, 30005)

	if err := os.WriteFile(paths.AllocationsFile, []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write corrupt state: %v", err)
	}

	_, err := alloc.Allocate("session-a", []string{"db"})
	if err == nil {
		t.Fatal("expected corrupt-state error")
	}
	if errors.GetExitCode(err) != errors.ExitCorruptState {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitCorruptState)
	}

	// Corruption is never auto-repaired.
	data, err := os.ReadFile(paths.AllocationsFile)
	if err != nil {
		t.Fatalf("failed to read state: %v", err)
	}
	if string(data) != "{not json" {
		t.Error("corrupt state file was modified")
	}
}

func TestAllocate_VersionMismatch(t *testing.T) {
	alloc, _, paths := testAllocator(t, 30000, 30005)

	data, _ := json.Marshal(map[string]any{"version": 99, "allocations": map[string]any{}})
	if err := os.WriteFile(paths.AllocationsFile, data, 0644); err != nil {
		t.Fatalf("failed to write state: %v", err)
	}

	_, err := alloc.Allocate("session-a", []string{"db"})
	if errors.GetExitCode(err) != errors.ExitCorruptState {
		t.Errorf("exit code = %d, want %d", errors.GetExitCode(err), errors.ExitCorruptState)
	}
}

func TestAllocate_ConcurrentNoOverlap(t *testing.T) {
	paths := config.NewPaths(t.TempDir())
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	const workers = 8
	results := make([]map[string]int, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			// Each worker gets its own Allocator (its own lock fd
			// and prober), as independent processes would.
			alloc := New(paths, config.PortRange{From: 30000, To: 30099}, 10*time.Second,
				WithProber(system.NewMockProber()),
				WithLockOptions(lockfile.WithRetryDelay(time.Millisecond)))

			got, err := alloc.Allocate(sessionID(w), []string{"graph", "bus", "storage"})
			if err != nil {
				t.Errorf("worker %d Allocate failed: %v", w, err)
				return
			}
			results[w] = got
		}(w)
	}

	wg.Wait()

	seen := make(map[int]int)
	for w, got := range results {
		for _, port := range got {
			if prev, dup := seen[port]; dup {
				t.Errorf("port %d allocated to both worker %d and worker %d", port, prev, w)
			}
			seen[port] = w
		}
	}
	if len(seen) != workers*3 {
		t.Errorf("allocated %d distinct ports, want %d", len(seen), workers*3)
	}
}

func sessionID(w int) string {
	return string(rune('a'+w)) + "-session"
}
