// Package ports reserves non-conflicting network ports for sessions.
//
// All active reservations on the host live in a single JSON state file
// (allocations.json under the state directory), keyed by port and
// tagged with the owning session. The file is the source of truth for
// port availability; devsess processes in different terminals, or on
// different machines sharing the state directory over a network
// filesystem, coordinate exclusively through it.
//
// # Concurrency
//
// Every read-modify-write of the state file happens inside an exclusive
// cross-process file lock (see the lockfile package): load, transform,
// atomic write-then-rename. Two concurrent Allocate calls are totally
// ordered by the lock and can never persist overlapping reservations.
//
// # Allocation Strategy
//
// Ports are allocated first-fit from the bottom of the configured
// range. A candidate port must be absent from the recorded state and
// must also pass a live TCP bind probe, so reservations never collide
// with unmanaged processes that took a port behind the allocator's
// back. Allocation is all-or-nothing per session: if any requested
// service cannot get a port, no reservation is persisted.
//
// # Recovery
//
// Release is idempotent. Reconcile drops reservations whose owning
// session record no longer exists, healing state left behind by
// crashed or abandoned sessions. Corrupt state is surfaced as an error
// and never repaired automatically.
package ports
