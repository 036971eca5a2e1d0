// Package testutil provides test fixtures for devsess packages.
package testutil

import (
	"testing"

	"github.com/driftworks/devsess/internal/app"
	"github.com/driftworks/devsess/internal/config"
	"github.com/driftworks/devsess/internal/session"
	"github.com/driftworks/devsess/internal/system"
)

// TestEnv holds the test environment: an isolated state directory, a
// permissive mock prober, a scriptable mock executor, and a fully
// wired manager.
type TestEnv struct {
	T        *testing.T
	TmpDir   string
	Config   *config.Config
	Paths    *config.Paths
	Executor *system.MockExecutor
	Prober   *system.MockProber
	App      *app.App
	Manager  *session.Manager
}

// NewTestEnv creates a new test environment with mock OS seams.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()

	cfg := &config.Config{
		StateDir:        tmpDir,
		ComposeBin:      "docker",
		PortRange:       config.PortRange{From: 30000, To: 30099},
		LockTimeoutSecs: 2,
		DefaultServices: []string{"graph", "bus", "storage", "api"},
		DefaultProfile:  "core",
	}

	paths := config.NewPaths(tmpDir)
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("Failed to create state directories: %v", err)
	}

	executor := system.NewMockExecutor()
	prober := system.NewMockProber()

	testApp := app.New(
		app.WithConfig(cfg),
		app.WithPaths(paths),
		app.WithExecutor(executor),
		app.WithProber(prober),
	)

	// Save original default and swap in the test app
	originalDefault := app.Default
	app.SetDefault(testApp)
	t.Cleanup(func() {
		app.SetDefault(originalDefault)
	})

	return &TestEnv{
		T:        t,
		TmpDir:   tmpDir,
		Config:   cfg,
		Paths:    paths,
		Executor: executor,
		Prober:   prober,
		App:      testApp,
		Manager:  testApp.Manager,
	}
}
