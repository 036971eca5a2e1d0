// Package app provides the application context for devsess.
// It allows dependency injection for testing.
package app

import (
	"github.com/driftworks/devsess/internal/compose"
	"github.com/driftworks/devsess/internal/config"
	"github.com/driftworks/devsess/internal/ports"
	"github.com/driftworks/devsess/internal/session"
	"github.com/driftworks/devsess/internal/system"
)

// App holds the application dependencies
type App struct {
	// Config is the effective host configuration
	Config *config.Config

	// Paths holds the derived state directory layout
	Paths *config.Paths

	// Executor runs the orchestration tool
	Executor system.CommandExecutor

	// Prober checks OS-level port availability
	Prober system.PortProber

	// Manager is the session manager wired from the above
	Manager *session.Manager
}

// Option is a function that configures the App
type Option func(*App)

// WithConfig sets a custom configuration
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		a.Config = cfg
	}
}

// WithPaths sets custom paths
func WithPaths(paths *config.Paths) Option {
	return func(a *App) {
		a.Paths = paths
	}
}

// WithExecutor sets a custom command executor
func WithExecutor(exec system.CommandExecutor) Option {
	return func(a *App) {
		a.Executor = exec
	}
}

// WithProber sets a custom port prober
func WithProber(p system.PortProber) Option {
	return func(a *App) {
		a.Prober = p
	}
}

// New creates a new App with the given options. Missing dependencies
// are filled with defaults and the session manager is wired last.
func New(opts ...Option) *App {
	a := &App{}

	for _, opt := range opts {
		opt(a)
	}

	if a.Config == nil {
		a.Config = config.Default()
	}
	if a.Paths == nil {
		a.Paths = config.NewPaths(a.Config.StateDir)
	}
	if a.Executor == nil {
		a.Executor = system.DefaultExecutor()
	}
	if a.Prober == nil {
		a.Prober = system.DefaultProber()
	}

	alloc := ports.New(a.Paths, a.Config.PortRange, a.Config.LockTimeout(),
		ports.WithProber(a.Prober))
	store := session.NewStore(a.Paths.SessionsDir)
	orch := compose.New(a.Config.ComposeBin, a.Executor)
	a.Manager = session.NewManager(a.Config, a.Paths, alloc, store, orch)

	return a
}

// Load creates an App from the effective host configuration (config
// file plus environment overrides).
func Load(opts ...Option) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(append([]Option{WithConfig(cfg)}, opts...)...), nil
}

// Default is the default application instance. It is nil until the CLI
// initializes it; tests inject their own via SetDefault.
var Default *App

// SetDefault sets the default application instance (used for testing)
func SetDefault(a *App) {
	Default = a
}
