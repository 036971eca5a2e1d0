package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultPortFrom and DefaultPortTo bound the port range sessions
	// allocate from when no configuration overrides them.
	DefaultPortFrom = 30000
	DefaultPortTo   = 40000

	// DefaultComposeBin is the container orchestration binary.
	DefaultComposeBin = "docker"

	// DefaultLockTimeout bounds how long a process waits for the
	// cross-process allocation lock before failing loudly.
	DefaultLockTimeout = 10 * time.Second

	// ProjectPrefix is prepended to session short ids to form compose
	// project names.
	ProjectPrefix = "devsess-"
)

// DefaultServices is the service set allocated when none is requested.
var DefaultServices = []string{"graph", "bus", "storage", "api"}

// serviceNameRegex validates service names.
// Names must start with a lowercase letter or digit, followed by lowercase
// letters, digits, underscores, or hyphens. Maximum length is 32 characters
// so the derived <SERVICE>_PORT env key stays readable.
var serviceNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,31}$`)

// ValidateServiceName checks if a service name is valid.
func ValidateServiceName(name string) error {
	if name == "" {
		return fmt.Errorf("service name cannot be empty")
	}

	if !serviceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid service name %q: must start with a lowercase letter or digit, contain only lowercase letters, digits, underscores, or hyphens, and be at most 32 characters", name)
	}

	return nil
}

// PortRange is a closed range of candidate ports.
type PortRange struct {
	From int `toml:"from"`
	To   int `toml:"to"`
}

// Size returns the number of ports in the range.
func (r PortRange) Size() int {
	return r.To - r.From + 1
}

// Validate checks that the range is sane.
func (r PortRange) Validate() error {
	if r.From < 1024 || r.From > 65535 {
		return fmt.Errorf("port range start %d out of bounds (1024-65535)", r.From)
	}
	if r.To < r.From || r.To > 65535 {
		return fmt.Errorf("port range end %d invalid (must be %d-65535)", r.To, r.From)
	}
	return nil
}

// Config is the host configuration for devsess.
type Config struct {
	StateDir        string    `toml:"state_dir"`
	ComposeBin      string    `toml:"compose_bin"`
	PortRange       PortRange `toml:"port_range"`
	LockTimeoutSecs int       `toml:"lock_timeout_seconds"`
	DefaultServices []string  `toml:"default_services"`
	DefaultProfile  string    `toml:"default_profile"`
}

// LockTimeout returns the configured lock timeout as a duration.
func (c *Config) LockTimeout() time.Duration {
	if c.LockTimeoutSecs <= 0 {
		return DefaultLockTimeout
	}
	return time.Duration(c.LockTimeoutSecs) * time.Second
}

// Validate checks that the Config is valid.
func (c *Config) Validate() error {
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if c.ComposeBin == "" {
		return fmt.Errorf("compose_bin is required")
	}
	if err := c.PortRange.Validate(); err != nil {
		return fmt.Errorf("port_range: %w", err)
	}
	for _, svc := range c.DefaultServices {
		if err := ValidateServiceName(svc); err != nil {
			return fmt.Errorf("default_services: %w", err)
		}
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	stateDir := filepath.Join(homeStateDir(), "devsess")
	return &Config{
		StateDir:        stateDir,
		ComposeBin:      DefaultComposeBin,
		PortRange:       PortRange{From: DefaultPortFrom, To: DefaultPortTo},
		LockTimeoutSecs: int(DefaultLockTimeout / time.Second),
		DefaultServices: append([]string(nil), DefaultServices...),
		DefaultProfile:  "core",
	}
}

// homeStateDir returns the base state directory, honoring XDG_STATE_HOME.
func homeStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/var/lib"
	}
	return filepath.Join(home, ".local", "state")
}

// configPath returns the config file location, honoring DEVSESS_CONFIG.
func configPath() string {
	if p := os.Getenv("DEVSESS_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "devsess", "config.toml")
}

// Load builds the effective configuration: defaults, then the TOML config
// file if present, then environment variable overrides.
func Load() (*Config, error) {
	cfg := Default()

	if path := configPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies DEVSESS_* environment overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if dir := os.Getenv("DEVSESS_STATE_DIR"); dir != "" {
		cfg.StateDir = dir
	}
	if bin := os.Getenv("DEVSESS_COMPOSE_BIN"); bin != "" {
		cfg.ComposeBin = bin
	}
	if v := os.Getenv("DEVSESS_PORT_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PortRange.From = n
		}
	}
	if v := os.Getenv("DEVSESS_PORT_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PortRange.To = n
		}
	}
}

// Paths holds the derived state directory layout.
type Paths struct {
	StateDir        string
	SessionsDir     string
	EnvDir          string
	StacksDir       string
	AllocationsFile string
	LockFile        string
}

// NewPaths derives the state layout from a state directory.
func NewPaths(stateDir string) *Paths {
	return &Paths{
		StateDir:        stateDir,
		SessionsDir:     filepath.Join(stateDir, "sessions"),
		EnvDir:          filepath.Join(stateDir, "env"),
		StacksDir:       filepath.Join(stateDir, "stacks"),
		AllocationsFile: filepath.Join(stateDir, "allocations.json"),
		LockFile:        filepath.Join(stateDir, "allocations.lock"),
	}
}

// EnsureDirs creates the state directory tree.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.StateDir, p.SessionsDir, p.EnvDir, p.StacksDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory %s: %w", dir, err)
		}
	}
	return nil
}
