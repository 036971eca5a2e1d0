// Package config loads and validates the devsess host configuration.
//
// Configuration is layered: built-in defaults, then the TOML config file at
// ~/.config/devsess/config.toml (or $DEVSESS_CONFIG), then environment
// overrides:
//
//	DEVSESS_STATE_DIR    state directory (default ~/.local/state/devsess)
//	DEVSESS_COMPOSE_BIN  orchestration binary (default "docker")
//	DEVSESS_PORT_MIN     lower bound of the allocation range (default 30000)
//	DEVSESS_PORT_MAX     upper bound of the allocation range (default 40000)
//
// Paths derives the on-disk layout under the state directory: one JSON
// record per session under sessions/, generated env files under env/,
// generated compose documents under stacks/, and the shared allocation
// state plus its lock file at the state directory root.
package config
