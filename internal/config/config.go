// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers defaults, an optional YAML file, and env vars.
// - External errors must be wrapped via this package's error helpers.
//
// Rating-algorithm parameters (pass count, K tiers, decay half-life)
// are deliberately absent: they are fixed constants of the engine.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath points at the sqlite result store.
	DBPath string `koanf:"db_path"`

	// TopPlayersLimit caps the top-players leaderboard length.
	TopPlayersLimit int `koanf:"top_players_limit"`

	// TopDecksLimit caps the top-decks list length.
	TopDecksLimit int `koanf:"top_decks_limit"`

	// RecentTournamentsLimit caps the recent-tournaments list length.
	RecentTournamentsLimit int `koanf:"recent_tournaments_limit"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":9090",
		DBPath:                 "metalab.db",
		TopPlayersLimit:        10,
		TopDecksLimit:          6,
		RecentTournamentsLimit: 10,
	}
}
