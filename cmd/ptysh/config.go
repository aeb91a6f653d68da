package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// config holds ptysh's settings, loaded from ~/.ptysh/config.toml: a
// handful of named settings with sane defaults, no schema versioning
// or migration machinery needed at this size.
type config struct {
	// RelayURL is the optional WebSocket endpoint to mirror the pty
	// byte stream to/from (empty disables the relay entirely).
	RelayURL string `toml:"relay_url"`
	// TerminateTimeout is the per-stage poll timeout Signaling.Exit
	// waits before escalating (HUP -> TERM -> KILL).
	TerminateTimeout time.Duration `toml:"terminate_timeout"`
}

func defaultConfig() config {
	return config{TerminateTimeout: 100 * time.Millisecond}
}

// loadConfig reads ~/.ptysh/config.toml, falling back to defaultConfig
// for any field the file doesn't set (or if the file doesn't exist).
func loadConfig() (config, error) {
	cfg := defaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(home, ".ptysh", "config.toml")
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
