package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Invocation is one resolved run: the block device, where its
// filesystem gets mounted, and the tree to copy. Built once from the
// positional arguments and never mutated.
type Invocation struct {
	Device     string
	MountPoint string
	SourceRoot string
	DestRoot   string
}

// Config represents the optional salvage configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
}

// DefaultsConfig holds persistent flag defaults.
type DefaultsConfig struct {
	Helper        *string `toml:"helper"`
	Sudo          *bool   `toml:"sudo"`
	SettleSeconds *int    `toml:"settle_seconds"`
	Verify        *bool   `toml:"verify"`
	Quiet         *bool   `toml:"quiet"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "salvage", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
