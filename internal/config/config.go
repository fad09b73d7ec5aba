// Package config loads macrobridge.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is searched for from the working directory upwards.
const FileName = "macrobridge.toml"

// Config is the whole file. Durations are strings such as "250ms".
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Connection ConnectionConfig `toml:"connection"`
	Cache      CacheConfig      `toml:"cache"`
	Trace      TraceConfig      `toml:"trace"`

	// Path is where the file was found; empty for defaults.
	Path string `toml:"-"`
}

type ServerConfig struct {
	Command []string `toml:"command"`
	Dir     string   `toml:"dir"`
	Env     []string `toml:"env"`
	// Catalogue is an offline catalogue used when no server is configured.
	Catalogue string `toml:"catalogue"`
}

type ConnectionConfig struct {
	MaxRestarts      int    `toml:"max_restarts"`
	Backoff          string `toml:"backoff"`
	MaxBackoff       string `toml:"max_backoff"`
	HandshakeTimeout string `toml:"handshake_timeout"`
	RequestTimeout   string `toml:"request_timeout"`
}

type CacheConfig struct {
	MemoSize int  `toml:"memo_size"`
	Disk     bool `toml:"disk"`
	// Dir overrides the user cache directory.
	Dir string `toml:"dir"`
}

type TraceConfig struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Output   string `toml:"output"`
	RingSize int    `toml:"ring_size"`
}

// Default returns the settings used without a file.
func Default() Config {
	return Config{
		Connection: ConnectionConfig{
			MaxRestarts:      3,
			Backoff:          "100ms",
			MaxBackoff:       "5s",
			HandshakeTimeout: "10s",
			RequestTimeout:   "30s",
		},
		Cache: CacheConfig{MemoSize: 1024},
		Trace: TraceConfig{Level: "off", Mode: "both", RingSize: 4096},
	}
}

// Find walks up from startDir to locate macrobridge.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the file, falling back to Default.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads path over the defaults. Relative paths inside the file are
// resolved against its directory.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	cfg.Path = path
	base := filepath.Dir(path)
	cfg.Server.Dir = resolve(base, cfg.Server.Dir)
	cfg.Server.Catalogue = resolve(base, cfg.Server.Catalogue)
	cfg.Cache.Dir = resolve(base, cfg.Cache.Dir)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate checks values that decode fine but make no sense.
func (c Config) Validate() error {
	if c.Connection.MaxRestarts < 0 {
		return fmt.Errorf("connection.max_restarts must not be negative")
	}
	if _, err := c.Connection.Durations(); err != nil {
		return err
	}
	return nil
}

// Durations is the parsed form of ConnectionConfig.
type Durations struct {
	Backoff          time.Duration
	MaxBackoff       time.Duration
	HandshakeTimeout time.Duration
	RequestTimeout   time.Duration
}

func (c ConnectionConfig) Durations() (Durations, error) {
	var d Durations
	fields := []struct {
		key string
		in  string
		out *time.Duration
	}{
		{"backoff", c.Backoff, &d.Backoff},
		{"max_backoff", c.MaxBackoff, &d.MaxBackoff},
		{"handshake_timeout", c.HandshakeTimeout, &d.HandshakeTimeout},
		{"request_timeout", c.RequestTimeout, &d.RequestTimeout},
	}
	for _, f := range fields {
		if f.in == "" {
			continue
		}
		v, err := time.ParseDuration(f.in)
		if err != nil {
			return Durations{}, fmt.Errorf("connection.%s: %w", f.key, err)
		}
		if v < 0 {
			return Durations{}, fmt.Errorf("connection.%s must not be negative", f.key)
		}
		*f.out = v
	}
	return d, nil
}
