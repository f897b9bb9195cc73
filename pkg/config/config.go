// Package config loads the relay process configuration from relay.toml.
// This is process wiring (listen address, data directory, transport limits);
// the user-facing settings record lives in pkg/settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/relay/pkg/settings"
	"github.com/papercomputeco/relay/proxy"
)

// FileName is the config file looked up in the data directory.
const FileName = "relay.toml"

// Config is the relay process configuration.
type Config struct {
	// ListenAddr is where the command server listens for the UI process.
	ListenAddr string `toml:"listen"`

	// DataDir holds settings.json and journal.db.
	DataDir string `toml:"data_dir"`

	Debug bool `toml:"debug"`

	Transport TransportConfig `toml:"transport"`
	Journal   JournalConfig   `toml:"journal"`
}

// TransportConfig sizes the shared upstream HTTP client.
type TransportConfig struct {
	Timeout         Duration `toml:"timeout"`
	MaxIdleConns    int      `toml:"max_idle_conns"`
	IdleConnTimeout Duration `toml:"idle_conn_timeout"`
}

// JournalConfig controls the call journal.
type JournalConfig struct {
	// Backend is "sqlite", "memory" or "off".
	Backend string `toml:"backend"`

	// PruneSchedule is a cron expression; empty disables pruning.
	PruneSchedule string   `toml:"prune_schedule"`
	MaxAge        Duration `toml:"max_age"`
}

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	transport := proxy.DefaultConfig()

	return Config{
		ListenAddr: "127.0.0.1:7390",
		Transport: TransportConfig{
			Timeout:         Duration{transport.Timeout},
			MaxIdleConns:    transport.MaxIdleConns,
			IdleConnTimeout: Duration{transport.IdleConnTimeout},
		},
		Journal: JournalConfig{
			Backend:       "sqlite",
			PruneSchedule: "@hourly",
			MaxAge:        Duration{7 * 24 * time.Hour},
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// An empty DataDir resolves to settings.DefaultDataDir.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("could not parse %s: %w", path, err)
		}
	}

	if cfg.DataDir == "" {
		dir, err := settings.DefaultDataDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = dir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DefaultPath returns relay.toml inside the default data directory.
func DefaultPath() (string, error) {
	dir, err := settings.DefaultDataDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, FileName), nil
}

// Validate checks the configuration for obviously broken values.
func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.Transport.Timeout.Duration < 0 {
		return errors.New("transport timeout must not be negative")
	}

	switch c.Journal.Backend {
	case "sqlite", "memory", "off":
	default:
		return fmt.Errorf("unknown journal backend %q", c.Journal.Backend)
	}

	return nil
}

// Proxy returns the transport configuration for the proxy client.
func (c Config) Proxy() proxy.Config {
	return proxy.Config{
		Timeout:         c.Transport.Timeout.Duration,
		MaxIdleConns:    c.Transport.MaxIdleConns,
		IdleConnTimeout: c.Transport.IdleConnTimeout.Duration,
	}
}

// JournalPath returns the SQLite journal location.
func (c Config) JournalPath() string {
	return filepath.Join(c.DataDir, "journal.db")
}
