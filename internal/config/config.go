// Package config loads netview's configuration.
//
// Values come from, in increasing priority: built-in defaults, the TOML file
// at $XDG_CONFIG_HOME/netview/config.toml (or an explicit path), and
// NETVIEW_* environment variables. Command-line flags override all three and
// are applied by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/marchallab/netview/pkg/artifact"
	"github.com/marchallab/netview/pkg/cache"
	nverrors "github.com/marchallab/netview/pkg/errors"
	"github.com/marchallab/netview/pkg/highlight"
)

// Config holds netview configuration.
type Config struct {
	Layout    LayoutConfig    `toml:"layout"`
	Render    RenderConfig    `toml:"render"`
	Cache     cache.Config    `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
	Events    EventsConfig    `toml:"events"`
	Artifacts artifact.Config `toml:"artifacts"`
}

// LayoutConfig controls headless layout runs.
type LayoutConfig struct {
	Seed     uint64  `toml:"seed"`
	MaxTicks int     `toml:"max_ticks"`
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	Mode     string  `toml:"mode"`
}

// RenderConfig controls artifact rendering.
type RenderConfig struct {
	Formats []string `toml:"formats"`
	Labels  bool     `toml:"labels"`
}

// ServerConfig controls the HTTP viewer service.
type ServerConfig struct {
	Addr string `toml:"addr"`

	// FPS is the frame rate of session streams.
	FPS int `toml:"fps"`

	// SessionTTL closes sessions idle for longer.
	SessionTTL Duration `toml:"session_ttl"`

	// Cooldown is the click cooldown of session highlight controllers.
	Cooldown Duration `toml:"cooldown"`
}

// EventsConfig controls event publication.
type EventsConfig struct {
	// NATSURL enables publishing to NATS. Empty disables events.
	NATSURL string `toml:"nats_url"`
	Subject string `toml:"subject"`
}

// Duration is a time.Duration written as a string such as "30m" in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Seed:     42,
			MaxTicks: 1000,
			Mode:     string(highlight.DefaultMode),
		},
		Render: RenderConfig{
			Formats: []string{"svg"},
			Labels:  true,
		},
		Cache: cache.Config{Backend: cache.BackendFile},
		Server: ServerConfig{
			Addr:       ":8080",
			FPS:        30,
			SessionTTL: Duration{30 * time.Minute},
			Cooldown:   Duration{highlight.DefaultCooldown},
		},
		Events: EventsConfig{Subject: "netview"},
	}
}

// Dir returns the netview config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "netview")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the configuration. An empty path reads DefaultPath and
// tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return finish(cfg)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the URLs and the layout mode of cfg. Empty values are
// left to their component defaults.
func (c *Config) Validate() error {
	if c.Layout.Mode != "" {
		if _, err := highlight.ParseMode(c.Layout.Mode); err != nil {
			return fmt.Errorf("layout.mode: %w", err)
		}
	}
	if c.Cache.URL != "" {
		var schemes []string
		switch c.Cache.Backend {
		case cache.BackendRedis:
			schemes = []string{"redis", "rediss", "unix"}
		case cache.BackendMongo:
			schemes = []string{"mongodb", "mongodb+srv"}
		}
		if schemes != nil {
			if err := nverrors.ValidateURL(c.Cache.URL, schemes...); err != nil {
				return fmt.Errorf("cache.url: %w", err)
			}
		}
	}
	if c.Events.NATSURL != "" {
		for _, u := range strings.Split(c.Events.NATSURL, ",") {
			if err := nverrors.ValidateURL(strings.TrimSpace(u), "nats", "tls", "ws", "wss"); err != nil {
				return fmt.Errorf("events.nats_url: %w", err)
			}
		}
	}
	if c.Artifacts.Endpoint != "" {
		if err := nverrors.ValidateURL(c.Artifacts.Endpoint); err != nil {
			return fmt.Errorf("artifacts.endpoint: %w", err)
		}
	}
	return nil
}

// Save writes cfg to path, creating its directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// =============================================================================
// Environment Overrides
// =============================================================================

// applyEnv overrides cfg with NETVIEW_* variables.
func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"NETVIEW_LAYOUT_MODE":      &cfg.Layout.Mode,
		"NETVIEW_CACHE_BACKEND":    &cfg.Cache.Backend,
		"NETVIEW_CACHE_DIR":        &cfg.Cache.Dir,
		"NETVIEW_CACHE_URL":        &cfg.Cache.URL,
		"NETVIEW_CACHE_PREFIX":     &cfg.Cache.Prefix,
		"NETVIEW_SERVER_ADDR":      &cfg.Server.Addr,
		"NETVIEW_NATS_URL":         &cfg.Events.NATSURL,
		"NETVIEW_NATS_SUBJECT":     &cfg.Events.Subject,
		"NETVIEW_ARTIFACTS_DIR":    &cfg.Artifacts.Dir,
		"NETVIEW_S3_BUCKET":        &cfg.Artifacts.Bucket,
		"NETVIEW_S3_PREFIX":        &cfg.Artifacts.Prefix,
		"NETVIEW_S3_REGION":        &cfg.Artifacts.Region,
		"NETVIEW_S3_ENDPOINT":      &cfg.Artifacts.Endpoint,
		"NETVIEW_MONGO_DATABASE":   &cfg.Cache.Database,
		"NETVIEW_MONGO_COLLECTION": &cfg.Cache.Collection,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("NETVIEW_LAYOUT_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("NETVIEW_LAYOUT_SEED: %w", err)
		}
		cfg.Layout.Seed = seed
	}
	if v, ok := os.LookupEnv("NETVIEW_LAYOUT_MAX_TICKS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NETVIEW_LAYOUT_MAX_TICKS: %w", err)
		}
		cfg.Layout.MaxTicks = n
	}
	if v, ok := os.LookupEnv("NETVIEW_SERVER_FPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("NETVIEW_SERVER_FPS: %w", err)
		}
		cfg.Server.FPS = n
	}
	if v, ok := os.LookupEnv("NETVIEW_SESSION_TTL"); ok {
		if err := cfg.Server.SessionTTL.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("NETVIEW_SESSION_TTL: %w", err)
		}
	}
	return nil
}
