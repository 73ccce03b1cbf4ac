// Package config loads the catalog server settings from catalog.toml and the
// environment.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/vito/catalog/pkg/catalog"
	"github.com/vito/catalog/pkg/gqlserver"
)

// FileName is the config file looked up by Find.
const FileName = "catalog.toml"

// Config represents a catalog.toml file.
type Config struct {
	// Listen is the TCP address the server binds.
	Listen string `toml:"listen"`

	// Path is where the GraphQL endpoint is mounted.
	Path string `toml:"path"`

	// Playground serves the in-browser IDE.
	Playground bool `toml:"playground"`

	// Introspection allows __schema and __type queries.
	Introspection bool `toml:"introspection"`

	// MaxDepth limits query depth. Zero means unlimited.
	MaxDepth int `toml:"max_depth"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	ReadHeaderTimeout time.Duration `toml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout"`

	// Seed replaces the default records when a [seed] table is present,
	// even an empty one.
	Seed catalog.Seed `toml:"seed"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Listen:            gqlserver.DefaultListen,
		Path:              gqlserver.DefaultPath,
		Playground:        true,
		Introspection:     true,
		LogLevel:          "info",
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		Seed:              catalog.DefaultSeed(),
	}
}

// Load reads a catalog.toml file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.Seed = catalog.Seed{}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	if !md.IsDefined("seed") {
		cfg.Seed = catalog.DefaultSeed()
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Find searches for a catalog.toml file starting from dir and walking up to
// parent directories, stopping at a .git boundary. Returns "" if not found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// ApplyEnv overrides settings from CATALOG_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv("CATALOG_LISTEN"); ok {
		c.Listen = v
	}
	if v, ok := os.LookupEnv("CATALOG_PATH"); ok {
		c.Path = v
	}
	if v, ok := os.LookupEnv("CATALOG_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv("CATALOG_PLAYGROUND"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(err, "CATALOG_PLAYGROUND")
		}
		c.Playground = enabled
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Path, "/") {
		return errors.Errorf("path must start with /: %q", c.Path)
	}
	if c.MaxDepth < 0 {
		return errors.Errorf("max_depth must not be negative: %d", c.MaxDepth)
	}
	if c.ShutdownTimeout <= 0 {
		return errors.Errorf("shutdown_timeout must be positive: %s", c.ShutdownTimeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Wrapf(err, "log_level %q", c.LogLevel)
	}
	return level, nil
}

// ServerOptions converts the config into options for gqlserver.StartServer.
func (c *Config) ServerOptions(logger *slog.Logger) gqlserver.Options {
	return gqlserver.Options{
		Listen:            c.Listen,
		Path:              c.Path,
		Playground:        c.Playground,
		ReadHeaderTimeout: c.ReadHeaderTimeout,
		Logger:            logger,
		Schema: gqlserver.SchemaOptions{
			MaxDepth:             c.MaxDepth,
			DisableIntrospection: !c.Introspection,
		},
	}
}
