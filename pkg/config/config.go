// Package config loads the erdlayout TOML configuration file.
//
// A configuration file has three optional sections:
//
//	[layout]
//	horizontal_gap = 100
//	vertical_gap = 100
//	heuristic = "median"
//	max_iterations = 0
//	transpose = true
//
//	[cache]
//	dir = "/var/cache/erdlayout"
//	redis_addr = "localhost:6379"
//	ttl = "72h"
//
//	[server]
//	addr = ":8080"
//	db = "layouts.db"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "erdlayout"
//
// Keys missing from the file keep their defaults. [Find] looks for the file
// in $ERDLAYOUT_CONFIG first and then in the XDG config directories
// (erdlayout/config.toml).
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/matzehuels/erdlayout/pkg/cache"
	errs "github.com/matzehuels/erdlayout/pkg/errors"
	"github.com/matzehuels/erdlayout/pkg/layout"
)

// EnvVar names the environment variable that points at a config file.
const EnvVar = "ERDLAYOUT_CONFIG"

// RelPath is the config file location relative to an XDG config directory.
const RelPath = "erdlayout/config.toml"

// DefaultAddr is the default listen address of the HTTP API.
const DefaultAddr = ":8080"

// Config is the complete file configuration.
type Config struct {
	Layout layout.Config `toml:"layout"`
	Cache  CacheConfig   `toml:"cache"`
	Server ServerConfig  `toml:"server"`
}

// CacheConfig selects and tunes the layout cache.
type CacheConfig struct {
	// Disabled turns caching off.
	Disabled bool `toml:"disabled"`
	// Dir is the file cache directory.
	Dir string `toml:"dir"`
	// RedisAddr selects the Redis cache when set.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	// TTL is the lifetime of cache entries.
	TTL Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// DB is the bbolt file used to store layouts. Empty keeps them in memory.
	DB string `toml:"db"`
	// MongoURI selects the MongoDB store when set; it takes precedence over DB.
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// Duration is a time.Duration written as a string such as "72h".
type Duration struct {
	time.Duration
}

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
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Layout: layout.DefaultConfig(),
		Cache: CacheConfig{
			Dir: cache.DefaultDir(),
			TTL: Duration{cache.LayoutTTL},
		},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			MaxBodyBytes: 4 << 20,
		},
	}
}

// Load reads the file at path over the defaults. Unknown keys are errors.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s not found", path)
		}
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Find returns the path of the config file to use, if any.
func Find() (string, bool) {
	if p := os.Getenv(EnvVar); p != "" {
		return p, true
	}
	p, err := xdg.SearchConfigFile(RelPath)
	if err != nil {
		return "", false
	}
	return p, true
}

// LoadDefault loads the file returned by [Find], or the defaults when there
// is none. The returned path is empty in the latter case.
func LoadDefault() (Config, string, error) {
	path, ok := Find()
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server max_body_bytes must not be negative")
	}
	return nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// DefaultPath returns where a new config file should be created.
func DefaultPath() (string, error) {
	return xdg.ConfigFile(RelPath)
}
