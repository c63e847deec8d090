// Package config loads the optional tidytree configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/tidytree/config.toml
// unless a path is given explicitly:
//
//	[layout]
//	width = 700
//	height = 600
//	margin = 20
//	style = "open"
//	font = "12pt serif"
//
//	[render]
//	formats = ["svg", "txt"]
//	background = "white"
//
//	[cache]
//	backend = "redis"        # file, redis, mongo or none
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//	prefix = "team-a:"       # namespace for a shared backend
//
//	[server]
//	addr = ":8080"
//
// Values from the file only fill options that were not set on the command
// line or in the request; see [Config.Apply].
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tidytree/pkg/cache"
	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/pipeline"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Environment variables consulted by the cache section.
const (
	EnvRedisAddr = "TIDYTREE_REDIS_ADDR"
	EnvMongoURI  = "TIDYTREE_MONGO_URI"
)

// DefaultServerAddr is the listen address of `tidytree serve`.
const DefaultServerAddr = ":8080"

// Config is the decoded configuration file.
type Config struct {
	Layout Layout `toml:"layout"`
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
}

// Layout holds default layout and drawing options.
type Layout struct {
	Distance float64 `toml:"distance"`
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	Margin   float64 `toml:"margin"`
	MinSpan  float64 `toml:"min_span"`
	MinDepth float64 `toml:"min_depth"`
	Style    string  `toml:"style"`
	Font     string  `toml:"font"`
	Scale    float64 `toml:"scale"`
	Class    string  `toml:"class"`
}

// Render holds default render options.
type Render struct {
	Formats    []string `toml:"formats"`
	Background string   `toml:"background"`
	PNGScale   float64  `toml:"png_scale"`
	Cols       int      `toml:"cols"`
	Rows       int      `toml:"rows"`
}

// Cache selects and configures the cache backend.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	TTL           Duration `toml:"ttl"`

	// Prefix namespaces the keys of a shared backend.
	Prefix string `toml:"prefix"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("36h").
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
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Cache:  Cache{Backend: BackendFile},
		Server: Server{Addr: DefaultServerAddr},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/tidytree/config.toml, falling back
// to the user config directory.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tidytree", "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate config directory")
	}
	return filepath.Join(dir, "tidytree", "config.toml"), nil
}

// Load reads the configuration at path. An empty path loads the default
// location, where a missing file is not an error; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML configuration. Keys the file does not know about are
// rejected so that typos do not go unnoticed.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidOption, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if err := errors.ValidateOneOf(errors.ErrCodeInvalidOption, "cache backend", c.Cache.Backend,
		BackendFile, BackendRedis, BackendMongo, BackendNone); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return err
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	return nil
}

// Options returns the layout and render settings of the file as pipeline
// options.
func (c *Config) Options() pipeline.Options {
	l, r := c.Layout, c.Render
	return pipeline.Options{
		Distance:   l.Distance,
		Width:      l.Width,
		Height:     l.Height,
		Margin:     l.Margin,
		MinSpan:    l.MinSpan,
		MinDepth:   l.MinDepth,
		Style:      l.Style,
		Font:       l.Font,
		Scale:      l.Scale,
		Class:      l.Class,
		Formats:    r.Formats,
		Background: r.Background,
		PNGScale:   r.PNGScale,
		Cols:       r.Cols,
		Rows:       r.Rows,
	}
}

// Apply fills the options left unset with values from the file.
func (c *Config) Apply(o *pipeline.Options) {
	o.FillFrom(c.Options())
}

// OpenCache opens the configured cache backend. The environment variables
// TIDYTREE_REDIS_ADDR and TIDYTREE_MONGO_URI override the file.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	cc := c.Cache
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cc.RedisAddr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		cc.MongoURI = v
	}

	var (
		backend cache.Cache
		err     error
	)
	switch cc.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		if cc.RedisAddr == "" {
			return nil, errors.New(errors.ErrCodeInvalidOption, "redis cache needs redis_addr or %s", EnvRedisAddr)
		}
		backend, err = cache.NewRedisCache(ctx, cc.RedisAddr)
	case BackendMongo:
		if cc.MongoURI == "" {
			return nil, errors.New(errors.ErrCodeInvalidOption, "mongo cache needs mongo_uri or %s", EnvMongoURI)
		}
		db := cc.MongoDatabase
		if db == "" {
			db = "tidytree"
		}
		backend, err = cache.NewMongoCache(ctx, cc.MongoURI, db, "cache")
	default:
		dir := cc.Dir
		if dir == "" {
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, err
			}
		}
		backend, err = cache.NewFileCache(dir)
	}
	if err != nil {
		return nil, err
	}
	if cc.TTL.Duration > 0 {
		backend = &ttlCache{Cache: backend, ttl: cc.TTL.Duration}
	}
	return backend, nil
}

// Keyer returns the cache keyer, scoped by the configured prefix.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Prefix)
}

// ttlCache caps the lifetime of every entry.
type ttlCache struct {
	cache.Cache
	ttl time.Duration
}

func (c *ttlCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.ttl {
		ttl = c.ttl
	}
	return c.Cache.Set(ctx, key, data, ttl)
}
