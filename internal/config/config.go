// Package config loads orgchart.toml, the settings shared by the CLI and
// the HTTP server.
//
// A missing file is not an error; every field has a default.
//
//	[layout]
//	engine = "graphviz"
//	node_sep = 24
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	prefix = "team-a:"
//	ttl = "24h"
//
//	[store]
//	backend = "sqlite"
//	path = "charts.db"
package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/store"
)

const (
	appName  = "orgchart"
	FileName = "orgchart.toml"

	EngineTree     = "tree"
	EngineGraphviz = "graphviz"

	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"

	DefaultAddr = "localhost:8080"
)

// Config is the parsed configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig selects the layout engine and its spacing.
type LayoutConfig struct {
	Engine     string  `toml:"engine"`
	NodeSep    float64 `toml:"node_sep"`
	RankSep    float64 `toml:"rank_sep"`
	NodeWidth  float64 `toml:"node_width"`
	NodeHeight float64 `toml:"node_height"`
}

// CacheConfig selects where computed layouts are memoized.
type CacheConfig struct {
	Backend   string `toml:"backend"`
	Dir       string `toml:"dir"`
	RedisAddr string `toml:"redis_addr"`
	// Prefix namespaces layout keys, so charts configured differently can
	// share one Redis or cache directory.
	Prefix string   `toml:"prefix"`
	TTL    Duration `toml:"ttl"`
}

// StoreConfig selects where chart snapshots are saved.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	Path     string `toml:"path"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// ServerConfig configures `orgchart serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration decodes TOML strings such as "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// Load reads path, or the default location when path is empty. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
		if explicit {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "config %s", path)
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Layout.Engine == "" {
		c.Layout.Engine = EngineTree
	}
	if c.Layout.NodeSep <= 0 {
		c.Layout.NodeSep = layout.DefaultNodeSep
	}
	if c.Layout.RankSep <= 0 {
		c.Layout.RankSep = layout.DefaultRankSep
	}
	if c.Layout.NodeWidth <= 0 {
		c.Layout.NodeWidth = layout.DefaultNodeWidth
	}
	if c.Layout.NodeHeight <= 0 {
		c.Layout.NodeHeight = layout.DefaultNodeHeight
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = filepath.Join(cacheHome(), appName)
	}
	if c.Cache.TTL.Duration <= 0 {
		c.Cache.TTL.Duration = layout.DefaultCacheTTL
	}

	if c.Store.Backend == "" {
		c.Store.Backend = store.BackendFile
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(ConfigDir(), "charts.db")
	}
	if c.Store.Database == "" {
		c.Store.Database = appName
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
}

// Validate checks enumerated fields and backend requirements.
func (c *Config) Validate() error {
	if !slices.Contains([]string{EngineTree, EngineGraphviz}, c.Layout.Engine) {
		return errors.New(errors.ErrCodeInvalidInput, "layout.engine: unknown engine %q", c.Layout.Engine)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "cache.backend: unknown backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case store.BackendFile, store.BackendSQLite:
	case store.BackendMongo:
		if c.Store.URI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store.uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "store.backend: unknown backend %q", c.Store.Backend)
	}
	return nil
}

// LayoutOptions returns the graph spacing.
func (c *Config) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	opts.NodeSep = c.Layout.NodeSep
	opts.RankSep = c.Layout.RankSep
	return opts
}

// Engine returns the configured layout engine without caching.
func (c *Config) Engine() layout.Layouter {
	if c.Layout.Engine == EngineGraphviz {
		return layout.NewGraphviz()
	}
	return layout.NewTree()
}

// OpenCache opens the configured cache backend.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case CacheFile:
		fc, err := cache.NewFileCache(c.Cache.Dir)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "open file cache")
		}
		return fc, nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Cache.RedisAddr)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "open redis cache")
		}
		return rc, nil
	}
	return cache.NewNullCache(), nil
}

// Layouter returns the engine wrapped in the configured cache. The caller
// closes the returned cache.
func (c *Config) Layouter(ctx context.Context, logger *log.Logger) (layout.Layouter, cache.Cache, error) {
	lc, err := c.OpenCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	cached := layout.NewCached(c.Engine(), lc, logger)
	cached.TTL = c.Cache.TTL.Duration
	if c.Cache.Prefix != "" {
		cached.Keyer = cache.NewScopedKeyer(cached.Keyer, c.Cache.Prefix)
	}
	return cached, lc, nil
}

// ChartOptions returns the chart options implied by the layout section.
func (c *Config) ChartOptions(l layout.Layouter) []orgchart.Option {
	return []orgchart.Option{
		orgchart.WithLayouter(l),
		orgchart.WithLayoutOptions(c.LayoutOptions()),
		orgchart.WithNodeSize(c.Layout.NodeWidth, c.Layout.NodeHeight),
	}
}

// StoreConfig returns the snapshot store settings.
func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Backend:  c.Store.Backend,
		Dir:      c.Store.Dir,
		Path:     c.Store.Path,
		URI:      c.Store.URI,
		Database: c.Store.Database,
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/orgchart, or ~/.config/orgchart.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// DefaultPath returns ./orgchart.toml if present, else the file in
// ConfigDir.
func DefaultPath() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	return filepath.Join(ConfigDir(), FileName)
}

func cacheHome() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache")
}
