package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Layout.Engine != EngineTree {
		t.Errorf("engine = %q", cfg.Layout.Engine)
	}
	if cfg.Layout.NodeWidth != layout.DefaultNodeWidth || cfg.Layout.NodeHeight != layout.DefaultNodeHeight {
		t.Errorf("node size = %vx%v", cfg.Layout.NodeWidth, cfg.Layout.NodeHeight)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Cache.TTL.Duration != layout.DefaultCacheTTL {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Store.Backend != store.BackendFile || cfg.Store.Database != "orgchart" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
engine = "graphviz"
node_sep = 24
node_width = 100

[cache]
backend = "none"
ttl = "36h"

[store]
backend = "sqlite"
path = "charts.db"

[server]
addr = ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Layout.Engine != EngineGraphviz || cfg.Layout.NodeSep != 24 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.RankSep != layout.DefaultRankSep || cfg.Layout.NodeHeight != layout.DefaultNodeHeight {
		t.Errorf("unset layout fields not defaulted: %+v", cfg.Layout)
	}
	if cfg.Cache.TTL.Duration != 36*time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if sc := cfg.StoreConfig(); sc.Backend != store.BackendSQLite || sc.Path != "charts.db" {
		t.Errorf("store config = %+v", sc)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if got := cfg.Engine().Name(); got != "graphviz" {
		t.Errorf("engine name = %q", got)
	}
	if opts := cfg.LayoutOptions(); opts.NodeSep != 24 || opts.RankDir != layout.RankDirTB {
		t.Errorf("layout options = %+v", opts)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code errors.Code
	}{
		{"bad toml", "[layout\n", errors.ErrCodeInvalidInput},
		{"bad duration", "[cache]\nttl = \"soon\"\n", errors.ErrCodeInvalidInput},
		{"unknown engine", "[layout]\nengine = \"force\"\n", errors.ErrCodeInvalidInput},
		{"unknown cache", "[cache]\nbackend = \"memcached\"\n", errors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidInput},
		{"mongo without uri", "[store]\nbackend = \"mongo\"\n", errors.ErrCodeInvalidInput},
		{"unknown store", "[store]\nbackend = \"s3\"\n", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("explicit missing file err = %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load default: %v", err)
	}
	if cfg.Layout.Engine != EngineTree {
		t.Errorf("engine = %q", cfg.Layout.Engine)
	}
}

func TestLayouter(t *testing.T) {
	cfg := Default()
	cfg.Cache.Dir = t.TempDir()

	l, c, err := cfg.Layouter(context.Background(), nil)
	if err != nil {
		t.Fatalf("Layouter: %v", err)
	}
	defer c.Close()

	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("cache = %T, want *cache.FileCache", c)
	}
	cached, ok := l.(*layout.Cached)
	if !ok {
		t.Fatalf("layouter = %T", l)
	}
	if cached.Name() != "tree" || cached.TTL != cfg.Cache.TTL.Duration {
		t.Errorf("cached = %s ttl %v", cached.Name(), cached.TTL)
	}
	if _, ok := cached.Keyer.(cache.DefaultKeyer); !ok {
		t.Errorf("keyer = %T, want cache.DefaultKeyer", cached.Keyer)
	}

	cfg.Cache.Backend = CacheNone
	_, c, err = cfg.Layouter(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(cache.NullCache); !ok {
		t.Errorf("cache = %T, want cache.NullCache", c)
	}
}

func TestChartOptions(t *testing.T) {
	cfg := Default()
	if got := len(cfg.ChartOptions(layout.NewTree())); got != 3 {
		t.Errorf("options = %d, want 3", got)
	}
}

func TestLayouterPrefix(t *testing.T) {
	cfg := Default()
	cfg.Cache.Backend = CacheNone
	cfg.Cache.Prefix = "team-a:"

	l, c, err := cfg.Layouter(context.Background(), nil)
	if err != nil {
		t.Fatalf("Layouter: %v", err)
	}
	defer c.Close()

	opts := cache.LayoutKeyOpts{Engine: "tree", NodeSep: 16, RankSep: 32}
	key := l.(*layout.Cached).Keyer.LayoutKey("abc", opts)
	plain := cache.NewDefaultKeyer().LayoutKey("abc", opts)
	if key != "team-a:"+plain {
		t.Errorf("key = %q, want prefix on %q", key, plain)
	}
}
