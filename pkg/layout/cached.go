package layout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// DefaultCacheTTL is how long cached positions stay valid.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Cached wraps a Layouter and memoizes positions by graph hash.
//
// A cache failure never fails the layout: read errors fall through to the
// wrapped engine and write errors are logged.
type Cached struct {
	Inner   Layouter
	Cache   cache.Cache
	Keyer   cache.Keyer
	TTL     time.Duration
	Timeout time.Duration
	Logger  *log.Logger
}

// NewCached wraps inner with c. A nil cache disables caching.
func NewCached(inner Layouter, c cache.Cache, logger *log.Logger) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{
		Inner:   inner,
		Cache:   c,
		Keyer:   cache.NewDefaultKeyer(),
		TTL:     DefaultCacheTTL,
		Timeout: 2 * time.Second,
		Logger:  logger,
	}
}

// Name implements Layouter.
func (c *Cached) Name() string { return c.Inner.Name() }

// Layout implements Layouter.
func (c *Cached) Layout(g *Graph) error {
	opts := g.Options()
	key := c.Keyer.LayoutKey(g.Hash(), cache.LayoutKeyOpts{
		Engine:  c.Inner.Name(),
		NodeSep: opts.NodeSep,
		RankSep: opts.RankSep,
	})

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	if c.apply(ctx, g, key) {
		observability.Cache().OnCacheHit("layout")
		c.Logger.Debug("layout cache hit", "nodes", g.NodeCount())
		return nil
	}
	observability.Cache().OnCacheMiss("layout")

	if err := c.Inner.Layout(g); err != nil {
		return err
	}

	data, err := json.Marshal(g.Positions())
	if err != nil {
		return err
	}
	if err := c.Cache.Set(ctx, key, data, c.TTL); err != nil {
		c.Logger.Warn("layout cache write failed", "err", err)
		return nil
	}
	observability.Cache().OnCacheSet("layout", len(data))
	return nil
}

// apply copies cached positions into g. It reports false unless every node
// of g was found in the cached entry.
func (c *Cached) apply(ctx context.Context, g *Graph, key string) bool {
	data, hit, err := c.Cache.Get(ctx, key)
	if err != nil {
		c.Logger.Warn("layout cache read failed", "err", err)
		return false
	}
	if !hit {
		return false
	}

	var positions map[string]Position
	if err := json.Unmarshal(data, &positions); err != nil {
		return false
	}
	for _, id := range g.order {
		if _, ok := positions[id]; !ok {
			return false
		}
	}
	for _, id := range g.order {
		g.SetPosition(id, positions[id])
	}
	return true
}
