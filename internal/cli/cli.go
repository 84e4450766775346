// Package cli implements the orgchart command-line interface.
//
// # Commands
//
//   - render: lay out a chart definition and write SVG, DOT, Graphviz SVG or JSON
//   - show: print a chart's nodes and positions as a table
//   - edit: interactive terminal editor for a definition file
//   - serve: HTTP API around a live chart
//   - store: save, load, list and delete chart snapshots
//   - cache: manage the layout cache
//
// Settings come from orgchart.toml (see internal/config); --config points
// at another file. All commands support --verbose (-v) for debug logging.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/internal/config"
	"github.com/matzehuels/orgchart/pkg/buildinfo"
	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/orgio"
	"github.com/matzehuels/orgchart/pkg/store"
	"github.com/matzehuels/orgchart/pkg/surface"
)

const appName = "orgchart"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "orgchart lays out and edits organization charts",
		Long:         `orgchart builds organization charts from JSON, TOML or YAML definitions, lays them out as trees and renders them to SVG, Graphviz DOT or JSON.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./orgchart.toml or ~/.config/orgchart/orgchart.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration file once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "engine", cfg.Layout.Engine, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Chart Factory
// =============================================================================

// session is a chart bound to an in-memory canvas plus the cache backing
// its layouter.
type session struct {
	chart  *orgchart.Chart
	canvas *surface.Canvas
	cache  cache.Cache
}

func (s *session) Close() error { return s.cache.Close() }

// newSession creates an empty chart configured from orgchart.toml.
// Overrides are applied on top of the config before the chart is built.
func (c *CLI) newSession(ctx context.Context, o chartOverrides) (*session, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	cfg = o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	layouter, lc, err := cfg.Layouter(ctx, c.Logger)
	if err != nil {
		return nil, err
	}
	opts := append(cfg.ChartOptions(layouter), orgchart.WithLogger(c.Logger))
	ch := orgchart.New(opts...)
	ch.Init()

	canvas := surface.NewCanvas()
	if err := ch.SetGraph(canvas); err != nil {
		lc.Close()
		return nil, err
	}
	return &session{chart: ch, canvas: canvas, cache: lc}, nil
}

// loadSession builds the chart described by the definition at path.
func (c *CLI) loadSession(ctx context.Context, path string, o chartOverrides) (*session, orgio.Definition, error) {
	def, err := orgio.Load(path)
	if err != nil {
		return nil, def, err
	}
	s, err := c.newSession(ctx, o)
	if err != nil {
		return nil, def, err
	}
	if _, err := orgio.Build(s.chart, def); err != nil {
		s.Close()
		return nil, def, err
	}
	return s, def, nil
}

// openStore opens the snapshot store from config, with backend overriding
// the configured one when set.
func (c *CLI) openStore(ctx context.Context, backend string) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	sc := cfg.StoreConfig()
	if backend != "" {
		sc.Backend = backend
	}
	return store.Open(ctx, sc)
}

// chartOverrides are per-command flags that take precedence over config.
type chartOverrides struct {
	engine  string
	noCache bool
}

func (o chartOverrides) apply(cfg *config.Config) *config.Config {
	out := *cfg
	if o.engine != "" {
		out.Layout.Engine = o.engine
	}
	if o.noCache {
		out.Cache.Backend = config.CacheNone
	}
	return &out
}

func (o *chartOverrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.engine, "engine", "e", "", "layout engine: tree, graphviz (default from config)")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the layout cache")
}
