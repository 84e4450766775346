package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/internal/server"
	"github.com/matzehuels/orgchart/pkg/orgio"
	"github.com/matzehuels/orgchart/pkg/store"
)

type serveOpts struct {
	addr       string
	definition string // seed the chart from a definition file
	stored     string // seed the chart from the snapshot store
	noStore    bool
	chart      chartOverrides
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live chart over HTTP",
		Example: `  orgchart serve
  orgchart serve --addr :9000 --definition acme.yaml
  curl -X POST localhost:8080/nodes -d '{"nodes":[{"id":"ceo","name":"Ada"}]}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().StringVar(&opts.definition, "definition", "", "load this definition file at startup")
	cmd.Flags().StringVar(&opts.stored, "stored", "", "load this stored chart at startup")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "disable the /charts routes")
	cmd.MarkFlagsMutuallyExclusive("definition", "stored")
	opts.chart.register(cmd)
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.config()
	if err != nil {
		return err
	}
	cfg = opts.chart.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	layouter, lc, err := cfg.Layouter(ctx, logger)
	if err != nil {
		return err
	}
	defer lc.Close()

	var st store.Store
	if !opts.noStore {
		if st, err = store.Open(ctx, cfg.StoreConfig()); err != nil {
			return err
		}
		defer st.Close()
	}

	srv, err := server.New(server.Options{
		Logger:       logger,
		ChartOptions: cfg.ChartOptions(layouter),
		Store:        st,
	})
	if err != nil {
		return err
	}
	if err := seedServer(ctx, srv, st, opts); err != nil {
		return err
	}

	addr := opts.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	printInfo("Serving on %s", StyleHighlight.Render("http://"+addr))
	printNextStep("Render the live chart", "curl http://"+addr+"/chart.svg")

	err = srv.ListenAndServe(ctx, addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func seedServer(ctx context.Context, srv *server.Server, st store.Store, opts serveOpts) error {
	switch {
	case opts.definition != "":
		def, err := orgio.Load(opts.definition)
		if err != nil {
			return err
		}
		if _, err := orgio.Build(srv.Chart(), def); err != nil {
			return err
		}
		printSuccess("Loaded %s (%d nodes)", def.Name, srv.Chart().Len())
	case opts.stored != "":
		if st == nil {
			return errors.New("--stored needs a chart store")
		}
		snap, err := st.Load(ctx, opts.stored)
		if err != nil {
			return err
		}
		if err := srv.Restore(opts.stored, snap); err != nil {
			return err
		}
		printSuccess("Loaded %s (%d nodes)", opts.stored, len(snap.Nodes))
	}
	return nil
}
