package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/engine"
	"github.com/matzehuels/orgchart/pkg/heart"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/orgio"
	"github.com/matzehuels/orgchart/pkg/surface"
)

func (c *CLI) editCommand() *cobra.Command {
	var chart chartOverrides

	cmd := &cobra.Command{
		Use:   "edit <definition>",
		Short: "Edit a chart definition interactively",
		Long: `Edit opens a chart definition in a terminal editor. A missing file starts
an empty chart; pressing s writes the chart back in the file's format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd.Context(), args[0], chart)
		},
	}
	chart.register(cmd)
	return cmd
}

func (c *CLI) runEdit(ctx context.Context, path string, o chartOverrides) error {
	if _, err := orgio.FormatFromPath(path); err != nil {
		return err
	}
	def, err := orgio.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		def = orgio.Definition{Version: orgio.CurrentVersion, Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))}
	case err != nil:
		return err
	}

	cfg, err := c.config()
	if err != nil {
		return err
	}
	cfg = o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	// The editor owns the terminal; chart logs would tear the screen.
	quiet := log.New(io.Discard)
	layouter, lc, err := cfg.Layouter(ctx, quiet)
	if err != nil {
		return err
	}
	defer lc.Close()

	appended := 0
	e := engine.New(
		engine.WithLogger(quiet),
		engine.WithChartOptions(cfg.ChartOptions(layouter)...),
		engine.WithEffects(func(t heart.LifeCycleType, payload any) {
			if t == heart.OnNodesAppend {
				appended += len(orgchart.AppendedNodes(t, payload))
			}
		}),
	)
	defer e.Unmount()
	if err := e.Chart().SetGraph(surface.NewCanvas()); err != nil {
		return err
	}
	if _, err := orgio.Build(e.Chart(), def); err != nil {
		return err
	}
	loaded := appended

	model := NewEditorModel(e, def.Name, func(d orgio.Definition) error {
		return orgio.Export(d, path)
	})
	result, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}

	final := result.(EditorModel)
	switch {
	case final.Dirty:
		printWarning("Quit with unsaved changes to %s", path)
	case final.Saved:
		printSuccess("Saved %s (%d nodes)", path, e.Chart().Len())
	}
	printDetail("%d nodes loaded, %d appended during the session", loaded, appended-loaded)
	return nil
}
