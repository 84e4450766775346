package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgio"
	"github.com/matzehuels/orgchart/pkg/store"
)

// storeCommand manages chart snapshots in the configured store.
func (c *CLI) storeCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Save, load and list chart snapshots",
		Long: `Store keeps laid-out chart snapshots in the backend configured under
[store] in orgchart.toml: a directory of JSON files (file), a SQLite
database (sqlite) or a MongoDB collection (mongo).`,
	}
	cmd.PersistentFlags().StringVar(&backend, "backend", "", "store backend: file, sqlite, mongo (default from config)")

	cmd.AddCommand(c.storeSaveCommand(&backend))
	cmd.AddCommand(c.storeLoadCommand(&backend))
	cmd.AddCommand(c.storeListCommand(&backend))
	cmd.AddCommand(c.storeDeleteCommand(&backend))
	return cmd
}

// withStore opens the store, showing a spinner for remote backends.
func (c *CLI) withStore(ctx context.Context, backend string, fn func(store.Store) error) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if backend == "" {
		backend = cfg.Store.Backend
	}

	var spin *Spinner
	if backend == store.BackendMongo {
		spin = newSpinner(ctx, "Connecting to MongoDB...")
		spin.Start()
	}
	st, err := c.openStore(ctx, backend)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) storeSaveCommand(backend *string) *cobra.Command {
	var name string
	var chart chartOverrides

	cmd := &cobra.Command{
		Use:   "save <definition>",
		Short: "Lay out a definition and store its snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, def, err := c.loadSession(ctx, args[0], chart)
			if err != nil {
				return err
			}
			defer s.Close()

			if name == "" {
				name = def.Name
			}
			if err := errors.ValidateChartName(name); err != nil {
				return err
			}
			snap := s.chart.Snapshot()
			return c.withStore(ctx, *backend, func(st store.Store) error {
				if err := st.Save(ctx, name, snap); err != nil {
					return err
				}
				printSuccess("Saved %s (%d nodes)", StyleHighlight.Render(name), len(snap.Nodes))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "snapshot name (default: definition name)")
	chart.register(cmd)
	return cmd
}

func (c *CLI) storeLoadCommand(backend *string) *cobra.Command {
	var output string
	var snapshot bool

	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Export a stored chart as a definition or snapshot",
		Example: `  orgchart store load acme -o acme.yaml
  orgchart store load acme --snapshot -o acme.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, *backend, func(st store.Store) error {
				snap, err := st.Load(ctx, args[0])
				if err != nil {
					return err
				}
				if snapshot {
					if output == "" {
						return orgio.WriteSnapshot(os.Stdout, snap)
					}
					if err := orgio.ExportSnapshot(snap, output); err != nil {
						return err
					}
				} else {
					def := orgio.FromSnapshot(args[0], snap)
					if output == "" {
						return orgio.Write(os.Stdout, def, orgio.FormatYAML)
					}
					if err := orgio.Export(def, output); err != nil {
						return err
					}
				}
				printSuccess("Exported %s", StyleHighlight.Render(args[0]))
				printFile(output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout as YAML)")
	cmd.Flags().BoolVar(&snapshot, "snapshot", false, "write the snapshot JSON with positions instead of a definition")
	return cmd
}

func (c *CLI) storeListCommand(backend *string) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored charts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, *backend, func(st store.Store) error {
				infos, err := st.List(ctx)
				if err != nil {
					return err
				}
				if len(infos) == 0 {
					printInfo("No stored charts")
					return nil
				}
				fmt.Println(chartTable(infos, time.Now()))
				return nil
			})
		},
	}
}

func (c *CLI) storeDeleteCommand(backend *string) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored chart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withStore(ctx, *backend, func(st store.Store) error {
				if err := st.Delete(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted %s", args[0])
				return nil
			})
		},
	}
}

func chartTable(infos []store.Info, now time.Time) string {
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{info.Name, fmt.Sprintf("%d", info.Nodes), formatRelativeTime(info.UpdatedAt, now)})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Chart", "Nodes", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col == 1 {
				return lipgloss.NewStyle().Padding(0, 1).Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}

func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
