package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

type showOpts struct {
	stored string // load from the snapshot store instead of a definition
	chart  chartOverrides
}

func (c *CLI) showCommand() *cobra.Command {
	var opts showOpts

	cmd := &cobra.Command{
		Use:   "show [definition]",
		Short: "Print chart nodes and their layout positions",
		Example: `  orgchart show acme.yaml
  orgchart show --stored acme`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case opts.stored != "" && len(args) == 0:
				return c.showStored(cmd.Context(), opts.stored)
			case opts.stored == "" && len(args) == 1:
				return c.showDefinition(cmd.Context(), args[0], opts.chart)
			}
			return fmt.Errorf("pass a definition file or --stored <name>")
		},
	}

	cmd.Flags().StringVar(&opts.stored, "stored", "", "show a chart from the snapshot store")
	opts.chart.register(cmd)
	return cmd
}

func (c *CLI) showDefinition(ctx context.Context, path string, o chartOverrides) error {
	s, def, err := c.loadSession(ctx, path, o)
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Println(StyleTitle.Render(def.Name))
	fmt.Println(nodeTable(s.chart.Snapshot()))
	return nil
}

func (c *CLI) showStored(ctx context.Context, name string) error {
	st, err := c.openStore(ctx, "")
	if err != nil {
		return err
	}
	defer st.Close()

	snap, err := st.Load(ctx, name)
	if err != nil {
		return err
	}
	fmt.Println(StyleTitle.Render(name))
	fmt.Println(nodeTable(snap))
	return nil
}

// nodeTable renders one row per node, indented by depth.
func nodeTable(snap orgchart.Snapshot) string {
	parents := make(map[string]string, len(snap.Nodes))
	for _, n := range snap.Nodes {
		parents[n.ID] = n.Parent
	}
	depth := func(id string) int {
		d := 0
		for p := parents[id]; p != "" && d <= len(parents); p = parents[p] {
			d++
		}
		return d
	}

	rows := make([][]string, 0, len(snap.Nodes))
	hidden := make(map[int]bool)
	for i, n := range ordered(snap) {
		name := n.Name
		if name == "" {
			name = "—"
		}
		if !n.Visible {
			hidden[i] = true
		}
		rows = append(rows, []string{
			strings.Repeat("  ", depth(n.ID)) + n.ID,
			name,
			n.Type,
			fmt.Sprintf("%.0f", n.X),
			fmt.Sprintf("%.0f", n.Y),
			fmt.Sprintf("%.0f×%.0f", n.Width, n.Height),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Type", "X", "Y", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return styleHeader.Padding(0, 1)
			case hidden[row]:
				return base.Foreground(colorDim)
			case col == 3 || col == 4:
				return base.Foreground(colorCyan)
			}
			return base.Foreground(colorWhite)
		})
	return t.Render()
}

// ordered returns nodes depth-first so children follow their parent.
func ordered(snap orgchart.Snapshot) []orgchart.NodeSnapshot {
	byID := make(map[string]orgchart.NodeSnapshot, len(snap.Nodes))
	for _, n := range snap.Nodes {
		byID[n.ID] = n
	}
	g := snap.LayoutGraph(layout.DefaultOptions())

	out := make([]orgchart.NodeSnapshot, 0, len(snap.Nodes))
	seen := make(map[string]bool, len(snap.Nodes))
	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, byID[id])
		for _, k := range g.Children(id) {
			walk(k)
		}
	}
	for _, r := range g.Sources() {
		walk(r)
	}
	return out
}
