package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string          // output file, or base path for several formats
	formats  []render.Format // svg, graphviz, dot, json
	title    string          // heading drawn above the chart (svg)
	detailed bool            // node type and content props in labels
	chart    chartOverrides
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <definition>",
		Short: "Lay out a chart definition and render it",
		Long: `Render lays out a chart definition (.json, .toml, .yaml) and writes it
in one or more formats:

  svg       boxes and edges at the computed layout positions
  graphviz  SVG laid out and drawn by Graphviz
  dot       Graphviz DOT source
  json      chart snapshot with positions and edge vertices`,
		Example: `  orgchart render acme.yaml
  orgchart render acme.yaml -f svg,json -o out/acme
  orgchart render acme.toml -e graphviz --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (several)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), graphviz, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title (svg; defaults to the definition name)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node type and content props")
	opts.chart.register(cmd)

	return cmd
}

// parseFormats parses the --format flag. Empty means svg.
func parseFormats(s string) ([]render.Format, error) {
	if strings.TrimSpace(s) == "" {
		return []render.Format{render.FormatSVG}, nil
	}
	var out []render.Format
	for _, part := range strings.Split(s, ",") {
		f, err := render.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	stats, restore := trackLayout()
	defer restore()

	prog := newProgress(c.Logger)
	s, def, err := c.loadSession(ctx, path, opts.chart)
	if err != nil {
		return err
	}
	defer s.Close()
	prog.done(fmt.Sprintf("Built %d nodes", s.chart.Len()))

	snap := s.chart.Snapshot()
	title := opts.title
	if title == "" {
		title = def.Name
	}

	base := basePath(opts.output, path)
	var written []string
	for _, f := range opts.formats {
		out, err := c.renderFormat(ctx, snap, f, render.Options{Title: title, Detailed: opts.detailed})
		if err != nil {
			return err
		}
		dst := outputPath(opts.output, base, f, len(opts.formats))
		if err := writeOutput(dst, out); err != nil {
			return err
		}
		written = append(written, dst)
	}

	printSuccess("Rendered %s", StyleHighlight.Render(def.Name))
	printStats(len(snap.Nodes), len(snap.Edges), stats.summary())
	for _, f := range written {
		printFile(f)
	}
	return nil
}

func (c *CLI) renderFormat(ctx context.Context, snap orgchart.Snapshot, f render.Format, o render.Options) ([]byte, error) {
	if f != render.FormatGraphviz {
		return render.Render(ctx, snap, f, o)
	}
	spin := newSpinner(ctx, "Rendering with Graphviz...")
	spin.Start()
	defer spin.Stop()
	return render.Render(ctx, snap, f, o)
}

// basePath is the output path without extension.
func basePath(output, input string) string {
	if output != "" {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// outputPath picks the file for format f. A single format writes to
// output verbatim when given. Graphviz output gets a ".graphviz.svg"
// suffix so it does not overwrite plain svg.
func outputPath(output, base string, f render.Format, count int) string {
	if count == 1 && output != "" {
		return output
	}
	if f == render.FormatGraphviz {
		return base + ".graphviz" + f.Ext()
	}
	return base + f.Ext()
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
