package render

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
	"github.com/matzehuels/orgchart/pkg/render/dot"
	"github.com/matzehuels/orgchart/pkg/render/svg"
)

// Format names an output format.
type Format string

const (
	FormatSVG      Format = "svg"
	FormatGraphviz Format = "graphviz"
	FormatDOT      Format = "dot"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{FormatSVG, FormatGraphviz, FormatDOT, FormatJSON}

// Ext returns the file extension for output in format f.
func (f Format) Ext() string {
	if f == FormatGraphviz {
		return ".svg"
	}
	return "." + string(f)
}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeUnsupported, "unknown render format %q", s)
	}
	return f, nil
}

// Options configures [Render].
type Options struct {
	Title    string
	Detailed bool
}

// Render produces the document for snapshot s in format f.
func Render(ctx context.Context, s orgchart.Snapshot, f Format, opts ...Options) ([]byte, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	switch f {
	case FormatSVG:
		svgOpts := []svg.Option{svg.WithTitle(o.Title)}
		if o.Detailed {
			svgOpts = append(svgOpts, svg.WithDetails())
		}
		return svg.FromSnapshot(s, svgOpts...), nil
	case FormatDOT:
		return []byte(dot.ToDOT(s, dot.Options{Detailed: o.Detailed})), nil
	case FormatGraphviz:
		out, err := dot.RenderSVG(ctx, dot.ToDOT(s, dot.Options{Detailed: o.Detailed}))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "graphviz render")
		}
		return out, nil
	case FormatJSON:
		out, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot")
		}
		return append(out, '\n'), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown render format %q", f)
}
