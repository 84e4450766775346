// Package render turns organization chart snapshots into output documents.
//
// # Formats
//
// [Render] dispatches on a [Format]:
//
//   - [FormatSVG]: hand-drawn boxes and routed edges at the chart's own
//     layout positions (in the [svg] subpackage)
//   - [FormatGraphviz]: SVG laid out and drawn by Graphviz (in [dot])
//   - [FormatDOT]: Graphviz DOT source (in [dot])
//   - [FormatJSON]: the snapshot itself, indented
//
// Usage:
//
//	snap := chart.Snapshot()
//	out, err := render.Render(ctx, snap, render.FormatSVG)
//
// [svg]: github.com/matzehuels/orgchart/pkg/render/svg
// [dot]: github.com/matzehuels/orgchart/pkg/render/dot
package render
