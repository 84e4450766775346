// Package svg draws an organization chart as a standalone SVG document.
//
// The input is what a chart pushed to its rendering surface: node boxes
// positioned by their top-left corner and edges routed through two
// vertices. [FromCanvas] reads an in-memory surface, [FromSnapshot] a stored
// snapshot; both feed [Render].
//
//	doc := svg.FromCanvas(canvas, svg.WithPadding(24), svg.WithDetails())
//	os.WriteFile("chart.svg", doc, 0o644)
//
// Hidden nodes are skipped along with every edge touching them. Labels are
// sized to fit their box and truncated when they cannot.
package svg
