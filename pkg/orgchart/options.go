package orgchart

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/orgchart/pkg/heart"
	"github.com/matzehuels/orgchart/pkg/layout"
)

// Option configures a Chart.
type Option func(*Chart)

// WithLayouter sets the layout engine. The default is [layout.Tree].
func WithLayouter(l layout.Layouter) Option {
	return func(c *Chart) { c.layouter = l }
}

// WithLayoutOptions sets rank direction and spacing of the layout graph.
func WithLayoutOptions(opts layout.Options) Option {
	return func(c *Chart) { c.layoutOpts = opts }
}

// WithNodeSize sets the size of nodes whose spec leaves it unset.
func WithNodeSize(width, height float64) Option {
	return func(c *Chart) {
		if width > 0 {
			c.nodeWidth = width
		}
		if height > 0 {
			c.nodeHeight = height
		}
	}
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(logger *log.Logger) Option {
	return func(c *Chart) { c.logger = logger }
}

// WithHeart sets the lifecycle bus the chart publishes to.
func WithHeart(h *heart.Heart) Option {
	return func(c *Chart) { c.heart = h }
}

// WithIDGenerator replaces the uuid generator used for nodes without an
// explicit id and for edges.
func WithIDGenerator(gen func() string) Option {
	return func(c *Chart) { c.newID = gen }
}

func defaultID() string { return uuid.NewString() }
