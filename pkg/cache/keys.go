package cache

import "fmt"

// LayoutKeyOpts holds the layout settings that change computed positions
// without changing the layout graph itself.
type LayoutKeyOpts struct {
	Engine  string  `json:"engine"`
	NodeSep float64 `json:"node_sep"`
	RankSep float64 `json:"rank_sep"`
}

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey returns the key for the positions of a layout graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey(fmt.Sprintf("layout:%s", opts.Engine), graphHash, opts)
}
