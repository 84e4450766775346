package orgchart

import (
	"github.com/matzehuels/orgchart/pkg/errors"
)

// NodeSpec describes a node to create. An empty ID is replaced by a
// generated one. Zero Width or Height take the chart's default node size.
//
// Children is only read by definition loaders; the chart's append
// operations build one level at a time.
type NodeSpec struct {
	ID           string         `json:"id,omitempty" toml:"id,omitempty" yaml:"id,omitempty"`
	Name         string         `json:"name" toml:"name" yaml:"name"`
	Type         string         `json:"type,omitempty" toml:"type,omitempty" yaml:"type,omitempty"`
	Selectable   bool           `json:"selectable,omitempty" toml:"selectable,omitempty" yaml:"selectable,omitempty"`
	ContentProps map[string]any `json:"contentProps,omitempty" toml:"contentProps,omitempty" yaml:"contentProps,omitempty"`
	Width        float64        `json:"width,omitempty" toml:"width,omitempty" yaml:"width,omitempty"`
	Height       float64        `json:"height,omitempty" toml:"height,omitempty" yaml:"height,omitempty"`
	Children     []NodeSpec     `json:"children,omitempty" toml:"children,omitempty" yaml:"children,omitempty"`
}

// Count returns the number of specs in the tree rooted at s.
func (s NodeSpec) Count() int {
	n := 1
	for _, c := range s.Children {
		n += c.Count()
	}
	return n
}

// validateSpecs checks ids and sizes of a batch of specs, including nested
// children, against each other and against the chart registry.
func (c *Chart) validateSpecs(specs []NodeSpec) error {
	seen := make(map[string]bool)
	var walk func([]NodeSpec) error
	walk = func(specs []NodeSpec) error {
		for _, s := range specs {
			if err := errors.ValidateNodeID(s.ID); err != nil {
				return err
			}
			if s.Width < 0 || s.Height < 0 {
				return errors.New(errors.ErrCodeInvalidSpec, "node %q: negative size %gx%g", s.ID, s.Width, s.Height)
			}
			if s.ID != "" {
				if seen[s.ID] {
					return errors.New(errors.ErrCodeDuplicateID, "node id %q appears twice", s.ID)
				}
				if _, ok := c.registry[s.ID]; ok {
					return errors.New(errors.ErrCodeDuplicateID, "node id %q already registered", s.ID)
				}
				seen[s.ID] = true
			}
			if err := walk(s.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(specs)
}
