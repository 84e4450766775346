// Package orgio reads chart definitions and writes chart snapshots.
//
// # Definitions
//
// A definition is a named tree of node specs. The same structure is
// accepted as JSON, TOML or YAML; the format is picked by file extension:
//
//	{
//	  "version": 1,
//	  "name": "acme",
//	  "nodes": [
//	    {"id": "ceo", "name": "Jane Doe", "children": [
//	      {"name": "CTO"},
//	      {"name": "CFO", "contentProps": {"office": "Berlin"}}
//	    ]}
//	  ]
//	}
//
// In TOML, nodes are arrays of tables:
//
//	version = 1
//	name = "acme"
//
//	[[nodes]]
//	id = "ceo"
//	name = "Jane Doe"
//
//	  [[nodes.children]]
//	  name = "CTO"
//
// Use [Load] to read a file and [Build] to append a definition to a chart.
// Build appends roots first, then each level of children, so every node is
// laid out under an already placed parent.
//
// # Snapshots
//
// [WriteSnapshot] encodes an [orgchart.Snapshot], including computed
// positions and edge routes, as indented JSON. [ReadSnapshot] decodes it
// again; [FromSnapshot] turns it back into a definition.
package orgio
