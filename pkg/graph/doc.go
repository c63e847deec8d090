// Package graph provides the serialization format for laid-out forests.
//
// This package defines the wire format of tidytree's layouts, used for
// files, API responses and caching.
//
// # Architecture
//
// The package sits at the serialization boundary:
//
//   - pkg/tree.Tree: internal tree structure
//   - pkg/tidy.Result: abstract coordinates indexed by node
//   - [Layout]: positioned nodes and edges (this package)
//
// Use [FromResult] to build a Layout and [Layout.Literals] to recover the
// forest structure from one.
//
// # Format
//
//	{
//	  "viz_type": "tidy",
//	  "width": 700, "height": 600, "margin": 20, "distance": 1,
//	  "bounds": {"min_x": -0.5, "min_y": 0, "max_x": 1, "max_y": 2},
//	  "transform": {"scale_x": 440, "scale_y": 280, "offset_x": 240, "offset_y": 20},
//	  "nodes": [
//	    {"id": "0", "label": "A", "depth": 0, "x": 240, "y": 20, "raw_x": 0, "raw_y": 0},
//	    {"id": "0.0", "label": "B", "parent": "0", "depth": 1, ...}
//	  ],
//	  "edges": [{"from": "0.0", "to": "0"}]
//	}
//
// Node IDs are dotted sibling-index paths, so they identify nodes in the
// originating literal. Edges point from a child to its parent.
//
// # Files
//
//	graph.WriteLayoutFile(l, "tree.layout.json")  // JSON
//	graph.WriteLayoutFile(l, "tree.layout.yaml")  // YAML
//	l, err := graph.ReadLayoutFile("tree.layout.json")
//
// Reading validates the document: it must contain nodes, IDs must be
// unique, and every parent and edge endpoint must exist.
package graph
