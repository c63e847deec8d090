package sink

import (
	"github.com/matzehuels/tidytree/pkg/graph"
)

// RenderJSON exports the layout document as indented JSON. The output can be
// read back with [graph.UnmarshalLayout] and rendered identically.
func RenderJSON(l graph.Layout) ([]byte, error) {
	return graph.MarshalLayout(l)
}

// RenderYAML exports the layout document as YAML.
func RenderYAML(l graph.Layout) ([]byte, error) {
	return graph.MarshalLayoutYAML(l)
}
