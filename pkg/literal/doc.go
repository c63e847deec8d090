// Package literal decodes tree diagram documents.
//
// A document is the forest to draw plus optional drawing hints. The same
// content can be written as JSON, as YAML, or as a diagram script:
//
//	:: width 500
//	:: margin 10
//	[{
//	  trees: [["E", ["E", ["T"]], ["+"], ["T"]]],
//	  nodeStyles: [["^[a-z+]$", {style: "open", font: "rm"}],
//	               ["[A-Z]",    {style: "circle", font: "i", jfont: "italic 12pt serif"}]]
//	}]
//
// Lines starting with "::" set [Options]; everything else is the body.
// Script bodies are parsed as YAML, so the unquoted keys above are accepted.
//
// Trees use the tuple form ["label", child, ...] or the object form
// {"label": ..., "children": [...]}; see [tree.FromValue]. A "derivation"
// list of {rule, trees} steps describes how a forest is built up one rule at
// a time.
//
// Decoding validates everything up front: malformed trees are
// STRUCTURAL_INPUT errors, bad styles and options INVALID_STYLE and
// INVALID_OPTION, and node style patterns are compiled as regular
// expressions.
package literal
