// Package pkg provides the core libraries of tidytree.
//
// # Overview
//
// tidytree lays out ordered trees and forests with the linear-time
// Walker/Buchheim algorithm and draws them. The pkg directory is organized
// into these areas:
//
//  1. [tree], [tidy], [geom] - Tree structure, layout engine and fitting
//  2. [literal] - Input documents (JSON, YAML, diagram scripts)
//  3. [graph] - Serialization of laid-out forests
//  4. [render] - SVG, PDF, PNG, DOT and text output
//  5. [pipeline] - Orchestration (decode → layout → render) with caching
//  6. [cache], [config], [observability], [errors] - Infrastructure
//  7. [server], [watch] - HTTP API and file watching
//
// # Architecture
//
// The typical data flow through tidytree:
//
//	Tree document (.json, .yaml, .tree)
//	         ↓
//	    [literal] package (decode literals, styles, derivations)
//	         ↓
//	    [tree] package (indexed forest with a synthetic root)
//	         ↓
//	    [tidy] package (abstract coordinates)
//	         ↓
//	    [geom] package (fit into the frame)
//	         ↓
//	    [render] package (SVG/PDF/PNG/DOT/text output)
//
// # Quick Start
//
// Lay out a tree and render it as SVG:
//
//	import (
//	    "context"
//
//	    "github.com/matzehuels/tidytree/pkg/pipeline"
//	)
//
//	src, _ := pipeline.ReadSource("tree.json")
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), src, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// The lower-level packages can be used directly:
//
//	t, _ := tree.Build(tree.Node("S", tree.Leaf("NP"), tree.Leaf("VP")))
//	res := tidy.Layout(t, tidy.Options{})
//
// [tree]: github.com/matzehuels/tidytree/pkg/tree
// [tidy]: github.com/matzehuels/tidytree/pkg/tidy
// [geom]: github.com/matzehuels/tidytree/pkg/geom
// [literal]: github.com/matzehuels/tidytree/pkg/literal
// [graph]: github.com/matzehuels/tidytree/pkg/graph
// [render]: github.com/matzehuels/tidytree/pkg/render
// [pipeline]: github.com/matzehuels/tidytree/pkg/pipeline
// [cache]: github.com/matzehuels/tidytree/pkg/cache
// [config]: github.com/matzehuels/tidytree/pkg/config
// [observability]: github.com/matzehuels/tidytree/pkg/observability
// [errors]: github.com/matzehuels/tidytree/pkg/errors
// [server]: github.com/matzehuels/tidytree/pkg/server
// [watch]: github.com/matzehuels/tidytree/pkg/watch
package pkg
