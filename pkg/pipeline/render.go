package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/observability"
	"github.com/matzehuels/tidytree/pkg/render/nodelink"
	"github.com/matzehuels/tidytree/pkg/render/sink"
)

// ContentType returns the MIME type of a rendered format.
func ContentType(format string) string {
	switch format {
	case FormatSVG, FormatGraphviz:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// RenderLayout generates output artifacts in the requested formats. opts
// must have been validated with [Options.ValidateForRender].
func RenderLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderFormats(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	dotOpts := nodelink.Options{Detailed: opts.Detailed, Free: opts.Free}
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = sink.RenderSVG(l, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, l, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.PNGScale))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, l, sink.WithPDFSVGOptions(svgOpts...))
		case FormatDOT:
			data = []byte(nodelink.ToDOT(l, dotOpts))
		case FormatGraphviz:
			data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(l, dotOpts), dotOpts)
		case FormatText:
			data = []byte(sink.RenderText(l, opts.Cols, opts.Rows))
		case FormatJSON:
			data, err = sink.RenderJSON(l)
		case FormatYAML:
			data, err = sink.RenderYAML(l)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, errors.WithContext(err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	if opts.Background != "" {
		out = append(out, sink.WithBackground(opts.Background))
	}
	if opts.Class != "" {
		out = append(out, sink.WithClass(opts.Class))
	}
	return out
}
