// Package pipeline provides the diagram pipeline for tidytree.
//
// This package implements the complete decode → layout → render pipeline
// used by the CLI and the API server. By centralizing this logic, both entry
// points apply the same defaults, caching, and validation.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: Read a tree literal, document, or diagram script
//  2. Layout: Build the forest, run the tidy layout, and fit it to the frame
//  3. Render: Generate output in various formats (SVG, PDF, PNG, DOT, text, JSON, YAML)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	src, err := pipeline.ReadSource("grammar.tree")
//	result, err := runner.Execute(ctx, src, pipeline.Options{Formats: []string{"svg"}})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	doc, err := runner.Decode(ctx, src)
//	layout, err := runner.Layout(ctx, doc, src.Hash(), opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tidytree/pkg/cache"
	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/geom"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/literal"
	"github.com/matzehuels/tidytree/pkg/render/styles"
	"github.com/matzehuels/tidytree/pkg/tidy"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 700.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0

	// DefaultMargin is the default frame margin in pixels.
	DefaultMargin = 20.0

	// DefaultScale is the default node radius scale.
	DefaultScale = 1.1

	// DefaultPNGScale is the default PNG resolution multiplier.
	DefaultPNGScale = 2.0

	// DefaultCols and DefaultRows size the text raster.
	DefaultCols = 80
	DefaultRows = 24

	// StepMinSpan and StepMinDepth are the fit hints used when stepping
	// through a derivation, so the drawing scale stays stable between steps.
	StepMinSpan  = 8.0
	StepMinDepth = 5.0
)

// DefaultFont is the default label font.
const DefaultFont = styles.DefaultFont

// DefaultStyle is the default node style.
const DefaultStyle = literal.StyleOpen

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatText = "txt"
	FormatJSON = "json"
	FormatYAML = "yaml"

	// FormatGraphviz is the DOT export drawn by Graphviz, for comparing
	// its rendering with the native SVG.
	FormatGraphviz = "gv.svg"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatText, FormatJSON, FormatYAML, FormatGraphviz}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the diagram pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Source options
	Step int `json:"step,omitempty"` // derivation step, 1-based; 0 draws the document trees

	// Layout options
	Distance float64 `json:"distance,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Margin   float64 `json:"margin,omitempty"`
	MinSpan  float64 `json:"min_span,omitempty"`
	MinDepth float64 `json:"min_depth,omitempty"`

	// Drawing options recorded in the layout
	Style string  `json:"style,omitempty"`
	Font  string  `json:"font,omitempty"`
	Scale float64 `json:"scale,omitempty"`
	Class string  `json:"class,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"`
	PNGScale   float64  `json:"png_scale,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"` // DOT labels show paths and coordinates
	Free       bool     `json:"free,omitempty"`     // DOT positions chosen by Graphviz
	Cols       int      `json:"cols,omitempty"`
	Rows       int      `json:"rows,omitempty"`

	// Refresh bypasses cached results.
	Refresh bool `json:"refresh,omitempty"`

	// Pinned lists the options among margin, min_span and min_depth that
	// were set to an explicit 0, which defaults must keep.
	Pinned []string `json:"pinned,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the decoded source.
	Document *literal.Document

	// DocHash is the content hash of the source.
	DocHash string

	// Layout is the fitted layout.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes        int
	ContourSteps int
	DecodeTime   time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	return errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "format", format, Formats...)
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// Pin marks name as explicitly set to zero.
func (o *Options) Pin(name string) {
	if !o.IsPinned(name) {
		o.Pinned = append(o.Pinned, name)
	}
}

// IsPinned reports whether name was explicitly set to zero.
func (o *Options) IsPinned(name string) bool {
	for _, p := range o.Pinned {
		if p == name {
			return true
		}
	}
	return false
}

// ApplyDocument fills options left unset from the `::` settings of a
// diagram script. Explicit options win. A document `:: margin 0` pins the
// margin at zero.
func (o *Options) ApplyDocument(d literal.Options) {
	setFloat := func(dst *float64, v float64, key, name string) {
		if *dst != 0 || !d.Has(key) || (name != "" && o.IsPinned(name)) {
			return
		}
		*dst = v
		if v == 0 && name != "" {
			o.Pin(name)
		}
	}
	setString := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	setFloat(&o.Width, float64(d.Width), "width", "")
	setFloat(&o.Height, float64(d.Height), "height", "")
	setFloat(&o.Margin, float64(d.Margin), "margin", "margin")
	setFloat(&o.MinSpan, d.MinSpan, "minSpan", "min_span")
	setFloat(&o.MinDepth, d.MinDepth, "minDepth", "min_depth")
	setString(&o.Class, d.Class)
	setString(&o.Font, d.Font)
	setString(&o.Style, d.Style)
}

// FillFrom copies the layout, drawing and render settings of d into the
// options left unset. Refresh, Step and Logger are not copied.
func (o *Options) FillFrom(d Options) {
	for _, f := range []struct{ dst, src *float64 }{
		{&o.Distance, &d.Distance}, {&o.Width, &d.Width}, {&o.Height, &d.Height},
		{&o.Scale, &d.Scale}, {&o.PNGScale, &d.PNGScale},
	} {
		if *f.dst == 0 {
			*f.dst = *f.src
		}
	}
	for _, f := range []struct {
		name     string
		dst, src *float64
	}{
		{"margin", &o.Margin, &d.Margin}, {"min_span", &o.MinSpan, &d.MinSpan}, {"min_depth", &o.MinDepth, &d.MinDepth},
	} {
		if *f.dst != 0 || o.IsPinned(f.name) {
			continue
		}
		*f.dst = *f.src
		if d.IsPinned(f.name) {
			o.Pin(f.name)
		}
	}
	for _, f := range []struct{ dst, src *string }{
		{&o.Style, &d.Style}, {&o.Font, &d.Font}, {&o.Class, &d.Class}, {&o.Background, &d.Background},
	} {
		if *f.dst == "" {
			*f.dst = *f.src
		}
	}
	if o.Cols == 0 {
		o.Cols = d.Cols
	}
	if o.Rows == 0 {
		o.Rows = d.Rows
	}
	if len(o.Formats) == 0 && len(d.Formats) > 0 {
		o.Formats = append([]string(nil), d.Formats...)
	}
	o.Detailed = o.Detailed || d.Detailed
	o.Free = o.Free || d.Free
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Distance == 0 {
		o.Distance = tidy.DefaultDistance
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Margin == 0 && !o.IsPinned("margin") {
		o.Margin = DefaultMargin
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Font == "" {
		o.Font = DefaultFont
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if o.Step < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "step must be positive, got %d", o.Step)
	}
	for name, v := range map[string]float64{
		"distance": o.Distance, "width": o.Width, "height": o.Height, "scale": o.Scale,
	} {
		if v <= 0 {
			return errors.New(errors.ErrCodeInvalidOption, "%s must be positive, got %g", name, v)
		}
	}
	for name, v := range map[string]float64{
		"margin": o.Margin, "min_span": o.MinSpan, "min_depth": o.MinDepth,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidOption, "%s must not be negative, got %g", name, v)
		}
	}
	if 2*o.Margin >= o.Width || 2*o.Margin >= o.Height {
		return errors.New(errors.ErrCodeInvalidOption, "margin %g leaves no room in a %gx%g frame", o.Margin, o.Width, o.Height)
	}
	if err := literal.ValidateStyle(o.Style); err != nil {
		return err
	}
	if _, err := styles.ParseFont(o.Font); err != nil {
		return err
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Cols == 0 {
		o.Cols = DefaultCols
	}
	if o.Rows == 0 {
		o.Rows = DefaultRows
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.Cols < 0 || o.Rows < 0 || o.PNGScale < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "text size and png scale must not be negative")
	}
	return ValidateFormats(o.Formats)
}

// Hints returns the fit hints.
func (o *Options) Hints() geom.Hints {
	return geom.Hints{MinSpan: o.MinSpan, MinDepth: o.MinDepth}
}

// Frame returns the target rectangle of the fit: the frame minus margins.
func (o *Options) Frame() geom.Rect {
	return geom.Rect{MaxX: o.Width, MaxY: o.Height}.Inset(o.Margin)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Step:     o.Step,
		Distance: o.Distance,
		Width:    o.Width,
		Height:   o.Height,
		Margin:   o.Margin,
		MinSpan:  o.MinSpan,
		MinDepth: o.MinDepth,
		Style:    o.Style,
		Font:     o.Font,
		Scale:    o.Scale,
		Class:    o.Class,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Background: o.Background,
		Class:      o.Class,
		PNGScale:   o.PNGScale,
		Detailed:   o.Detailed,
		Free:       o.Free,
		Cols:       o.Cols,
		Rows:       o.Rows,
	}
}
