package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tidytree/pkg/cache"
	tterrors "github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/literal"
	"github.com/matzehuels/tidytree/pkg/observability"
)

func jsonSource(body string) Source {
	return Source{Name: "test.json", Data: []byte(body), Format: literal.FormatJSON}
}

const abcde = `["A", ["B"], ["C", ["D"], ["E"]]]`

const derivation = `{
  "nodeStyles": [["^[A-Z]+$", {"style": "circle", "font": "i"}]],
  "derivation": [
    {"rule": "S ::= NP VP", "trees": [["S", ["NP"], ["VP"]]]},
    {"rule": "NP ::= john", "trees": [["S", ["NP", ["john"]], ["VP"]]]}
  ]
}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"txt", false},
		{"json", false},
		{"yaml", false},
		{"gv.svg", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !tterrors.Is(err, tterrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, tterrors.GetCode(err))
		}
	}

	assert.NoError(t, ValidateFormats(nil), "empty formats should pass")
	assert.Error(t, ValidateFormats([]string{"svg", "gif"}))
}

func TestSetLayoutDefaults(t *testing.T) {
	var o Options
	o.SetLayoutDefaults()
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, DefaultMargin, o.Margin)
	assert.Equal(t, DefaultFont, o.Font)
	assert.Equal(t, DefaultScale, o.Scale)
	assert.Equal(t, literal.StyleOpen, o.Style)
	assert.Equal(t, 1.0, o.Distance)
	assert.NotNil(t, o.Logger)
}

func TestApplyDocument(t *testing.T) {
	o := Options{Width: 300}
	o.ApplyDocument(literal.Options{Width: 500, Height: 200, MinSpan: 8, Class: "diagram", Style: "circle"})
	assert.Equal(t, 300.0, o.Width, "explicit options win")
	assert.Equal(t, 200.0, o.Height)
	assert.Equal(t, 8.0, o.MinSpan)
	assert.Equal(t, "diagram", o.Class)
	assert.Equal(t, "circle", o.Style)
}

func TestFillFrom(t *testing.T) {
	o := Options{Width: 300, Formats: []string{FormatDOT}}
	o.FillFrom(Options{Width: 500, Height: 200, Style: "circle", Formats: []string{FormatSVG}, Cols: 40, Free: true, Step: 3})
	assert.Equal(t, 300.0, o.Width)
	assert.Equal(t, 200.0, o.Height)
	assert.Equal(t, "circle", o.Style)
	assert.Equal(t, []string{FormatDOT}, o.Formats)
	assert.Equal(t, 40, o.Cols)
	assert.True(t, o.Free)
	assert.Zero(t, o.Step, "step is not a default")
}

func TestValidateForLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code tterrors.Code
	}{
		{"negative step", Options{Step: -1}, tterrors.ErrCodeInvalidOption},
		{"negative width", Options{Width: -5}, tterrors.ErrCodeInvalidOption},
		{"negative hint", Options{MinSpan: -1}, tterrors.ErrCodeInvalidOption},
		{"margin too large", Options{Width: 100, Height: 100, Margin: 50}, tterrors.ErrCodeInvalidOption},
		{"bad style", Options{Style: "square"}, tterrors.ErrCodeInvalidStyle},
		{"bad font", Options{Font: "huge"}, tterrors.ErrCodeInvalidStyle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForLayout()
			assert.True(t, tterrors.Is(err, tt.code), "got %v, want %s", err, tt.code)
		})
	}
}

func TestGenerateLayout(t *testing.T) {
	ctx := context.Background()
	doc, err := Decode(ctx, jsonSource(abcde))
	require.NoError(t, err)

	opts := Options{}
	require.NoError(t, opts.ValidateForLayout())
	l, err := GenerateLayout(ctx, doc, opts)
	require.NoError(t, err)

	// Bounds [-0.5, 1] x [0, 2] fitted into (20,20)-(680,580).
	assert.Equal(t, 440.0, l.Transform.ScaleX)
	assert.Equal(t, 280.0, l.Transform.ScaleY)

	want := map[string][2]float64{
		"A": {240, 20}, "B": {20, 300}, "C": {460, 300}, "D": {240, 580}, "E": {680, 580},
	}
	require.Len(t, l.Nodes, 5)
	for _, n := range l.Nodes {
		assert.InDelta(t, want[n.Label][0], n.X, 1e-9, "%s.x", n.Label)
		assert.InDelta(t, want[n.Label][1], n.Y, 1e-9, "%s.y", n.Label)
	}
	assert.Equal(t, 700.0, l.Width)
	assert.Equal(t, "open", l.Style)
	assert.Equal(t, 6, l.Stats.Nodes, "counts the forest root")
}

func TestGenerateLayoutStepAndStyles(t *testing.T) {
	ctx := context.Background()
	doc, err := Decode(ctx, jsonSource(derivation))
	require.NoError(t, err)

	opts := Options{Step: 1}
	require.NoError(t, opts.ValidateForLayout())
	l, err := GenerateLayout(ctx, doc, opts)
	require.NoError(t, err)
	assert.Equal(t, "S ::= NP VP", l.Rule)
	require.Len(t, l.Nodes, 3)
	assert.Equal(t, "circle", l.Nodes[0].Style)
	assert.Equal(t, "i", l.Nodes[0].Markup)

	opts.Step = 3
	_, err = GenerateLayout(ctx, doc, opts)
	assert.True(t, tterrors.Is(err, tterrors.ErrCodeInvalidInput), "out of range step: %v", err)
}

func TestDecodeErrorsCarrySource(t *testing.T) {
	_, err := Decode(context.Background(), jsonSource(`null`))
	require.Error(t, err)
	assert.True(t, tterrors.Is(err, tterrors.ErrCodeEmptyForest))
	assert.Contains(t, err.Error(), "test.json")
}

func TestRunnerExecuteCaches(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := Options{Formats: []string{FormatSVG, FormatText, FormatDOT, FormatJSON}}
	first, err := r.Execute(ctx, jsonSource(abcde), opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.LayoutHit)
	assert.False(t, first.CacheInfo.RenderHit)
	assert.Len(t, first.Artifacts, 4)
	assert.Contains(t, string(first.Artifacts[FormatSVG]), "<svg")
	assert.Contains(t, string(first.Artifacts[FormatDOT]), "digraph G")
	assert.NotEmpty(t, first.Layout.ID)

	second, err := r.Execute(ctx, jsonSource(abcde), opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.LayoutHit)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.Layout, second.Layout)
	assert.Equal(t, first.Artifacts, second.Artifacts)

	refreshed, err := r.Execute(ctx, jsonSource(abcde), Options{Formats: opts.Formats, Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.CacheInfo.LayoutHit)
	assert.Equal(t, first.Layout.ID, refreshed.Layout.ID, "layout IDs are stable")
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}

func (failingCache) Delete(context.Context, string) error { return nil }
func (failingCache) Close() error                         { return nil }

type countingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks
	layouts, cacheErrors int
}

func (h *countingHooks) OnLayoutComplete(context.Context, int, int, time.Duration, error) {
	h.layouts++
}

func (h *countingHooks) OnCacheError(context.Context, string, error) { h.cacheErrors++ }

func TestRunnerCacheErrorsAreNonFatal(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	r := NewRunner(failingCache{}, nil, nil)
	res, err := r.Execute(context.Background(), jsonSource(abcde), Options{Formats: []string{FormatText}})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Artifacts[FormatText])
	assert.Equal(t, 1, hooks.layouts)
	assert.GreaterOrEqual(t, hooks.cacheErrors, 2)
}

func TestRunnerSteps(t *testing.T) {
	ctx := context.Background()
	src := jsonSource(derivation)
	r := NewRunner(nil, nil, nil)
	doc, err := r.Decode(ctx, src)
	require.NoError(t, err)

	steps, err := r.Steps(ctx, doc, src.Hash(), Options{})
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "NP ::= john", steps[1].Rule)
	for _, l := range steps {
		assert.Equal(t, StepMinSpan, l.Hints.MinSpan)
		assert.Equal(t, StepMinDepth, l.Hints.MinDepth)
	}
	// Both steps fit under the same vertical scale.
	assert.Equal(t, steps[0].Transform.ScaleY, steps[1].Transform.ScaleY)

	plain, err := r.Decode(ctx, jsonSource(abcde))
	require.NoError(t, err)
	_, err = r.Steps(ctx, plain, "h", Options{})
	assert.True(t, tterrors.Is(err, tterrors.ErrCodeInvalidInput))
}

func TestScriptOptionsReachLayout(t *testing.T) {
	src := Source{Name: "d.tree", Format: literal.FormatScript, Data: []byte(strings.Join([]string{
		":: width 400",
		":: height 300",
		":: class syntax",
		`["S", ["NP"], ["VP"]]`,
	}, "\n"))}
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), src, Options{Formats: []string{FormatSVG}})
	require.NoError(t, err)
	assert.Equal(t, 400.0, res.Layout.Width)
	assert.Equal(t, 300.0, res.Layout.Height)
	assert.Contains(t, string(res.Artifacts[FormatSVG]), `class="syntax"`)
}

func TestScriptMultiWordFontReachesLayout(t *testing.T) {
	src := Source{Name: "d.tree", Format: literal.FormatScript, Data: []byte(strings.Join([]string{
		":: font italic 14px sans-serif",
		`["S", ["NP"], ["VP"]]`,
	}, "\n"))}
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), src, Options{Formats: []string{FormatSVG}})
	require.NoError(t, err)
	assert.Equal(t, "italic 14px sans-serif", res.Layout.Font)
}

func TestScriptZeroMarginReachesLayout(t *testing.T) {
	src := Source{Name: "d.tree", Format: literal.FormatScript, Data: []byte(strings.Join([]string{
		":: margin 0",
		`["S", ["NP"], ["VP"]]`,
	}, "\n"))}
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), src, Options{Formats: []string{FormatSVG}})
	require.NoError(t, err)
	assert.Zero(t, res.Layout.Margin)

	plain := Source{Name: "d.tree", Format: literal.FormatScript, Data: []byte(`["S", ["NP"], ["VP"]]`)}
	res, err = r.Execute(context.Background(), plain, Options{Formats: []string{FormatSVG}})
	require.NoError(t, err)
	assert.Equal(t, DefaultMargin, res.Layout.Margin, "unset margin takes the default")
}

func TestPinnedZeroOptions(t *testing.T) {
	d, err := literal.DecodeBytes([]byte(":: margin 0\n:: minSpan 0\n[\"A\"]\n"), literal.FormatScript)
	require.NoError(t, err)
	doc := d.Options

	t.Run("document pins zero", func(t *testing.T) {
		var o Options
		o.ApplyDocument(doc)
		o.FillFrom(Options{Margin: 5, MinSpan: 3})
		o.SetLayoutDefaults()
		assert.Zero(t, o.Margin)
		assert.Zero(t, o.MinSpan)
		assert.True(t, o.IsPinned("margin"))
	})

	t.Run("explicit option beats document zero", func(t *testing.T) {
		o := Options{Margin: 12}
		o.ApplyDocument(doc)
		assert.Equal(t, 12.0, o.Margin)
		assert.False(t, o.IsPinned("margin"))
	})

	t.Run("pinned option beats document value", func(t *testing.T) {
		var o Options
		o.Pin("margin")
		o.ApplyDocument(literal.Options{Margin: 30})
		o.SetLayoutDefaults()
		assert.Zero(t, o.Margin)
	})

	t.Run("pins carry through FillFrom", func(t *testing.T) {
		var defaults Options
		defaults.Pin("margin")
		var o Options
		o.FillFrom(defaults)
		o.SetLayoutDefaults()
		assert.Zero(t, o.Margin)
	})
}

func TestStepsKeepPinnedHints(t *testing.T) {
	src := Source{Name: "d.tree", Format: literal.FormatScript, Data: []byte(":: minSpan 0\n" + derivation)}
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()
	doc, err := r.Decode(ctx, src)
	require.NoError(t, err)
	require.Positive(t, doc.Steps())

	steps, err := r.Steps(ctx, doc, src.Hash(), Options{})
	require.NoError(t, err)
	for _, l := range steps {
		assert.Zero(t, l.Hints.MinSpan)
		assert.Equal(t, StepMinDepth, l.Hints.MinDepth)
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/svg+xml", ContentType(FormatSVG))
	assert.Equal(t, "application/pdf", ContentType(FormatPDF))
	assert.Equal(t, "image/svg+xml", ContentType(FormatGraphviz))
	assert.True(t, strings.HasPrefix(ContentType(FormatText), "text/plain"))
}

func TestRenderGraphviz(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping graphviz rendering in short mode")
	}
	src := Source{Name: "t.json", Format: literal.FormatJSON, Data: []byte(`["A", ["B"], ["C"]]`)}
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), src, Options{Formats: []string{FormatGraphviz}})
	require.NoError(t, err)
	svg := string(res.Artifacts[FormatGraphviz])
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, ">B<")
}
