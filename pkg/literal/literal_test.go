package literal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/tree"
)

var sample = tree.Node("A", tree.Leaf("B"), tree.Node("C", tree.Leaf("D"), tree.Leaf("E")))

func TestDecodeShapes(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		want   []tree.Literal
	}{
		{
			name:   "single tuple",
			format: FormatJSON,
			input:  `["A", ["B"], ["C", ["D"], ["E"]]]`,
			want:   []tree.Literal{sample},
		},
		{
			name:   "list of trees",
			format: FormatJSON,
			input:  `[["A", ["B"], ["C", ["D"], ["E"]]], ["F"]]`,
			want:   []tree.Literal{sample, tree.Leaf("F")},
		},
		{
			name:   "document object",
			format: FormatJSON,
			input:  `{"trees": [["A", "B", ["C", "D", "E"]]]}`,
			want:   []tree.Literal{sample},
		},
		{
			name:   "wrapped document",
			format: FormatJSON,
			input:  `[{"trees": [["X"], ["Y"]]}]`,
			want:   []tree.Literal{tree.Leaf("X"), tree.Leaf("Y")},
		},
		{
			name:   "lone object tree",
			format: FormatJSON,
			input:  `{"label": "A", "children": [{"label": "B"}, ["C", "D", "E"]]}`,
			want:   []tree.Literal{sample},
		},
		{
			name:   "yaml block",
			format: FormatYAML,
			input: `trees:
  - [A, [B], [C, [D], [E]]]
`,
			want: []tree.Literal{sample},
		},
		{
			name:   "yaml object trees",
			format: FormatYAML,
			input: `trees:
  - label: A
    children:
      - label: B
      - [C, D, E]
`,
			want: []tree.Literal{sample},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeBytes([]byte(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Trees)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errors.Code
	}{
		{"syntax", FormatJSON, `["A",`, errors.ErrCodeInvalidInput},
		{"empty document", FormatJSON, `null`, errors.ErrCodeEmptyForest},
		{"empty yaml", FormatYAML, ``, errors.ErrCodeEmptyForest},
		{"empty tree list", FormatJSON, `{"trees": []}`, errors.ErrCodeEmptyForest},
		{"scalar document", FormatJSON, `42`, errors.ErrCodeInvalidInput},
		{"bad tuple", FormatJSON, `{"trees": [[]]}`, errors.ErrCodeStructuralInput},
		{"unknown field", FormatJSON, `{"trees": [["A"]], "colour": "red"}`, errors.ErrCodeInvalidInput},
		{"trees not a list", FormatJSON, `{"trees": "A"}`, errors.ErrCodeInvalidInput},
		{"bad regex", FormatJSON, `{"trees": [["A"]], "nodeStyles": [["(", {"style": "open"}]]}`, errors.ErrCodeInvalidInput},
		{"bad style", FormatJSON, `{"trees": [["A"]], "nodeStyles": [[".*", {"style": "square"}]]}`, errors.ErrCodeInvalidStyle},
		{"bad step", FormatJSON, `{"derivation": [{"rule": "S ::= x"}]}`, errors.ErrCodeInvalidInput},
		{"bad step tree", FormatJSON, `{"derivation": [{"rule": "S", "trees": [[1, []]]}]}`, errors.ErrCodeStructuralInput},
		{"unknown format", Format("xml"), `<a/>`, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeBytes([]byte(tt.input), tt.format)
			if tt.code == errors.ErrCodeEmptyForest && err == nil {
				// An empty list decodes; building the forest must fail.
				_, err = doc.Forest()
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v, want code %s", err, tt.code)
		})
	}
}

func TestDecodeStyles(t *testing.T) {
	input := `{
	  "trees": [["S", ["x"]]],
	  "nodeStyles": [
	    ["^[a-z]+$", {"style": "open", "font": "rm", "jfont": "12pt serif"}],
	    {"pattern": "/[A-Z]/", "style": "circle", "font": "i"},
	    [".*", {"font": "bold 10pt sans-serif"}]
	  ]
	}`
	doc, err := DecodeBytes([]byte(input), FormatJSON)
	require.NoError(t, err)
	require.Len(t, doc.NodeStyles, 3)

	lower, ok := doc.StyleFor("abc")
	require.True(t, ok)
	assert.Equal(t, StyleOpen, lower.Style)
	assert.Equal(t, "rm", lower.Markup)
	assert.Equal(t, "12pt serif", lower.Font)

	upper, ok := doc.StyleFor("Expr")
	require.True(t, ok)
	assert.Equal(t, StyleCircle, upper.Style)
	assert.Equal(t, "i", upper.Markup)
	assert.Empty(t, upper.Font)

	other, ok := doc.StyleFor("+")
	require.True(t, ok)
	assert.Equal(t, "bold 10pt sans-serif", other.Font)
	assert.Empty(t, other.Markup)

	_, ok = MatchStyle(nil, "x")
	assert.False(t, ok)
}

func TestDecodeScript(t *testing.T) {
	script := `:: width 500
:: height 300
:: margin 10
:: minSpan 8
:: class parse_tree
[{
  trees: [["E", ["E", ["T"]], ["+"], ["T"]]],
  nodeStyles: [["^[A-Z]$", {style: "circle", font: "i"}]]
}]
`
	doc, err := DecodeBytes([]byte(script), FormatScript)
	require.NoError(t, err)

	assert.Equal(t, Options{Width: 500, Height: 300, Margin: 10, MinSpan: 8, Class: "parse_tree"}, doc.Options)
	require.Len(t, doc.Trees, 1)
	assert.Equal(t, "E", doc.Trees[0].Label)
	assert.Len(t, doc.Trees[0].Children, 3)
	require.Len(t, doc.NodeStyles, 1)
	assert.Equal(t, "i", doc.NodeStyles[0].Markup)
}

func TestDecodeScriptMultiWordValues(t *testing.T) {
	tests := []struct {
		line string
		want Options
	}{
		{":: font 12pt serif", Options{Font: "12pt serif"}},
		{":: font   italic 14px   sans-serif  ", Options{Font: "italic 14px sans-serif"}},
		{":: class parse tree", Options{Class: "parse tree"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			doc, err := DecodeBytes([]byte(tt.line+"\n[\"A\"]\n"), FormatScript)
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Options)
		})
	}
}

func TestDecodeScriptExplicitZero(t *testing.T) {
	doc, err := DecodeBytes([]byte(":: margin 0\n:: minSpan 0.0\n[\"A\"]\n"), FormatScript)
	require.NoError(t, err)

	assert.Zero(t, doc.Options.Margin)
	assert.True(t, doc.Options.Has("margin"))
	assert.True(t, doc.Options.Has("minSpan"))
	assert.False(t, doc.Options.Has("minDepth"))
	assert.False(t, doc.Options.Has("width"))
}

func TestOptionsHas(t *testing.T) {
	o := Options{Width: 500, Font: "10pt serif"}
	assert.True(t, o.Has("width"))
	assert.True(t, o.Has("font"))
	assert.False(t, o.Has("margin"), "zero without an explicit 0 is unset")
	assert.False(t, o.Has("colour"))
}

func TestDecodeScriptOptionErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines string
	}{
		{"missing value", ":: width"},
		{"not a number", ":: width wide"},
		{"negative margin", ":: margin -5"},
		{"bad hint", ":: minDepth deep"},
		{"bad style", ":: style dotted"},
		{"unknown key", ":: colour red"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(tt.lines+"\n[\"A\"]\n"), FormatScript)
			require.Error(t, err)
			assert.True(t, errors.IsInputError(err), "got %v", err)
		})
	}
}

func TestDerivation(t *testing.T) {
	input := `
derivation:
  - rule: "T ::= x"
    trees: [[T, [x]]]
  - rule: "E ::= T"
    trees: [[E, [T, [x]]]]
  - rule: "E ::= E + T"
    trees: [[E, [E, [T, [x]]], ["+"], [T]], [y]]
`
	doc, err := DecodeBytes([]byte(input), FormatYAML)
	require.NoError(t, err)
	require.Equal(t, 3, doc.Steps())

	// Without an explicit forest the last step is drawn.
	require.Len(t, doc.Trees, 2)
	assert.Equal(t, "E", doc.Trees[0].Label)

	step, err := doc.Step(0)
	require.NoError(t, err)
	assert.True(t, step.Synthetic())
	assert.Equal(t, 3, step.Len())

	last, err := doc.Step(2)
	require.NoError(t, err)
	assert.Len(t, last.Roots(), 2)

	_, err = doc.Step(3)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	_, err = doc.Step(-1)
	assert.Error(t, err)
}

func TestForest(t *testing.T) {
	doc, err := DecodeBytes([]byte(`[["A"], ["B", ["C"]]]`), FormatJSON)
	require.NoError(t, err)

	f, err := doc.Forest()
	require.NoError(t, err)
	assert.True(t, f.Synthetic())
	assert.Equal(t, 4, f.Len())
	assert.Equal(t, "1.0", f.Path(f.Children(f.Roots()[1])[0]))
}

func TestParseRule(t *testing.T) {
	styles := []NodeStyle{
		mustStyle(t, "^[A-Z]+$", "i"),
		mustStyle(t, ".*", "rm"),
	}
	got := ParseRule("  E ::= E + T | x ::== y ", styles)

	want := []Symbol{
		{Text: "E", Kind: SymbolTerm, Markup: "i"},
		{Text: "::=", Kind: SymbolDerives},
		{Text: "E", Kind: SymbolTerm, Markup: "i"},
		{Text: "+", Kind: SymbolTerm, Markup: "rm"},
		{Text: "T", Kind: SymbolTerm, Markup: "i"},
		{Text: "|", Kind: SymbolAlternative},
		{Text: "x", Kind: SymbolTerm, Markup: "rm"},
		{Text: "::==", Kind: SymbolRewrites},
		{Text: "y", Kind: SymbolTerm, Markup: "rm"},
	}
	assert.Equal(t, want, got)
}

func TestFormats(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json": FormatJSON, "b.YAML": FormatYAML, "c.yml": FormatYAML, "d.tree": FormatScript,
	} {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("e.txt")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	_, err = ParseFormat("toml")
	assert.Error(t, err)
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[A, [B], [C, [D], [E]]]\n"), 0o644))

	doc, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, []tree.Literal{sample}, doc.Trees)

	_, err = DecodeFile(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`["A", []]`), 0o644))
	_, err = DecodeFile(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStructuralInput))
	assert.True(t, strings.Contains(err.Error(), "bad.json"))
}

func mustStyle(t *testing.T, pattern, markup string) NodeStyle {
	t.Helper()
	styles, err := decodeStyles([]any{[]any{pattern, map[string]any{"font": markup}}})
	require.NoError(t, err)
	return styles[0]
}
