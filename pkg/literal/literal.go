package literal

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/tree"
)

// Format identifies the encoding of a document.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatScript Format = "tree"
)

// Formats lists the accepted formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatScript}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatScript, "script":
		return FormatScript, nil
	}
	return "", errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "format", s, "json", "yaml", "tree")
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".tree":
		return FormatScript, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"cannot infer format of %s (use .json, .yaml, .yml or .tree)", path)
}

// Document is a decoded tree diagram: the forest to draw, optional label
// styles, an optional derivation sequence, and options given on `::` lines.
type Document struct {
	Trees      []tree.Literal
	NodeStyles []NodeStyle
	Derivation []Step
	Options    Options
}

// Step is one stage of a derivation: the rule applied last and the forest
// it produced.
type Step struct {
	Rule  string         `json:"rule" yaml:"rule"`
	Trees []tree.Literal `json:"trees" yaml:"trees"`
}

// Forest builds the document's trees under one synthetic root.
func (d *Document) Forest() (*tree.Tree, error) {
	return tree.Forest(d.Trees)
}

// Steps returns the number of derivation steps.
func (d *Document) Steps() int { return len(d.Derivation) }

// Step builds the forest of derivation step i.
func (d *Document) Step(i int) (*tree.Tree, error) {
	if i < 0 || i >= len(d.Derivation) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"derivation step %d out of range (document has %d)", i, len(d.Derivation))
	}
	t, err := tree.Forest(d.Derivation[i].Trees)
	if err != nil {
		return nil, errors.WithContext(err, "derivation step %d", i)
	}
	return t, nil
}

// StyleFor returns the first node style whose pattern matches label.
func (d *Document) StyleFor(label string) (NodeStyle, bool) {
	return MatchStyle(d.NodeStyles, label)
}

// DecodeFile reads and decodes the document at path, choosing the format
// from its extension.
func DecodeFile(path string) (*Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	doc, err := Decode(f, format)
	if err != nil {
		return nil, errors.WithContext(err, "%s", path)
	}
	return doc, nil
}

// Decode reads a document in the given format.
//
// The body may be an object with "trees", "nodeStyles" and "derivation"
// keys, the same object wrapped in a one-element list, a single tree tuple
// (a list whose first element is a label), or a list of trees.
func Decode(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read document")
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatScript:
		return decodeScript(data)
	}
	return nil, errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "format", string(format), "json", "yaml", "tree")
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte, format Format) (*Document, error) {
	return Decode(bytes.NewReader(data), format)
}

func decodeJSON(data []byte) (*Document, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode json")
	}
	return fromValue(v)
}

func decodeYAML(data []byte) (*Document, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml")
	}
	return fromValue(v)
}

// decodeScript splits `:: key value` option lines from the body. The value
// is the rest of the line, so `:: font 12pt serif` keeps both words. The body
// is parsed as YAML, which accepts JSON as well as object keys written
// without quotes.
func decodeScript(data []byte) (*Document, error) {
	var body strings.Builder
	raw := map[string]string{}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "::") {
			body.WriteString(line)
			body.WriteByte('\n')
			continue
		}
		words := strings.Fields(line[2:])
		if len(words) < 2 {
			return nil, errors.New(errors.ErrCodeInvalidOption, "option line %q needs a key and a value", strings.TrimSpace(line))
		}
		raw[words[0]] = strings.Join(words[1:], " ")
	}

	opts, err := parseOptions(raw)
	if err != nil {
		return nil, err
	}
	doc, err := decodeYAML([]byte(body.String()))
	if err != nil {
		return nil, err
	}
	doc.Options = opts
	return doc, nil
}

func fromValue(v any) (*Document, error) {
	switch val := v.(type) {
	case map[string]any:
		return fromObject(val)
	case []any:
		if len(val) == 1 {
			if obj, ok := val[0].(map[string]any); ok && isDocument(obj) {
				return fromObject(obj)
			}
		}
		if len(val) > 0 && isScalar(val[0]) {
			lit, err := tree.FromValue(val)
			if err != nil {
				return nil, err
			}
			return &Document{Trees: []tree.Literal{lit}}, nil
		}
		lits, err := tree.ForestFromValues(val)
		if err != nil {
			return nil, err
		}
		return &Document{Trees: lits}, nil
	case nil:
		return nil, errors.New(errors.ErrCodeEmptyForest, "document is empty")
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "document must be an object or a list, got %T", v)
}

func isDocument(obj map[string]any) bool {
	for _, k := range []string{"trees", "nodeStyles", "derivation"} {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}

func isScalar(v any) bool {
	switch v.(type) {
	case []any, map[string]any, nil:
		return false
	}
	return true
}

func fromObject(obj map[string]any) (*Document, error) {
	if !isDocument(obj) {
		// A lone tree in object form.
		lit, err := tree.FromValue(obj)
		if err != nil {
			return nil, err
		}
		return &Document{Trees: []tree.Literal{lit}}, nil
	}

	doc := &Document{}
	for k, v := range obj {
		switch k {
		case "trees":
			list, ok := v.([]any)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "trees must be a list, got %T", v)
			}
			lits, err := tree.ForestFromValues(list)
			if err != nil {
				return nil, err
			}
			doc.Trees = lits
		case "nodeStyles":
			styles, err := decodeStyles(v)
			if err != nil {
				return nil, err
			}
			doc.NodeStyles = styles
		case "derivation":
			steps, err := decodeDerivation(v)
			if err != nil {
				return nil, err
			}
			doc.Derivation = steps
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown document field %q", k)
		}
	}

	// A derivation without an explicit forest shows its final step.
	if doc.Trees == nil && len(doc.Derivation) > 0 {
		doc.Trees = doc.Derivation[len(doc.Derivation)-1].Trees
	}
	return doc, nil
}

func decodeDerivation(v any) ([]Step, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "derivation must be a list, got %T", v)
	}
	steps := make([]Step, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "derivation step %d must be an object, got %T", i, item)
		}
		if rule, ok := obj["rule"]; ok {
			s, ok := rule.(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "derivation step %d: rule must be a string", i)
			}
			steps[i].Rule = s
		}
		trees, ok := obj["trees"].([]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "derivation step %d has no trees list", i)
		}
		lits, err := tree.ForestFromValues(trees)
		if err != nil {
			return nil, errors.WithContext(err, "derivation step %d", i)
		}
		steps[i].Trees = lits
	}
	return steps, nil
}
