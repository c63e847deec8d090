package literal

import (
	"regexp"
	"strings"

	"github.com/matzehuels/tidytree/pkg/errors"
)

// Node drawing styles.
const (
	StyleCircle = "circle"
	StyleOpen   = "open"
)

// NodeStyle overrides how nodes whose label matches Pattern are drawn.
//
// Style is "circle" (outlined) or "open" (outline drawn in the background
// color). Font is a CSS font used for the label. Markup is the inline text
// style used when the label appears in a rule: "rm" for roman, "i" or "em"
// for italic, "b" or "strong" for bold.
type NodeStyle struct {
	Pattern *regexp.Regexp
	Style   string
	Font    string
	Markup  string
}

// MatchStyle returns the first style whose pattern matches label. Patterns
// match anywhere in the label.
func MatchStyle(styles []NodeStyle, label string) (NodeStyle, bool) {
	for _, s := range styles {
		if s.Pattern.MatchString(label) {
			return s, true
		}
	}
	return NodeStyle{}, false
}

// ValidateStyle checks a node style name.
func ValidateStyle(style string) error {
	return errors.ValidateOneOf(errors.ErrCodeInvalidStyle, "node style", style, StyleCircle, StyleOpen)
}

// decodeStyles accepts a list of [pattern, {style, font, jfont}] pairs or
// of {pattern, style, font, jfont} objects. "jfont" is the drawing font and
// "font" the rule markup; "font" doubles as the drawing font when it is a
// CSS font rather than a markup name.
func decodeStyles(v any) ([]NodeStyle, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nodeStyles must be a list, got %T", v)
	}

	styles := make([]NodeStyle, 0, len(list))
	for i, item := range list {
		var pattern any
		var attrs map[string]any
		switch entry := item.(type) {
		case []any:
			if len(entry) != 2 {
				return nil, errors.New(errors.ErrCodeInvalidInput, "nodeStyles[%d] must be a [pattern, style] pair", i)
			}
			pattern = entry[0]
			attrs, ok = entry[1].(map[string]any)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidInput, "nodeStyles[%d] style must be an object", i)
			}
		case map[string]any:
			pattern = entry["pattern"]
			attrs = entry
		default:
			return nil, errors.New(errors.ErrCodeInvalidInput, "nodeStyles[%d] has unsupported form %T", i, item)
		}

		s, err := decodeStyle(i, pattern, attrs)
		if err != nil {
			return nil, err
		}
		styles = append(styles, s)
	}
	return styles, nil
}

func decodeStyle(i int, pattern any, attrs map[string]any) (NodeStyle, error) {
	src, ok := pattern.(string)
	if !ok {
		return NodeStyle{}, errors.New(errors.ErrCodeInvalidInput, "nodeStyles[%d] pattern must be a string", i)
	}
	src = strings.TrimSuffix(strings.TrimPrefix(src, "/"), "/")
	re, err := regexp.Compile(src)
	if err != nil {
		return NodeStyle{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "nodeStyles[%d] pattern %q", i, src)
	}

	s := NodeStyle{Pattern: re}
	for k, raw := range attrs {
		if k == "pattern" {
			continue
		}
		val, ok := raw.(string)
		if !ok {
			return NodeStyle{}, errors.New(errors.ErrCodeInvalidInput, "nodeStyles[%d].%s must be a string", i, k)
		}
		switch k {
		case "style":
			if err := ValidateStyle(val); err != nil {
				return NodeStyle{}, err
			}
			s.Style = val
		case "jfont":
			s.Font = val
		case "font":
			if isMarkup(val) {
				s.Markup = val
			} else if s.Font == "" {
				s.Font = val
			}
		default:
			return NodeStyle{}, errors.New(errors.ErrCodeInvalidInput, "nodeStyles[%d] has unknown field %q", i, k)
		}
	}
	// jfont wins over a CSS font given as "font" regardless of key order.
	if f, ok := attrs["jfont"].(string); ok {
		s.Font = f
	}
	return s, nil
}

func isMarkup(s string) bool {
	switch s {
	case "rm", "i", "em", "b", "strong", "tt", "code":
		return true
	}
	return false
}
