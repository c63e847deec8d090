package literal

import (
	"sort"
	"strconv"

	"github.com/matzehuels/tidytree/pkg/errors"
)

// Options are the `:: key value` settings of a diagram script. Zero values
// mean unset unless the script wrote the zero out; Has tells the two apart.
type Options struct {
	Width    int
	Height   int
	Margin   int
	MinSpan  float64
	MinDepth float64
	Class    string
	Font     string
	Style    string

	// zeros holds the numeric keys given as an explicit 0.
	zeros []string
}

// Has reports whether the script set key, including an explicit `:: margin 0`.
func (o Options) Has(key string) bool {
	switch key {
	case "width":
		if o.Width != 0 {
			return true
		}
	case "height":
		if o.Height != 0 {
			return true
		}
	case "margin":
		if o.Margin != 0 {
			return true
		}
	case "minSpan":
		if o.MinSpan != 0 {
			return true
		}
	case "minDepth":
		if o.MinDepth != 0 {
			return true
		}
	case "class":
		return o.Class != ""
	case "font":
		return o.Font != ""
	case "style":
		return o.Style != ""
	default:
		return false
	}
	for _, k := range o.zeros {
		if k == key {
			return true
		}
	}
	return false
}

var optionKeys = []string{"class", "font", "height", "margin", "minDepth", "minSpan", "style", "width"}

func parseOptions(raw map[string]string) (Options, error) {
	var o Options
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := raw[k]
		var err error
		switch k {
		case "width":
			o.Width, err = parseSize(k, v)
		case "height":
			o.Height, err = parseSize(k, v)
		case "margin":
			o.Margin, err = parseSize(k, v)
		case "minSpan":
			o.MinSpan, err = parseHint(k, v)
		case "minDepth":
			o.MinDepth, err = parseHint(k, v)
		case "class":
			o.Class = v
		case "font":
			o.Font = v
		case "style":
			err = ValidateStyle(v)
			o.Style = v
		default:
			err = errors.ValidateOneOf(errors.ErrCodeInvalidOption, "option", k, optionKeys...)
		}
		if err != nil {
			return Options{}, err
		}
		if isZero(v) {
			o.zeros = append(o.zeros, k)
		}
	}
	return o, nil
}

func isZero(v string) bool {
	f, err := strconv.ParseFloat(v, 64)
	return err == nil && f == 0
}

func parseSize(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(errors.ErrCodeInvalidOption, "option %s must be a non-negative integer, got %q", key, v)
	}
	return n, nil
}

func parseHint(key, v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidOption, "option %s must be a number, got %q", key, v)
	}
	return f, nil
}
