package styles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/tidytree/pkg/errors"
)

// DefaultFont is the label font of tree diagrams.
const DefaultFont = "12pt serif"

const (
	pxPerPt = 4.0 / 3.0
	pxPerEm = 16.0

	// mWidthRatio approximates the advance width of "M" in a serif face.
	mWidthRatio = 0.83
	// charWidthRatio approximates the average advance width of a glyph.
	charWidthRatio = 0.55
)

// Font is a parsed CSS font shorthand such as "italic 12pt serif".
type Font struct {
	Size   float64 // Size in pixels
	Family string
	Italic bool
	Bold   bool
}

// ParseFont parses the subset of the CSS font shorthand used by diagram
// documents: optional style and weight keywords, a size in pt, px or em,
// and a family list.
func ParseFont(s string) (Font, error) {
	fields := strings.Fields(s)
	var f Font
	for i, field := range fields {
		switch strings.ToLower(field) {
		case "italic", "oblique":
			f.Italic = true
			continue
		case "bold", "bolder", "600", "700", "800", "900":
			f.Bold = true
			continue
		case "normal", "lighter", "400":
			continue
		}
		size, ok := parseSize(field)
		if !ok {
			return Font{}, errors.New(errors.ErrCodeInvalidStyle, "invalid font %q: expected a size before the family", s)
		}
		f.Size = size
		f.Family = strings.Join(fields[i+1:], " ")
		if f.Family == "" {
			return Font{}, errors.New(errors.ErrCodeInvalidStyle, "invalid font %q: missing family", s)
		}
		return f, nil
	}
	return Font{}, errors.New(errors.ErrCodeInvalidStyle, "invalid font %q: missing size", s)
}

// MustParseFont is like ParseFont but panics on error.
func MustParseFont(s string) Font {
	f, err := ParseFont(s)
	if err != nil {
		panic(err)
	}
	return f
}

func parseSize(s string) (float64, bool) {
	s = strings.ToLower(s)
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i] // drop line-height
	}
	for _, unit := range []struct {
		suffix string
		factor float64
	}{{"pt", pxPerPt}, {"px", 1}, {"em", pxPerEm}} {
		if num, ok := strings.CutSuffix(s, unit.suffix); ok {
			v, err := strconv.ParseFloat(num, 64)
			if err != nil || v <= 0 {
				return 0, false
			}
			return v * unit.factor, true
		}
	}
	return 0, false
}

// MWidth returns the approximate width of "M" in this font.
func (f Font) MWidth() float64 { return f.Size * mWidthRatio }

// TextWidth returns the approximate width of s in this font.
func (f Font) TextWidth(s string) float64 {
	return float64(len([]rune(s))) * f.Size * charWidthRatio
}

// Radius returns the node circle radius for this font.
func (f Font) Radius(scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	return f.MWidth() * scale
}

// SVGAttrs renders the font as SVG presentation attributes.
func (f Font) SVGAttrs() string {
	var b strings.Builder
	fmt.Fprintf(&b, `font-family="%s" font-size="%.1f"`, EscapeXML(f.Family), f.Size)
	if f.Italic {
		b.WriteString(` font-style="italic"`)
	}
	if f.Bold {
		b.WriteString(` font-weight="bold"`)
	}
	return b.String()
}

// String returns the font in CSS shorthand with the size in pixels.
func (f Font) String() string {
	var parts []string
	if f.Italic {
		parts = append(parts, "italic")
	}
	if f.Bold {
		parts = append(parts, "bold")
	}
	parts = append(parts, strconv.FormatFloat(f.Size, 'f', -1, 64)+"px", f.Family)
	return strings.Join(parts, " ")
}

// WithMarkup applies a rule markup name to the font.
func (f Font) WithMarkup(markup string) Font {
	switch markup {
	case "i", "em":
		f.Italic = true
	case "b", "strong":
		f.Bold = true
	case "rm":
		f.Italic, f.Bold = false, false
	case "tt", "code":
		f.Family = "monospace"
	}
	return f
}
