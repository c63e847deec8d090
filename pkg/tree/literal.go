package tree

import (
	"fmt"
	"strconv"

	"github.com/matzehuels/tidytree/pkg/errors"
)

// MaxDepth is the hard cap on literal nesting accepted by Build and
// FromValue. Well-formed literals are finite and far shallower; a literal
// that nests deeper is rejected as a suspected cycle.
const MaxDepth = 4096

// Literal is the nested, ordered description of a tree: a label and the
// literals of its children, left to right.
type Literal struct {
	Label    string    `json:"label" yaml:"label"`
	Children []Literal `json:"children,omitempty" yaml:"children,omitempty"`
}

// Leaf returns a literal with no children.
func Leaf(label string) Literal { return Literal{Label: label} }

// Node returns a literal with the given children.
func Node(label string, children ...Literal) Literal {
	return Literal{Label: label, Children: children}
}

// Size returns the number of nodes described by the literal.
func (l Literal) Size() int {
	n := 1
	for _, c := range l.Children {
		n += c.Size()
	}
	return n
}

// Mirror returns the literal with the children of every node reversed.
func (l Literal) Mirror() Literal {
	out := Literal{Label: l.Label}
	if len(l.Children) > 0 {
		out.Children = make([]Literal, len(l.Children))
		for i, c := range l.Children {
			out.Children[len(l.Children)-1-i] = c.Mirror()
		}
	}
	return out
}

// Build converts a literal into a Tree, assigning parent links and sibling
// indices as each child is attached.
func Build(lit Literal) (*Tree, error) {
	t := New(lit.Label)
	if err := attach(t, t.Root(), lit, "0", 0); err != nil {
		return nil, err
	}
	return t, nil
}

// Forest wraps an ordered list of trees under one synthetic root so the
// single-tree layout can run once over all of them. The synthetic root has
// an empty label and is reported as invisible by the returned Tree.
func Forest(lits []Literal) (*Tree, error) {
	if len(lits) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyForest, "forest contains no trees")
	}
	t := New("")
	t.synthetic = true
	for i, lit := range lits {
		id := t.AddChild(t.Root(), lit.Label)
		if err := attach(t, id, lit, strconv.Itoa(i), 1); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func attach(t *Tree, id ID, lit Literal, path string, depth int) error {
	if depth >= MaxDepth {
		return errors.New(errors.ErrCodeStructuralInput,
			"literal at %s nests deeper than %d levels (cycle suspected)", path, MaxDepth)
	}
	for i, c := range lit.Children {
		child := t.AddChild(id, c.Label)
		if err := attach(t, child, c, path+"."+strconv.Itoa(i), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// FromValue converts a loosely typed decoded value into a Literal.
//
// Accepted shapes:
//   - a tuple []any{label, child, child, ...} whose first element is a scalar
//     label and whose remaining elements are child values
//   - a bare scalar, which is a leaf
//   - a map with a "label" key and an optional "children" list
//
// Anything else is a StructuralInputError naming the offending position.
func FromValue(v any) (Literal, error) {
	return fromValue(v, "0", 0)
}

// ForestFromValues converts a list of decoded tree values.
func ForestFromValues(vs []any) ([]Literal, error) {
	lits := make([]Literal, len(vs))
	for i, v := range vs {
		lit, err := fromValue(v, strconv.Itoa(i), 0)
		if err != nil {
			return nil, err
		}
		lits[i] = lit
	}
	return lits, nil
}

func fromValue(v any, path string, depth int) (Literal, error) {
	if depth >= MaxDepth {
		return Literal{}, errors.New(errors.ErrCodeStructuralInput,
			"literal at %s nests deeper than %d levels (cycle suspected)", path, MaxDepth)
	}

	switch val := v.(type) {
	case []any:
		if len(val) == 0 {
			return Literal{}, errors.New(errors.ErrCodeStructuralInput, "empty tuple at %s", path)
		}
		label, ok := scalarLabel(val[0])
		if !ok {
			return Literal{}, errors.New(errors.ErrCodeStructuralInput,
				"tuple at %s must start with a label, got %T", path, val[0])
		}
		return childrenOf(label, val[1:], path, depth)

	case map[string]any:
		return fromMap(val, path, depth)

	default:
		if label, ok := scalarLabel(v); ok {
			return childrenOf(label, nil, path, depth)
		}
		return Literal{}, errors.New(errors.ErrCodeStructuralInput,
			"unrecognized literal at %s: %T", path, v)
	}
}

func fromMap(m map[string]any, path string, depth int) (Literal, error) {
	raw, ok := m["label"]
	if !ok {
		return Literal{}, errors.New(errors.ErrCodeStructuralInput, "object at %s has no label", path)
	}
	label, ok := scalarLabel(raw)
	if !ok {
		return Literal{}, errors.New(errors.ErrCodeStructuralInput,
			"label at %s must be a scalar, got %T", path, raw)
	}
	for k := range m {
		if k != "label" && k != "children" {
			return Literal{}, errors.New(errors.ErrCodeStructuralInput,
				"object at %s has unknown field %q", path, k)
		}
	}

	rawChildren, ok := m["children"]
	if !ok || rawChildren == nil {
		return Literal{Label: label}, nil
	}
	children, ok := rawChildren.([]any)
	if !ok {
		return Literal{}, errors.New(errors.ErrCodeStructuralInput,
			"children at %s must be a list, got %T", path, rawChildren)
	}
	return childrenOf(label, children, path, depth)
}

func childrenOf(label string, vals []any, path string, depth int) (Literal, error) {
	if err := errors.ValidateLabel(label); err != nil {
		return Literal{}, errors.Wrap(errors.ErrCodeStructuralInput, err, "label at %s", path)
	}
	lit := Literal{Label: label}
	if len(vals) == 0 {
		return lit, nil
	}
	lit.Children = make([]Literal, len(vals))
	for i, cv := range vals {
		child, err := fromValue(cv, path+"."+strconv.Itoa(i), depth+1)
		if err != nil {
			return Literal{}, err
		}
		lit.Children[i] = child
	}
	return lit, nil
}

// scalarLabel accepts strings and the scalar types JSON/YAML decoders produce.
func scalarLabel(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case bool:
		return strconv.FormatBool(s), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case uint64:
		return strconv.FormatUint(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), true
	case fmt.Stringer:
		return s.String(), true
	}
	return "", false
}
