package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/geom"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/literal"
	"github.com/matzehuels/tidytree/pkg/observability"
	"github.com/matzehuels/tidytree/pkg/tidy"
	"github.com/matzehuels/tidytree/pkg/tree"
)

// layoutNamespace seeds the name-based layout IDs.
var layoutNamespace = uuid.MustParse("6f1d5a52-3c7e-4c1b-9a53-0d5e2b7f4a10")

// LayoutID derives a stable layout ID from a layout cache key, so the same
// document and options always produce the same ID.
func LayoutID(key string) string {
	return uuid.NewSHA1(layoutNamespace, []byte(key)).String()
}

// GenerateLayout builds the forest selected by opts.Step, lays it out, and
// fits it into the frame. opts must have been validated with
// [Options.ValidateForLayout].
func GenerateLayout(ctx context.Context, doc *literal.Document, opts Options) (graph.Layout, error) {
	t, rule, err := selectForest(doc, opts.Step)
	if err != nil {
		return graph.Layout{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, t.Len())
	start := time.Now()

	res := tidy.Layout(t, tidy.Options{Distance: opts.Distance})
	bounds, ok := res.Bounds(t)
	if !ok {
		err := errors.New(errors.ErrCodeEmptyForest, "forest has no visible nodes")
		hooks.OnLayoutComplete(ctx, t.Len(), res.Stats.ContourSteps, time.Since(start), err)
		return graph.Layout{}, err
	}
	transform := geom.Fit(bounds, opts.Frame(), opts.Hints())

	l := graph.FromResult(t, res, transform)
	l.Width, l.Height, l.Margin = opts.Width, opts.Height, opts.Margin
	l.Distance = opts.Distance
	l.Style, l.Font, l.Scale, l.Class = opts.Style, opts.Font, opts.Scale, opts.Class
	l.Hints = opts.Hints()
	l.Rule = rule
	applyNodeStyles(&l, doc)

	hooks.OnLayoutComplete(ctx, t.Len(), res.Stats.ContourSteps, time.Since(start), nil)
	return l, nil
}

// selectForest returns the document forest for step 0 and derivation step
// n (1-based) otherwise, together with the rule applied at that step.
func selectForest(doc *literal.Document, step int) (*tree.Tree, string, error) {
	if step == 0 {
		t, err := doc.Forest()
		return t, "", err
	}
	t, err := doc.Step(step - 1)
	if err != nil {
		return nil, "", err
	}
	return t, doc.Derivation[step-1].Rule, nil
}

// applyNodeStyles resolves the first matching node style of every label.
// Nodes without a match keep the layout defaults.
func applyNodeStyles(l *graph.Layout, doc *literal.Document) {
	if len(doc.NodeStyles) == 0 {
		return
	}
	for i := range l.Nodes {
		n := &l.Nodes[i]
		s, ok := doc.StyleFor(n.Label)
		if !ok {
			continue
		}
		n.Style, n.Font, n.Markup = s.Style, s.Font, s.Markup
	}
}
