package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/literal"
	"github.com/matzehuels/tidytree/pkg/pipeline"
	"github.com/matzehuels/tidytree/pkg/render/sink"
)

// Stepper styles
var (
	stepRuleStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	stepArrowStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	stepTreeStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	stepHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	stepItalicStyle = lipgloss.NewStyle().Italic(true)
	stepBoldStyle   = lipgloss.NewStyle().Bold(true)
)

// stepCommand creates the interactive derivation stepper.
func (c *CLI) stepCommand() *cobra.Command {
	var noCache bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "step [file]",
		Short: "Step through the derivation of a tree document",
		Long: `Step through the derivation of a tree document.

The document must have a "derivation": a list of {rule, trees} steps. Each
step is drawn as text together with the rule applied last. All steps share
one drawing scale (min-span 8, min-depth 5 unless set), so trees grow in
place.

Keys: home/< first, left/h previous, right/l next, end/> last, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pinZeroFlags(cmd, &opts)
			return c.runStep(cmd.Context(), args[0], opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	layoutFlags(cmd, &opts)

	return cmd
}

func (c *CLI) runStep(ctx context.Context, input string, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	src, err := pipeline.ReadSource(input)
	if err != nil {
		return err
	}
	doc, err := runner.Decode(ctx, src)
	if err != nil {
		return err
	}
	opts.ApplyDocument(doc.Options)
	c.Config.Apply(&opts)
	opts.Logger = c.Logger

	steps, err := runner.Steps(ctx, doc, src.Hash(), opts)
	if err != nil {
		return err
	}

	m := newStepModel(input, steps, doc.NodeStyles)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && ctx.Err() == nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run stepper")
	}
	return ctx.Err()
}

// =============================================================================
// stepModel - Derivation stepper
// =============================================================================

// stepModel is the bubbletea model of the derivation stepper.
type stepModel struct {
	title  string
	steps  []graph.Layout
	styles []literal.NodeStyle
	index  int
	cols   int
	rows   int
}

func newStepModel(title string, steps []graph.Layout, styles []literal.NodeStyle) stepModel {
	return stepModel{
		title:  title,
		steps:  steps,
		styles: styles,
		cols:   pipeline.DefaultCols,
		rows:   pipeline.DefaultRows - 4,
	}
}

func (m stepModel) Init() tea.Cmd {
	return nil
}

func (m stepModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "home", "<", "g":
			m.index = 0
		case "left", "h", "p":
			if m.index > 0 {
				m.index--
			}
		case "right", "l", "n", " ":
			if m.index < len(m.steps)-1 {
				m.index++
			}
		case "end", ">", "G":
			m.index = len(m.steps) - 1
		}
	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, 20)
		m.rows = max(msg.Height-4, 5)
	}
	return m, nil
}

func (m stepModel) View() string {
	var b strings.Builder
	l := m.steps[m.index]

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  step %d/%d", m.index+1, len(m.steps))))
	b.WriteString("\n")
	b.WriteString(formatRule(l.Rule, m.styles))
	b.WriteString("\n\n")
	b.WriteString(stepTreeStyle.Render(sink.RenderText(l, m.cols, m.rows)))
	b.WriteString(stepHelpStyle.Render("<< home  < left  right >  end >>  q quit"))
	return b.String()
}

// formatRule renders a grammar rule for the terminal: "::=" becomes an
// arrow and terms take the markup of their node style.
func formatRule(rule string, styles []literal.NodeStyle) string {
	if rule == "" {
		return ""
	}
	syms := literal.ParseRule(rule, styles)
	parts := make([]string, len(syms))
	for i, s := range syms {
		switch s.Kind {
		case literal.SymbolDerives:
			parts[i] = stepArrowStyle.Render("←")
		case literal.SymbolRewrites:
			parts[i] = stepArrowStyle.Render("⇐")
		case literal.SymbolAlternative:
			parts[i] = stepArrowStyle.Render("|")
		default:
			parts[i] = markupStyle(s.Markup).Render(s.Text)
		}
	}
	return strings.Join(parts, " ")
}

func markupStyle(markup string) lipgloss.Style {
	switch markup {
	case "i", "em":
		return stepItalicStyle
	case "b", "strong":
		return stepBoldStyle
	}
	return stepRuleStyle
}
