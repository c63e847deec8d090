package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/literal"
	"github.com/matzehuels/tidytree/pkg/pipeline"
	"github.com/matzehuels/tidytree/pkg/render/sink"
)

// layoutCommand creates the layout command for computing tree layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		format  string
		dump    bool
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Compute the tidy layout of a tree document",
		Long: `Compute the tidy layout of a tree document.

The layout command reads a tree literal, document or diagram script, lays
out its forest (or one derivation step with --step) and writes the fitted
layout as <input>.layout.json. The layout can be rendered later with
'render'.

With --dump the tree is printed instead, one "label x y" line per node,
indented by depth.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateOneOf(errors.ErrCodeInvalidFormat, "layout format", format, "json", "yaml"); err != nil {
				return err
			}
			pinZeroFlags(cmd, &opts)
			return c.runLayout(cmd.Context(), args[0], opts, output, format, dump, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().StringVar(&format, "format", "json", "layout encoding: json, yaml")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion("json", "yaml"))
	cmd.Flags().BoolVar(&dump, "dump", false, "print the laid-out tree instead of writing a file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&opts.Step, "step", 0, "lay out derivation step n (1-based)")
	layoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the document, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output, format string, dump, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Laying out %s...", input))
	spinner.Start()

	l, _, cacheHit, err := c.loadLayout(ctx, runner, input, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if dump {
		return sink.Dump(stdout, l)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = outputBase(input) + ".layout." + format
	}
	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(l.Stats.Nodes, l.Stats.ContourSteps, cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)
	return nil
}

// loadLayout reads and lays out input. Flags win over the document's "::"
// options, which win over the config file.
func (c *CLI) loadLayout(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (graph.Layout, *literal.Document, bool, error) {
	src, err := pipeline.ReadSource(input)
	if err != nil {
		return graph.Layout{}, nil, false, err
	}
	doc, err := runner.Decode(ctx, src)
	if err != nil {
		return graph.Layout{}, nil, false, err
	}
	opts.ApplyDocument(doc.Options)
	c.Config.Apply(&opts)
	opts.Logger = c.Logger

	l, hit, err := runner.LayoutWithCacheInfo(ctx, doc, src.Hash(), opts)
	if err != nil {
		return graph.Layout{}, nil, false, err
	}
	return l, doc, hit, nil
}

// readLayoutInput accepts either a saved layout file or a tree document.
func (c *CLI) readLayoutInput(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options) (graph.Layout, bool, error) {
	if graph.IsLayoutFile(input) {
		l, err := graph.ReadLayoutFile(input)
		return l, false, err
	}
	l, _, hit, err := c.loadLayout(ctx, runner, input, opts)
	return l, hit, err
}
