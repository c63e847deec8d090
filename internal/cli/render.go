package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/pipeline"
	"github.com/matzehuels/tidytree/pkg/watch"
)

// renderOpts holds the command-line flags of the render command that are
// not pipeline options.
type renderOpts struct {
	output  string // output file (single input and format), "-" for stdout
	noCache bool
	watch   bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		ro         renderOpts
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [file|glob]...",
		Short: "Render tree documents to SVG, PDF, PNG, DOT or text",
		Long: `Render tree documents to SVG, PDF, PNG, DOT or text.

Inputs are tree documents (.json, .yaml, .tree) or layouts written by
'layout' (.layout.json, .layout.yaml). Patterns may use ** to match
directories recursively:

  tidytree render 'grammars/**/*.tree' -f svg,txt

Each input is written next to itself as <input>.<format>, unless a single
input and format are rendered with -o. Use -o - to write to stdout.

With --watch the inputs are rendered again whenever they change.

The gv.svg format draws the DOT export with Graphviz at the computed
positions (or its own, with --free). PNG and PDF output need rsvg-convert
on the PATH.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			pinZeroFlags(cmd, &opts)
			return c.runRender(cmd.Context(), args, opts, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file for a single input and format, - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, gv.svg, txt, json, yaml (comma-separated)")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(pipeline.Formats...))
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&ro.watch, "watch", "w", false, "render again when inputs change")
	cmd.Flags().IntVar(&opts.Step, "step", 0, "render derivation step n (1-based)")
	layoutFlags(cmd, &opts)

	cmd.Flags().StringVar(&opts.Background, "background", "", "background color (default white)")
	cmd.Flags().Float64Var(&opts.PNGScale, "png-scale", 0, "PNG resolution multiplier (default 2)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label DOT nodes with their path and coordinates")
	cmd.Flags().BoolVar(&opts.Free, "free", false, "let Graphviz place DOT nodes instead of pinning them")
	cmd.Flags().IntVar(&opts.Cols, "cols", 0, "text output width in characters (default 80)")
	cmd.Flags().IntVar(&opts.Rows, "rows", 0, "text output height in lines (default 24)")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, patterns []string, opts pipeline.Options, ro renderOpts) error {
	inputs, err := expandInputs(patterns)
	if err != nil {
		return err
	}
	if len(opts.Formats) == 0 {
		opts.Formats = c.Config.Render.Formats
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{pipeline.FormatSVG}
	}
	if ro.output != "" && (len(inputs) != 1 || len(opts.Formats) != 1) {
		return errors.New(errors.ErrCodeInvalidOption, "-o needs exactly one input and one format")
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	firstErr := c.renderAll(ctx, runner, inputs, opts, ro)
	if !ro.watch {
		return firstErr
	}
	return c.watchAndRender(ctx, runner, patterns, opts, ro)
}

// renderAll renders every input and returns the first failure; the
// remaining inputs are still rendered.
func (c *CLI) renderAll(ctx context.Context, runner *pipeline.Runner, inputs []string, opts pipeline.Options, ro renderOpts) error {
	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, "Rendering...")
	spinner.Start()

	var firstErr error
	for i, input := range inputs {
		if ctx.Err() != nil {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.SetMessage("Rendering %s (%d/%d)...", input, i+1, len(inputs))
		written, cached, err := c.renderOne(ctx, runner, input, opts, ro)
		prog.record(err)
		spinner.Stop()
		if err != nil {
			printError("%s: %s", input, errors.UserMessage(err))
			if firstErr == nil {
				firstErr = err
			}
		} else if ro.output != "-" {
			printSuccess("Rendered %s", input)
			for _, path := range written {
				printFile(path)
			}
			printStats(0, 0, cached)
		}
		if i+1 < len(inputs) {
			spinner = newSpinner(ctx, "Rendering...")
			spinner.Start()
		}
	}
	if len(inputs) > 1 {
		prog.done("Rendered")
	}
	return firstErr
}

// renderOne renders input to all formats and returns the written paths.
func (c *CLI) renderOne(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, ro renderOpts) ([]string, bool, error) {
	l, _, err := c.readLayoutInput(ctx, runner, input, opts)
	if err != nil {
		return nil, false, err
	}
	if opts.Class == "" {
		opts.Class = l.Class
	}
	c.Config.Apply(&opts)
	opts.Logger = c.Logger
	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}

	if ro.output == "-" {
		_, err := stdout.Write(artifacts[opts.Formats[0]])
		return nil, cached, err
	}

	base := outputBase(input)
	var written []string
	for _, format := range opts.Formats {
		path := base + "." + format
		if ro.output != "" {
			path = ro.output
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return written, cached, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		c.Logger.Debug("wrote artifact", "path", path, "bytes", len(artifacts[format]))
		written = append(written, path)
	}
	return written, cached, nil
}

func (c *CLI) watchAndRender(ctx context.Context, runner *pipeline.Runner, patterns []string, opts pipeline.Options, ro renderOpts) error {
	w, err := watch.New(patterns, watch.Options{Logger: c.Logger})
	if err != nil {
		return err
	}
	defer w.Close()

	printInfo("Watching %s for changes (ctrl+c to stop)", strings.Join(patterns, ", "))
	err = w.Run(ctx, func(paths []string) {
		c.Logger.Debug("inputs changed", "paths", paths)
		c.renderAll(ctx, runner, paths, opts, ro)
	})
	if ctx.Err() != nil {
		// Interrupting a watch is the normal way to end it.
		return nil
	}
	return err
}

// expandInputs resolves glob patterns. Plain paths are kept so that a
// missing file is reported by name; a pattern that matches nothing is an
// error.
func expandInputs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range patterns {
		if !strings.ContainsAny(p, "*?[{") {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
			continue
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "expand %q", p)
		}
		if len(matches) == 0 {
			return nil, errors.New(errors.ErrCodeFileNotFound, "no files match %q", p)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// outputBase strips the document or layout extension from input:
// "a/tree.json" and "a/tree.layout.json" both become "a/tree".
func outputBase(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return strings.TrimSuffix(base, ".layout")
}
