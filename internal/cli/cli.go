// Package cli implements the tidytree command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tidytree/pkg/buildinfo"
	"github.com/matzehuels/tidytree/pkg/cache"
	"github.com/matzehuels/tidytree/pkg/config"
	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/literal"
	"github.com/matzehuels/tidytree/pkg/observability"
	"github.com/matzehuels/tidytree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "tidytree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Exit codes returned by ExitCode.
const (
	ExitFailure     = 1
	ExitBadInput    = 2   // the document or an option was rejected
	ExitInterrupted = 130 // SIGINT, as shells report it
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before a command runs, from --config or the default
	// location.
	Config     *config.Config
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level the pipeline and
// cache events are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "tidytree draws ordered trees with the Walker/Buchheim layout",
		Long: `tidytree lays out ordered trees and forests in linear time and draws them
as SVG, PDF, PNG, Graphviz DOT or plain text.

Input documents are nested literals (["S", ["NP"], ["VP"]]) in JSON or
YAML, or diagram scripts (.tree) with "::" option lines.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/tidytree/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log pipeline, cache and request events")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.stepCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case stderrors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.IsInputError(err):
		return ExitBadInput
	}
	return ExitFailure
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, c.Config.Keyer(), c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc, err := c.Config.OpenCache(ctx)
	if err != nil {
		// A broken cache must not keep diagrams from being drawn.
		printWarning("Cache unavailable, continuing without: %s", errors.UserMessage(err))
		c.Logger.Debug("open cache", "backend", c.Config.Cache.Backend, "error", err)
		return cache.NewNullCache(), nil
	}
	return cc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags registers the layout and drawing flags shared by layout,
// render and step. Flags left at zero are filled from the document's "::"
// options, the config file and finally the pipeline defaults.
func layoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	f := cmd.Flags()
	f.Float64Var(&opts.Width, "width", 0, "frame width (default 700)")
	f.Float64Var(&opts.Height, "height", 0, "frame height (default 600)")
	f.Float64Var(&opts.Margin, "margin", 0, "frame margin (default 20)")
	f.Float64Var(&opts.Distance, "distance", 0, "minimum sibling separation (default 1)")
	f.Float64Var(&opts.MinSpan, "min-span", 0, "minimum horizontal extent used for scaling")
	f.Float64Var(&opts.MinDepth, "min-depth", 0, "minimum vertical extent used for scaling")
	f.StringVar(&opts.Style, "style", "", "node style: open (default), circle")
	f.StringVar(&opts.Font, "font", "", `label font (default "12pt serif")`)
	f.Float64Var(&opts.Scale, "scale", 0, "node radius as a multiple of the label font's M width (default 1.1)")
	f.StringVar(&opts.Class, "class", "", "CSS class of the drawing")

	_ = cmd.RegisterFlagCompletionFunc("style", fixedCompletion(literal.StyleOpen, literal.StyleCircle))
}

// fixedCompletion completes a flag value from a fixed list.
func fixedCompletion(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// pinZeroFlags pins the margin and fit hints given as an explicit 0 so the
// document and the defaults do not replace them.
func pinZeroFlags(cmd *cobra.Command, opts *pipeline.Options) {
	for _, p := range [][2]string{{"margin", "margin"}, {"min-span", "min_span"}, {"min-depth", "min_depth"}} {
		if f := cmd.Flags().Lookup(p[0]); f != nil && f.Changed && f.Value.String() == "0" {
			opts.Pin(p[1])
		}
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
