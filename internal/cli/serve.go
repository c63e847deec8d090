package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tidytree/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and render HTTP API",
		Long: `Serve the layout and render HTTP API.

Endpoints:
  GET  /healthz
  POST /v1/layout          document in, layout JSON out
  POST /v1/render?format=  document in, svg/png/pdf/dot/txt/json/yaml out

Defaults for layout and render options come from the config file. The
cache backend is chosen by the [cache] section (file, redis, mongo, none).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(runner,
		server.WithLogger(c.Logger),
		server.WithDefaults(c.Config.Options()))

	backend := c.Config.Cache.Backend
	if noCache {
		backend = "none"
	}
	printInfo("Serving the tidytree API")
	printKeyValue("Address", addr)
	printKeyValue("Cache", backend)
	if err := srv.ListenAndServe(ctx, addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
