// Command tidytree lays out and draws ordered trees.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/tidytree/internal/cli"
	"github.com/matzehuels/tidytree/pkg/errors"
)

func main() {
	os.Exit(run())
}

// run executes the command line until it finishes or a signal cancels it,
// and returns the exit status.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
	code := cli.ExitCode(err)
	if code != 0 && code != cli.ExitInterrupted {
		fmt.Fprintf(os.Stderr, "tidytree: %s\n", errors.UserMessage(err))
	}
	return code
}
