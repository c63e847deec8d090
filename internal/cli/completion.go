package cli

import (
	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand prints a shell completion script for the root command.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Print a shell completion script",
		Long: `Print a completion script for bash, zsh, fish or powershell.

Besides the layout, render, step, serve and cache commands, the scripts
complete flag values: render --format offers svg, png, pdf, dot, gv.svg,
txt, json and yaml; layout --format offers json and yaml; --style offers
open and circle. Tree documents (.json, .yaml, .tree) complete as files.

Load it into the current shell:

  source <(tidytree completion bash)
  tidytree completion fish | source
  tidytree completion powershell | Out-String | Invoke-Expression

or install it once, for example:

  tidytree completion bash > /etc/bash_completion.d/tidytree
  tidytree completion zsh > "${fpath[1]}/_tidytree"
  tidytree completion fish > ~/.config/fish/completions/tidytree.fish

zsh needs compinit enabled in ~/.zshrc. Start a new shell afterwards.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "zsh":
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
			return root.GenBashCompletionV2(stdout, true)
		},
	}

	return cmd
}
