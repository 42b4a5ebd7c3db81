package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marchallab/netview/pkg/highlight"
	"github.com/marchallab/netview/pkg/pipeline"
)

// completionCommand prints shell completion scripts.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Print a shell completion script",
		Long: `Print a completion script for your shell to stdout.

Completions cover subcommands, flags, highlight modes and output formats.
Load them into the current shell, or write them where your shell looks on
startup:

  bash        source <(netview completion bash)
              netview completion bash > ~/.local/share/bash-completion/completions/netview
  zsh         netview completion zsh > "${fpath[1]}/_netview"   (needs compinit)
  fish        netview completion fish > ~/.config/fish/completions/netview.fish
  powershell  netview completion powershell | Out-String | Invoke-Expression

Open a new shell after installing a script.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeModes offers the highlight modes for a --mode flag.
func completeModes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(highlight.Modes))
	for i, m := range highlight.Modes {
		out[i] = m.String()
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats offers the output formats for the comma-separated --format
// flag, keeping the formats already typed.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	var out []string
	for _, f := range pipeline.ValidFormats {
		if !strings.Contains(","+prefix, ","+f+",") {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// withModeCompletion registers completeModes on cmd's --mode flag.
func withModeCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("mode", completeModes)
}
