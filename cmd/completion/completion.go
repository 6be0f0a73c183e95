// Package completion provides the "romantable completion" command.
package completion

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

type generator struct {
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

var generators = map[string]generator{
	"bash": {
		install: "romantable completion bash > ~/.local/share/bash-completion/completions/romantable",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletion(w) },
	},
	"zsh": {
		install: "romantable completion zsh > \"${fpath[1]}/_romantable\"",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	},
	"fish": {
		install: "romantable completion fish > ~/.config/fish/completions/romantable.fish",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	},
	"powershell": {
		install: "romantable completion powershell | Out-String | Invoke-Expression",
		gen:     func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
	},
}

func shells() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCommand returns the completion command for rootCmd.
func NewCommand(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Print a shell completion script",
		Long: `Print a completion script for flags, subcommands and config keys.

Load it once in the current shell, or save it where your shell looks for
completions, for example:

  romantable completion bash > ~/.local/share/bash-completion/completions/romantable
  romantable completion fish > ~/.config/fish/completions/romantable.fish`,
		ValidArgs: shells(),
		Args:      cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, ok := generators[args[0]]
			if !ok {
				return fmt.Errorf("no completion for shell %q (choose one of %s)", args[0], strings.Join(shells(), ", "))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# romantable %s completion\n# %s\n\n", args[0], g.install)
			return g.gen(rootCmd, out)
		},
	}
}
