package completion

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func testRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "romantable"}
	root.AddCommand(&cobra.Command{Use: "watch", Short: "Re-export on save"})
	root.AddCommand(&cobra.Command{Use: "backups", Short: "List backups"})
	return root
}

func TestBashCompletion(t *testing.T) {
	root := testRootCmd()
	var buf bytes.Buffer
	root.SetOut(&buf)

	if err := root.GenBashCompletion(&buf); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, "_romantable") {
		t.Error("bash completion should contain _romantable function")
	}
}

func TestZshCompletion(t *testing.T) {
	root := testRootCmd()
	var buf bytes.Buffer

	if err := root.GenZshCompletion(&buf); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, "compdef") {
		t.Error("zsh completion should contain compdef")
	}
}

func TestFishCompletion(t *testing.T) {
	root := testRootCmd()
	var buf bytes.Buffer

	if err := root.GenFishCompletion(&buf, true); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, "complete -c romantable") {
		t.Error("fish completion should contain 'complete -c romantable'")
	}
}

func TestPowerShellCompletion(t *testing.T) {
	root := testRootCmd()
	var buf bytes.Buffer

	if err := root.GenPowerShellCompletionWithDesc(&buf); err != nil {
		t.Fatal(err)
	}

	output := buf.String()
	if !strings.Contains(output, "romantable") {
		t.Error("PowerShell completion should contain romantable")
	}
}

func TestCompletionCommand(t *testing.T) {
	root := testRootCmd()
	root.AddCommand(NewCommand(root))

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"completion", "fish"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "# romantable fish completion") {
		t.Errorf("unexpected output: %q", buf.String()[:min(60, buf.Len())])
	}
}

func TestCompletionUnsupportedShell(t *testing.T) {
	root := testRootCmd()
	root.AddCommand(NewCommand(root))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "bash, fish, powershell, zsh") {
		t.Errorf("expected the supported shells in the error, got %v", err)
	}
}

func TestCompletionCommandEveryShell(t *testing.T) {
	for _, shell := range shells() {
		t.Run(shell, func(t *testing.T) {
			root := testRootCmd()
			root.AddCommand(NewCommand(root))

			var buf bytes.Buffer
			root.SetOut(&buf)
			root.SetArgs([]string{"completion", shell})
			if err := root.Execute(); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(buf.String(), generators[shell].install) {
				t.Errorf("%s output should carry its install line", shell)
			}
		})
	}
}
