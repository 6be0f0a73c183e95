// Package config provides CLI commands for configuration management.
package config

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/OftenOfuton/My-AZIK/internal/app"
	"github.com/OftenOfuton/My-AZIK/internal/config"
	"github.com/OftenOfuton/My-AZIK/internal/output"
)

// NewCommand returns the config command group.
func NewCommand(provide app.Provider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage romantable configuration",
		Long: `View and create romantable settings.

Settings are merged from flags, ROMANTABLE_* environment variables, the
config file and the built-in defaults, in that order.`,
	}

	cmd.AddCommand(newInitCommand(provide))
	cmd.AddCommand(newShowCommand(provide))
	cmd.AddCommand(newPathCommand(provide))
	cmd.AddCommand(newValidateCommand(provide))

	return cmd
}

func newInitCommand(provide app.Provider) *cobra.Command {
	var (
		force bool
		local bool
	)
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.UserConfigPath()
			switch {
			case len(args) == 1:
				path = args[0]
			case local:
				path = config.LocalFile
			}
			if path == "" {
				return fmt.Errorf("could not determine the home directory; pass a path")
			}
			if err := config.Init(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", color.GreenString("✓"), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().BoolVar(&local, "local", false, "Write "+config.LocalFile+" in the working directory")
	return cmd
}

func newShowCommand(provide app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := provide()
			out := cmd.OutOrStdout()

			if a.JSON {
				return output.JSON(out, a.Config)
			}

			body, err := a.Config.YAML()
			if err != nil {
				return err
			}
			if path := a.Viper.ConfigFileUsed(); path != "" {
				fmt.Fprintf(out, "# from %s\n", path)
			} else {
				fmt.Fprintln(out, "# no config file, defaults and environment only")
			}
			fmt.Fprint(out, body)
			return nil
		},
	}
}

func newPathCommand(provide app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), provide().ConfigFile())
		},
	}
}

func newValidateCommand(provide app.Provider) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := provide()
			out := cmd.OutOrStdout()
			issues := a.Config.Validate()

			if a.JSON {
				if err := output.JSON(out, issues); err != nil {
					return err
				}
				return config.Err(issues)
			}

			if len(issues) == 0 {
				color.New(color.FgGreen).Fprintln(out, "Configuration is valid")
				return nil
			}

			for _, issue := range issues {
				switch issue.Severity {
				case "error":
					color.New(color.FgRed).Fprintf(out, "  %s: %s\n", issue.Key, issue.Message)
				default:
					color.New(color.FgYellow).Fprintf(out, "  %s: %s\n", issue.Key, issue.Message)
				}
			}
			return config.Err(issues)
		},
	}
}
