package cmd

import (
	"fmt"
	"os"

	"github.com/MeKo-Tech/pixgroup/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigCommand creates the config command and its subcommands.
func (a *app) newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the pixgroup configuration",
		// Configuration problems are reported by "config show" instead of
		// failing before it runs.
		PersistentPreRunE: a.setup(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	initCmd := &cobra.Command{
		Use:          "init [file]",
		Short:        "Write a configuration file with the default settings",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := config.ConfigFileName + ".yaml"
			if len(args) == 1 {
				filename = args[0]
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(filename); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", filename)
			}
			if err := config.WriteDefaultConfig(filename); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", filename)
			return err
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:          "show",
		Short:        "Print the resolved configuration",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal configuration: %w", err)
			}
			if _, err := out.Write(data); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, "---")
			a.loader.Describe(out)
			if err := a.cfg.Validate(); err != nil {
				_, _ = fmt.Fprintf(out, "Validation: %v\n", err)
			} else {
				_, _ = fmt.Fprintln(out, "Validation: ok")
			}
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}
