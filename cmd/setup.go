package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denysvitali/nbalance/internal/setup"
	setuptui "github.com/denysvitali/nbalance/internal/setup/tui"
)

var setupPlain bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the NewAPI endpoint and credentials",
	Long:  `Run an interactive form that writes the nbalance config file. Use --plain for a line based wizard.`,
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupPlain, "plain", false, "Use the line based wizard instead of the TUI")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	path := resolvedConfigPath()

	if setupPlain {
		return setup.Wizard(cmd.InOrStdin(), cmd.OutOrStdout(), path)
	}

	saved, err := setuptui.Run(path)
	if err != nil {
		return err
	}
	if !saved {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Setup cancelled, nothing written.")
	}
	return nil
}
