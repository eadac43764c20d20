package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/auth"
	"github.com/budgetwise-dev/budgetwise/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "budgetwise",
		Short:   "Personal budgeting from the command line",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/budgetwise/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "answer yes to confirmation prompts")

	rootCmd.AddCommand(
		newInitCommand(a),
		newRegisterCommand(a),
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newProfileCommand(a),
		newDashboardCommand(a),
		newTransactionsCommand(a),
		newBudgetCommand(a),
		newGoalsCommand(a),
		newReportCommand(a),
		newChatCommand(a),
		newNavCommand(a),
		newActivityCommand(a),
	)

	return rootCmd
}

// opened wraps a RunE so it runs with the app opened. The app is closed even
// when the command fails.
func opened(a *app, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(cmd); err != nil {
			_ = a.close()
			return err
		}
		err := run(cmd, args)
		if errors.Is(err, auth.ErrProfileRequired) {
			err = fmt.Errorf("%w: run 'budgetwise profile setup' first", err)
		}
		if cerr := a.close(); err == nil {
			err = cerr
		}
		return err
	}
}
