package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/forms"
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or complete your profile",
	}
	cmd.AddCommand(newProfileShowCommand(a), newProfileSetupCommand(a))
	return cmd
}

func newProfileShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile and saving goals",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			v, err := a.loader.Profile(cmd.Context())
			if err != nil {
				return err
			}
			r := a.renderer()
			if err := r.Profile(v); err != nil {
				return err
			}
			fmt.Fprintln(a.out)
			return r.Goals(v.Goals)
		}),
	}
}

func newProfileSetupCommand(a *app) *cobra.Command {
	var income, savingsGoal, targetExpense string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Complete your profile after signing up",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			f := forms.NewProfile(a.gate)
			if err := fill(f.Controller, map[string]string{
				"income":        income,
				"savingsGoal":   savingsGoal,
				"targetExpense": targetExpense,
			}); err != nil {
				return err
			}
			err := f.Submit(cmd.Context())
			a.record(cmd.Context(), "profile.setup", "", err)
			if err != nil {
				return a.formFailure(f.Controller, err)
			}
			fmt.Fprintln(a.out, "Profile saved.")
			fmt.Fprintf(a.out, "Next: %s\n", f.Decision.Next)
			return nil
		}),
	}

	cmd.Flags().StringVar(&income, "income", "", "monthly income")
	cmd.Flags().StringVar(&savingsGoal, "savings-goal", "", "monthly savings goal")
	cmd.Flags().StringVar(&targetExpense, "target-expense", "", "monthly expense target")

	return cmd
}
