package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/category"
	"github.com/budgetwise-dev/budgetwise/internal/forms"
	"github.com/budgetwise-dev/budgetwise/internal/router"
)

func newBudgetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Monthly budgets and starting balance",
	}
	cmd.AddCommand(
		newBudgetShowCommand(a),
		newBudgetSetCommand(a),
		newBudgetBalanceCommand(a),
	)
	return cmd
}

func newBudgetShowCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show budget against actual spending per category",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			p, err := a.period(month)
			if err != nil {
				return err
			}
			v, err := a.loader.Budget(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.renderer().Budget(v)
		}),
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current)")
	return cmd
}

func newBudgetSetCommand(a *app) *cobra.Command {
	var month string
	limits := map[string]*string{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set category budgets for a month",
		Long:  "Set category budgets for a month. Categories not given keep their current budget. The total may not exceed the month's starting balance.",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.period(month)
			if err != nil {
				return err
			}
			v, err := a.loader.Budget(ctx, p)
			if err != nil {
				return err
			}

			c := forms.NewBudget(a.client, a.cats, a.money, p, v.Monthly.StartingBalance, v.Monthly.Limits(),
				a.policy(),
				forms.WithRefetch(func(ctx context.Context) error {
					fresh, err := a.loader.Budget(ctx, p)
					if err != nil {
						return err
					}
					return a.renderer().Budget(fresh)
				}))
			values := map[string]string{}
			for _, cat := range a.cats.All() {
				if cmd.Flags().Changed(cat.Short) {
					values[cat.BudgetKey] = *limits[cat.Short]
				}
			}
			if err := fill(c, values); err != nil {
				return err
			}
			err = c.Submit(ctx)
			a.record(ctx, "budget.set", p.String(), err)
			if err != nil {
				return a.formFailure(c, err)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current)")
	for _, cat := range category.Default().All() {
		limits[cat.Short] = cmd.Flags().String(cat.Short, "", fmt.Sprintf("budget for %s", cat.Name))
	}
	return cmd
}

func newBudgetBalanceCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "balance <amount>",
		Short: "Set the starting balance for a month",
		Args:  cobra.ExactArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.period(month)
			if err != nil {
				return err
			}
			if err := a.enter(ctx, router.PathBudget); err != nil {
				return err
			}
			c := forms.NewStartingBalance(a.client, p, a.policy())
			if err := c.FieldChange("balance", args[0]); err != nil {
				return err
			}
			err = c.Submit(ctx)
			a.record(ctx, "budget.balance", p.String(), err)
			if err != nil {
				return a.formFailure(c, err)
			}
			fmt.Fprintf(a.out, "Starting balance for %s set to %s\n", p, a.money.Format(forms.Values{"balance": args[0]}.Decimal("balance")))
			return nil
		}),
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current)")
	return cmd
}
