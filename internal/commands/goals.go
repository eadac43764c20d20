package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/forms"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/router"
)

func newGoalsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage saving goals",
	}
	cmd.AddCommand(
		newGoalsListCommand(a),
		newGoalAddCommand(a),
		newGoalEditCommand(a),
		newGoalDeleteCommand(a),
	)
	return cmd
}

func newGoalsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saving goals with progress",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			return a.showGoals(cmd.Context())
		}),
	}
}

func (a *app) showGoals(ctx context.Context) error {
	v, err := a.loader.Profile(ctx)
	if err != nil {
		return err
	}
	return a.renderer().Goals(v.Goals)
}

type goalFlags struct {
	name, target, current string
}

func (f *goalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "goal name")
	cmd.Flags().StringVar(&f.target, "target", "", "target amount")
	cmd.Flags().StringVar(&f.current, "current", "", "amount saved so far")
}

func (f *goalFlags) values() map[string]string {
	return map[string]string{
		"name":          f.name,
		"targetAmount":  f.target,
		"currentAmount": f.current,
	}
}

func (a *app) submitGoal(ctx context.Context, existing *model.SavingGoal, flags goalFlags, action, target string) error {
	f := forms.NewSavingGoal(a.client, existing, a.policy(), forms.WithRefetch(a.showGoals))
	if err := fill(f.Controller, flags.values()); err != nil {
		return err
	}
	err := f.Submit(ctx)
	a.record(ctx, action, target, err)
	if err != nil {
		return a.formFailure(f.Controller, err)
	}
	return nil
}

func newGoalAddCommand(a *app) *cobra.Command {
	var flags goalFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a saving goal",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			if flags.current == "" {
				flags.current = "0"
			}
			return a.submitGoal(cmd.Context(), nil, flags, "goal.add", flags.name)
		}),
	}
	flags.register(cmd)
	return cmd
}

func newGoalEditCommand(a *app) *cobra.Command {
	var flags goalFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a saving goal; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			existing, err := a.findGoal(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.submitGoal(cmd.Context(), existing, flags, "goal.edit", args[0])
		}),
	}
	flags.register(cmd)
	return cmd
}

func newGoalDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saving goal after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := a.loader.Profile(ctx)
			if err != nil {
				return err
			}
			deleted, err := a.loader.DeleteGoal(ctx, v, id, a.confirmer())
			if deleted || err != nil {
				a.record(ctx, "goal.delete", args[0], err)
			}
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(a.out, "Cancelled.")
				return nil
			}
			return a.renderer().Goals(v.Goals)
		}),
	}
}

func (a *app) findGoal(ctx context.Context, id int64) (*model.SavingGoal, error) {
	if err := a.enter(ctx, router.PathDashboard); err != nil {
		return nil, err
	}
	goals, err := a.client.ListSavingGoals(ctx)
	if err != nil {
		return nil, a.gate.HandleError(ctx, fmt.Errorf("loading saving goals: %w", err))
	}
	for i := range goals {
		if goals[i].ID == id {
			return &goals[i], nil
		}
	}
	return nil, fmt.Errorf("no saving goal with id %d", id)
}
