package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/budgetwise-dev/budgetwise/internal/api"
	"github.com/budgetwise-dev/budgetwise/internal/csvio"
	"github.com/budgetwise-dev/budgetwise/internal/forms"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/period"
	"github.com/budgetwise-dev/budgetwise/internal/router"
)

func newTransactionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"tx"},
		Short:   "List and manage transactions",
	}
	cmd.AddCommand(
		newTransactionsListCommand(a),
		newTransactionAddCommand(a),
		newTransactionEditCommand(a),
		newTransactionDeleteCommand(a),
		newTransactionsImportCommand(a),
		newTransactionsExportCommand(a),
	)
	return cmd
}

func newTransactionsListCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a month's totals and transactions grouped by date",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			p, err := a.period(month)
			if err != nil {
				return err
			}
			return a.showTransactions(cmd.Context(), p)
		}),
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current)")
	return cmd
}

func (a *app) showTransactions(ctx context.Context, p period.Period) error {
	v, err := a.loader.Transactions(ctx, p)
	if err != nil {
		return err
	}
	return a.renderer().Transactions(v)
}

type transactionFlags struct {
	description, amount, category, account, date string
}

func (f *transactionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "what it was")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount, always positive")
	cmd.Flags().StringVar(&f.category, "category", "", "category, e.g. \"Food & dining\"")
	cmd.Flags().StringVar(&f.account, "type", "", "income or expense")
	cmd.Flags().StringVar(&f.date, "date", "", "date as YYYY-MM-DD")
}

func (f *transactionFlags) values() map[string]string {
	return map[string]string{
		"description": f.description,
		"amount":      f.amount,
		"category":    f.category,
		"account":     f.account,
		"date":        f.date,
	}
}

// submitTransaction runs the form and records the outcome.
func (a *app) submitTransaction(ctx context.Context, f *forms.TransactionForm, action, target string) error {
	err := f.Submit(ctx)
	a.record(ctx, action, target, err)
	if err != nil {
		return a.formFailure(f.Controller, err)
	}
	return nil
}

// refetchMonthOf re-renders the month containing date after a save.
func (a *app) refetchMonthOf(date string) forms.Option {
	return forms.WithRefetch(func(ctx context.Context) error {
		p := period.Current(a.now())
		if d, err := model.ParseDate(date); err == nil {
			p = period.Of(d.Time)
		}
		return a.showTransactions(ctx, p)
	})
}

func newTransactionAddCommand(a *app) *cobra.Command {
	var flags transactionFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			if flags.date == "" {
				flags.date = a.now().Format(model.DateFormat)
			}
			f := forms.NewTransaction(a.client, nil, a.policy(), a.refetchMonthOf(flags.date))
			if err := fill(f.Controller, flags.values()); err != nil {
				return err
			}
			return a.submitTransaction(cmd.Context(), f, "transaction.add", flags.description)
		}),
	}
	flags.register(cmd)
	return cmd
}

func newTransactionEditCommand(a *app) *cobra.Command {
	var flags transactionFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a transaction; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			existing, err := a.findTransaction(cmd.Context(), id)
			if err != nil {
				return err
			}
			date := flags.date
			if date == "" {
				date = existing.Date.String()
			}
			f := forms.NewTransaction(a.client, existing, a.policy(), a.refetchMonthOf(date))
			if err := fill(f.Controller, flags.values()); err != nil {
				return err
			}
			return a.submitTransaction(cmd.Context(), f, "transaction.edit", args[0])
		}),
	}
	flags.register(cmd)
	return cmd
}

func newTransactionDeleteCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := a.period(month)
			if err != nil {
				return err
			}
			v, err := a.loader.Transactions(ctx, p)
			if err != nil {
				return err
			}
			deleted, err := a.loader.DeleteTransaction(ctx, v, id, a.confirmer())
			if deleted || err != nil {
				a.record(ctx, "transaction.delete", args[0], err)
			}
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(a.out, "Cancelled.")
				return nil
			}
			return a.renderer().Transactions(v)
		}),
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show afterwards as YYYY-MM (default current)")
	return cmd
}

func newTransactionsImportCommand(a *app) *cobra.Command {
	var format, categoryName string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create transactions from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg := csvio.DefaultRegistry()
			if categoryName != "" {
				reg = csvio.NewRegistry()
				reg.Register(&csvio.NativeParser{})
				reg.Register(&csvio.ChaseParser{Category: categoryName})
			}
			parser := reg.Get(format)
			if parser == nil {
				return fmt.Errorf("unknown format %q (available: %v)", format, reg.Formats())
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer file.Close()

			inputs, err := parser.Parse(file)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			if err := a.enter(ctx, router.PathTransactions); err != nil {
				return err
			}

			results, err := csvio.Import(ctx, a.client, inputs)
			imported, failed := 0, 0
			for _, res := range results {
				if res.Err == nil {
					imported++
					continue
				}
				failed++
				msg := res.General
				if msg == "" {
					msg = api.Message(res.Err)
				}
				fmt.Fprintf(a.errw, "row %d: %s\n", res.Row, msg)
				for field, fm := range res.Fields {
					fmt.Fprintf(a.errw, "  %s: %s\n", field, fm)
				}
			}
			a.record(ctx, "transaction.import", fmt.Sprintf("%s (%d ok, %d failed)", args[0], imported, failed), err)
			if err != nil {
				return a.gate.HandleError(ctx, err)
			}
			fmt.Fprintf(a.out, "Imported %d of %d transactions.\n", imported, len(inputs))
			if failed > 0 {
				return fmt.Errorf("%d rows failed", failed)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", "native", "file format: native or chase")
	cmd.Flags().StringVar(&categoryName, "category", "", "category for bank rows (default \""+csvio.DefaultImportCategory+"\")")
	return cmd
}

func newTransactionsExportCommand(a *app) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a month's transactions as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: opened(a, func(cmd *cobra.Command, args []string) error {
			p, err := a.period(month)
			if err != nil {
				return err
			}
			v, err := a.loader.Transactions(cmd.Context(), p)
			if err != nil {
				return err
			}
			file, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			if err := csvio.WriteTransactions(file, v.Month.Transactions); err != nil {
				file.Close()
				return fmt.Errorf("writing %s: %w", args[0], err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", args[0], err)
			}
			fmt.Fprintf(a.out, "Exported %d transactions for %s to %s\n", len(v.Month.Transactions), p, args[0])
			return nil
		}),
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default current)")
	return cmd
}

// findTransaction looks id up in the user's transaction list.
func (a *app) findTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := a.enter(ctx, router.PathTransactions); err != nil {
		return nil, err
	}
	txns, err := a.client.ListTransactions(ctx)
	if err != nil {
		return nil, a.gate.HandleError(ctx, fmt.Errorf("loading transactions: %w", err))
	}
	for i := range txns {
		if txns[i].ID == id {
			return &txns[i], nil
		}
	}
	return nil, fmt.Errorf("no transaction with id %d", id)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
