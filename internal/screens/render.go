package screens

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/budgetwise-dev/budgetwise/internal/display"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/router"
	"github.com/budgetwise-dev/budgetwise/internal/summary"
)

// Renderer writes views as aligned text.
type Renderer struct {
	w     io.Writer
	money *display.Money
}

func NewRenderer(w io.Writer, money *display.Money) *Renderer {
	return &Renderer{w: w, money: money}
}

func (r *Renderer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
}

// Dashboard renders the dashboard view.
func (r *Renderer) Dashboard(v *DashboardView) error {
	tw := r.table()
	fmt.Fprintf(tw, "Total income\t%s\n", r.money.Format(v.Summary.TotalIncome))
	fmt.Fprintf(tw, "Total expenses\t%s\n", r.money.Format(v.Summary.TotalExpenses))
	fmt.Fprintf(tw, "Savings\t%s\n", r.money.Format(v.Summary.Savings))
	fmt.Fprintf(tw, "Budgets\t%d\n", v.Summary.BudgetsCount)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(v.Trends) == 0 {
		return nil
	}
	fmt.Fprintln(r.w, "\nSpending trend")
	trends := append([]model.SpendingTrend(nil), v.Trends...)
	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].Year != trends[j].Year {
			return trends[i].Year < trends[j].Year
		}
		return trends[i].Month < trends[j].Month
	})
	tw = r.table()
	for _, t := range trends {
		fmt.Fprintf(tw, "%04d-%02d\t%s\n", t.Year, t.Month, r.money.Format(t.TotalExpense))
	}
	return tw.Flush()
}

// Totals renders the month's balance lines. A negative remaining balance is
// flagged OVERBUDGET.
func (r *Renderer) Totals(s summary.MonthlySummary) error {
	tw := r.table()
	fmt.Fprintf(tw, "Month\t%s\n", s.Period)
	fmt.Fprintf(tw, "Starting balance\t%s\n", r.money.Format(s.StartingBalance))
	fmt.Fprintf(tw, "Credits\t%s\n", r.money.Format(s.TotalCredits))
	fmt.Fprintf(tw, "Expenses\t%s\n", r.money.Format(s.TotalExpenses))
	remaining := r.money.Format(s.RemainingBalance)
	if s.Overbudget {
		remaining += "  OVERBUDGET"
	}
	fmt.Fprintf(tw, "Remaining\t%s\n", remaining)
	return tw.Flush()
}

// Transactions renders totals and the date-grouped income/expense lists.
func (r *Renderer) Transactions(v *TransactionsView) error {
	if err := r.Totals(v.Month); err != nil {
		return err
	}
	if len(v.Month.Days) == 0 {
		fmt.Fprintf(r.w, "\nNo transactions in %s.\n", v.Period)
		return nil
	}
	tw := r.table()
	fmt.Fprintln(tw, "\nDATE\tID\tTYPE\tCATEGORY\tDESCRIPTION\tAMOUNT")
	for _, day := range v.Month.Days {
		for _, group := range [][]model.Transaction{day.Income, day.Expense, day.Other} {
			for _, txn := range group {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
					day.Date, txn.ID, txn.Account, txn.Category, txn.Description, r.money.Amount(txn.Amount))
			}
		}
	}
	return tw.Flush()
}

// Budget renders totals and per-category budget vs actual.
func (r *Renderer) Budget(v *BudgetView) error {
	if err := r.Totals(v.Month); err != nil {
		return err
	}
	tw := r.table()
	fmt.Fprintln(tw, "\nCATEGORY\tBUDGET\tSPENT\tREMAINING\t")
	for _, c := range v.Month.Categories {
		flag := ""
		if c.Overbudget {
			flag = "over budget"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			c.Category.Name, r.money.Format(c.Budget), r.money.Format(c.Spent), r.money.Format(c.Remaining), flag)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(v.Month.Untracked) == 0 {
		return nil
	}
	names := make([]string, 0, len(v.Month.Untracked))
	for name := range v.Month.Untracked {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(r.w, "\nOther spending (no budget)")
	tw = r.table()
	for _, name := range names {
		label := name
		if label == "" {
			label = "(uncategorised)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", label, r.money.Format(v.Month.Untracked[name]))
	}
	return tw.Flush()
}

// Profile renders the profile and saving goals.
func (r *Renderer) Profile(v *ProfileView) error {
	tw := r.table()
	fmt.Fprintf(tw, "Name\t%s\n", v.Profile.User.Name)
	fmt.Fprintf(tw, "Email\t%s\n", v.Profile.User.Email)
	fmt.Fprintf(tw, "Income\t%s\n", r.money.Format(v.Profile.Income))
	fmt.Fprintf(tw, "Savings goal\t%s\n", r.money.Format(v.Profile.SavingsGoal))
	fmt.Fprintf(tw, "Target expense\t%s\n", r.money.Format(v.Profile.TargetExpense))
	if err := tw.Flush(); err != nil {
		return err
	}
	return r.Goals(v.Goals)
}

// Goals renders saving goals with progress.
func (r *Renderer) Goals(goals []model.SavingGoal) error {
	if len(goals) == 0 {
		fmt.Fprintln(r.w, "\nNo saving goals yet.")
		return nil
	}
	tw := r.table()
	fmt.Fprintln(tw, "\nID\tGOAL\tSAVED\tTARGET\tPROGRESS")
	for _, g := range goals {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			g.ID, g.Name, r.money.Format(g.CurrentAmount), r.money.Format(g.TargetAmount), display.Percent(g.Progress()))
	}
	return tw.Flush()
}

// Nav renders the route table and the navigation bar for current.
func (r *Renderer) Nav(routes *router.Router, current string) error {
	tw := r.table()
	fmt.Fprintln(tw, "PATH\tSCREEN\tPROTECTED")
	for _, rt := range routes.Routes() {
		fmt.Fprintf(tw, "%s\t%s\t%t\n", rt.Path, rt.Screen, rt.Protected)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(r.w)
	for _, item := range routes.NavBar(current) {
		marker := " "
		if item.Active {
			marker = "*"
		}
		fmt.Fprintf(r.w, "%s %s\n", marker, item.Label)
	}
	return nil
}
