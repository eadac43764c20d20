// Package screens loads the data behind each view. A load checks the session
// first, runs independent fetches concurrently and only returns once all of
// them have finished.
package screens

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/budgetwise-dev/budgetwise/internal/auth"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/period"
	"github.com/budgetwise-dev/budgetwise/internal/prompt"
	"github.com/budgetwise-dev/budgetwise/internal/router"
	"github.com/budgetwise-dev/budgetwise/internal/summary"
)

// Client is the part of the API the screens read from.
type Client interface {
	GetProfile(ctx context.Context) (model.Profile, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	Monthly(ctx context.Context, p period.Period) (model.MonthlyData, error)
	DashboardSummary(ctx context.Context) (model.DashboardSummary, error)
	SpendingTrends(ctx context.Context) ([]model.SpendingTrend, error)
	ListSavingGoals(ctx context.Context) ([]model.SavingGoal, error)
	DeleteTransaction(ctx context.Context, id int64) error
	DeleteSavingGoal(ctx context.Context, id int64) error
	ReportPDF(ctx context.Context, p period.Period) ([]byte, error)
}

// Loader fetches and derives screen data.
type Loader struct {
	gate   *auth.Gate
	client Client
	agg    *summary.Aggregator
	log    zerolog.Logger
}

func NewLoader(gate *auth.Gate, client Client, agg *summary.Aggregator, log zerolog.Logger) *Loader {
	return &Loader{gate: gate, client: client, agg: agg, log: log}
}

// DashboardView is the dashboard screen.
type DashboardView struct {
	Summary model.DashboardSummary
	Trends  []model.SpendingTrend
}

// TransactionsView is the transactions screen for one month. The profile's
// income is the month's opening figure. No budget set is loaded for this
// screen, so Month.Categories is left empty; BudgetView carries the per-category
// budget lines.
type TransactionsView struct {
	Period  period.Period
	Profile model.Profile
	All     []model.Transaction
	Month   summary.MonthlySummary
}

// BudgetView is the budget screen for one month.
type BudgetView struct {
	Period  period.Period
	Monthly model.MonthlyData
	Month   summary.MonthlySummary
}

// ProfileView is the profile screen with the user's saving goals.
type ProfileView struct {
	Profile model.Profile
	Goals   []model.SavingGoal
}

// Dashboard loads the summary and spending trends.
func (l *Loader) Dashboard(ctx context.Context) (*DashboardView, error) {
	if err := l.enter(ctx, router.PathDashboard); err != nil {
		return nil, err
	}
	var v DashboardView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.Summary, err = l.client.DashboardSummary(gctx)
		return err
	})
	g.Go(func() (err error) {
		v.Trends, err = l.client.SpendingTrends(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, l.fail(ctx, "dashboard", err)
	}
	return &v, nil
}

// Transactions loads the profile and the full transaction list, then
// summarises month p.
func (l *Loader) Transactions(ctx context.Context, p period.Period) (*TransactionsView, error) {
	if err := l.enter(ctx, router.PathTransactions); err != nil {
		return nil, err
	}
	v := TransactionsView{Period: p}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.Profile, err = l.client.GetProfile(gctx)
		return err
	})
	g.Go(func() (err error) {
		v.All, err = l.client.ListTransactions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, l.fail(ctx, "transactions", err)
	}
	v.Month = l.agg.Summarize(summary.Input{
		Period:          p,
		Transactions:    v.All,
		StartingBalance: v.Profile.Income,
	})
	v.Month.Categories = nil
	return &v, nil
}

// Budget loads the month's data with its budget set and starting balance.
func (l *Loader) Budget(ctx context.Context, p period.Period) (*BudgetView, error) {
	if err := l.enter(ctx, router.PathBudget); err != nil {
		return nil, err
	}
	monthly, err := l.client.Monthly(ctx, p)
	if err != nil {
		return nil, l.fail(ctx, "budget", err)
	}
	return &BudgetView{
		Period:  p,
		Monthly: monthly,
		Month: l.agg.Summarize(summary.Input{
			Period:          p,
			Transactions:    monthly.Transactions,
			Limits:          monthly.Limits(),
			StartingBalance: monthly.StartingBalance,
		}),
	}, nil
}

// Profile loads the profile and saving goals.
func (l *Loader) Profile(ctx context.Context) (*ProfileView, error) {
	if err := l.enter(ctx, router.PathProfile); err != nil {
		return nil, err
	}
	var v ProfileView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.Profile, err = l.client.GetProfile(gctx)
		return err
	})
	g.Go(func() (err error) {
		v.Goals, err = l.client.ListSavingGoals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, l.fail(ctx, "profile", err)
	}
	return &v, nil
}

// DeleteTransaction asks for confirmation, deletes and reloads v. On failure
// v is left as it was.
func (l *Loader) DeleteTransaction(ctx context.Context, v *TransactionsView, id int64, confirm prompt.Confirmer) (bool, error) {
	ok, err := confirm.Confirm(ctx, "Delete this transaction?")
	if err != nil || !ok {
		return false, err
	}
	if err := l.client.DeleteTransaction(ctx, id); err != nil {
		return false, l.gate.HandleError(ctx, fmt.Errorf("deleting transaction %d: %w", id, err))
	}
	l.log.Info().Int64("id", id).Msg("transaction deleted")
	fresh, err := l.Transactions(ctx, v.Period)
	if err != nil {
		return true, err
	}
	*v = *fresh
	return true, nil
}

// DeleteGoal asks for confirmation, deletes and reloads v. On failure v is
// left as it was.
func (l *Loader) DeleteGoal(ctx context.Context, v *ProfileView, id int64, confirm prompt.Confirmer) (bool, error) {
	ok, err := confirm.Confirm(ctx, "Are you sure you want to delete this goal?")
	if err != nil || !ok {
		return false, err
	}
	if err := l.client.DeleteSavingGoal(ctx, id); err != nil {
		return false, l.gate.HandleError(ctx, fmt.Errorf("deleting goal %d: %w", id, err))
	}
	l.log.Info().Int64("id", id).Msg("saving goal deleted")
	fresh, err := l.Profile(ctx)
	if err != nil {
		return true, err
	}
	*v = *fresh
	return true, nil
}

// ReportFilename is the name the PDF report is saved under.
func ReportFilename(p period.Period) string {
	return fmt.Sprintf("BudgetWise_Report_%s.pdf", p)
}

// Report downloads the month's PDF. It is tried once.
func (l *Loader) Report(ctx context.Context, p period.Period) ([]byte, error) {
	if err := l.enter(ctx, router.PathProfile); err != nil {
		return nil, err
	}
	data, err := l.client.ReportPDF(ctx, p)
	if err != nil {
		return nil, l.fail(ctx, "report", err)
	}
	return data, nil
}

func (l *Loader) enter(ctx context.Context, path string) error {
	if _, err := l.gate.Enter(ctx, path); err != nil {
		return err
	}
	return nil
}

func (l *Loader) fail(ctx context.Context, screen string, err error) error {
	l.log.Warn().Err(err).Str("screen", screen).Msg("load failed")
	return l.gate.HandleError(ctx, fmt.Errorf("loading %s: %w", screen, err))
}
