package forms

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/budgetwise-dev/budgetwise/internal/api"
	"github.com/budgetwise-dev/budgetwise/internal/auth"
	"github.com/budgetwise-dev/budgetwise/internal/category"
	"github.com/budgetwise-dev/budgetwise/internal/display"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/period"
)

// AuthForm is a login, register or profile form. Decision holds the gate's
// routing outcome of the last successful submission.
type AuthForm struct {
	*Controller
	Decision auth.Decision
}

// NewLogin builds the login form.
func NewLogin(g *auth.Gate, opts ...Option) *AuthForm {
	f := &AuthForm{}
	f.Controller = newController([]Field{
		{Name: "email", Label: "Email", Required: true},
		{Name: "password", Label: "Password", Required: true, Secret: true},
	}, nil, opts...)
	f.submit = func(ctx context.Context, v Values) error {
		d, err := g.Login(ctx, api.Credentials{Email: strings.TrimSpace(v["email"]), Password: v["password"]})
		f.Decision = d
		return err
	}
	return f
}

// NewRegister builds the signup form. A successful signup logs in.
func NewRegister(g *auth.Gate, opts ...Option) *AuthForm {
	f := &AuthForm{}
	f.Controller = newController([]Field{
		{Name: "name", Label: "Name", Required: true},
		{Name: "email", Label: "Email", Required: true},
		{Name: "password", Label: "Password", Required: true, Secret: true},
	}, nil, opts...)
	f.submit = func(ctx context.Context, v Values) error {
		d, err := g.Register(ctx, api.Signup{
			Name:     strings.TrimSpace(v["name"]),
			Email:    strings.TrimSpace(v["email"]),
			Password: v["password"],
		})
		f.Decision = d
		return err
	}
	return f
}

// NewProfile builds the one-time profile completion form.
func NewProfile(g *auth.Gate, opts ...Option) *AuthForm {
	f := &AuthForm{}
	f.Controller = newController([]Field{
		{Name: "income", Label: "Monthly income", Required: true, Numeric: true},
		{Name: "savingsGoal", Label: "Savings goal", Required: true, Numeric: true},
		{Name: "targetExpense", Label: "Target expense", Required: true, Numeric: true},
	}, nil, opts...)
	f.submit = func(ctx context.Context, v Values) error {
		d, err := g.CompleteProfile(ctx, model.ProfileInput{
			Income:        v.Decimal("income"),
			SavingsGoal:   v.Decimal("savingsGoal"),
			TargetExpense: v.Decimal("targetExpense"),
		})
		f.Decision = d
		return err
	}
	return f
}

// TransactionAPI is the part of the client the transaction form calls.
type TransactionAPI interface {
	AddTransaction(ctx context.Context, in model.TransactionInput) error
	UpdateTransaction(ctx context.Context, id int64, in model.TransactionInput) error
}

// TransactionForm creates a transaction, or edits one when built with an
// existing record.
type TransactionForm struct {
	*Controller
	existing *model.Transaction
}

// NewTransaction builds the form. A nil existing means create.
func NewTransaction(client TransactionAPI, existing *model.Transaction, opts ...Option) *TransactionForm {
	initial := Values{"account": string(model.AccountExpense)}
	if existing != nil {
		initial = Values{
			"description": existing.Description,
			"amount":      existing.Amount.Raw(),
			"category":    existing.Category,
			"account":     string(existing.Account.Normalize()),
			"date":        existing.Date.String(),
		}
	}

	f := &TransactionForm{existing: existing}
	f.Controller = newController([]Field{
		{Name: "description", Label: "Description", Required: true},
		{Name: "amount", Label: "Amount", Required: true, Numeric: true},
		{Name: "category", Label: "Category", Required: true},
		{Name: "account", Label: "Type", Required: true},
		{Name: "date", Label: "Date", Required: true},
	}, initial, opts...)
	f.resetOnSuccess = existing == nil
	f.validate = func(v Values) (map[string]string, string) {
		errs := map[string]string{}
		if !model.AccountKind(v["account"]).Valid() {
			errs["account"] = "Type must be income or expense"
		}
		if _, err := model.ParseDate(v["date"]); err != nil {
			errs["date"] = "Date must be YYYY-MM-DD"
		}
		return errs, ""
	}
	f.submit = func(ctx context.Context, v Values) error {
		in, err := transactionInput(v)
		if err != nil {
			return err
		}
		if f.existing != nil {
			return client.UpdateTransaction(ctx, f.existing.ID, in)
		}
		return client.AddTransaction(ctx, in)
	}
	return f
}

// Editing reports whether the form updates an existing record.
func (f *TransactionForm) Editing() bool { return f.existing != nil }

func transactionInput(v Values) (model.TransactionInput, error) {
	amount, err := model.ParseAmount(v["amount"])
	if err != nil {
		return model.TransactionInput{}, err
	}
	date, err := model.ParseDate(v["date"])
	if err != nil {
		return model.TransactionInput{}, err
	}
	return model.TransactionInput{
		Description: strings.TrimSpace(v["description"]),
		Amount:      amount,
		Category:    strings.TrimSpace(v["category"]),
		Account:     model.AccountKind(v["account"]).Normalize(),
		Date:        date,
	}, nil
}

// BudgetAPI is the part of the client the budget forms call.
type BudgetAPI interface {
	SetBudgets(ctx context.Context, p period.Period, limits model.BudgetLimits) error
	SetStartingBalance(ctx context.Context, p period.Period, balance decimal.Decimal) error
}

// NewBudget builds the per-category budget form for one period. Fields are
// named by budget key and prefilled from current. Empty fields count as zero.
func NewBudget(client BudgetAPI, cats *category.Catalogue, money *display.Money, p period.Period,
	startingBalance decimal.Decimal, current model.BudgetLimits, opts ...Option) *Controller {
	var fields []Field
	initial := Values{}
	for _, cat := range cats.All() {
		fields = append(fields, Field{Name: cat.BudgetKey, Label: cat.Name, Numeric: true})
		if v, ok := current[cat.BudgetKey]; ok {
			initial[cat.BudgetKey] = v.String()
		}
	}

	c := newController(fields, initial, opts...)
	c.validate = func(v Values) (map[string]string, string) {
		total := budgetLimits(cats, v).Total()
		if total.GreaterThan(startingBalance) {
			return nil, fmt.Sprintf("Total budget (%s) cannot exceed your starting balance (%s).",
				money.Format(total), money.Format(startingBalance))
		}
		return nil, ""
	}
	c.submit = func(ctx context.Context, v Values) error {
		return client.SetBudgets(ctx, p, budgetLimits(cats, v))
	}
	return c
}

func budgetLimits(cats *category.Catalogue, v Values) model.BudgetLimits {
	limits := model.BudgetLimits{}
	for _, cat := range cats.All() {
		limits[cat.BudgetKey] = v.Decimal(cat.BudgetKey)
	}
	return limits
}

// NewStartingBalance builds the starting balance form for one period.
func NewStartingBalance(client BudgetAPI, p period.Period, opts ...Option) *Controller {
	c := newController([]Field{
		{Name: "balance", Label: "Starting balance", Required: true, Numeric: true},
	}, nil, opts...)
	c.submit = func(ctx context.Context, v Values) error {
		return client.SetStartingBalance(ctx, p, v.Decimal("balance"))
	}
	return c
}

// GoalAPI is the part of the client the saving goal form calls.
type GoalAPI interface {
	AddSavingGoal(ctx context.Context, in model.SavingGoalInput) error
	UpdateSavingGoal(ctx context.Context, id int64, in model.SavingGoalInput) error
}

// SavingGoalForm creates or edits a saving goal.
type SavingGoalForm struct {
	*Controller
	existing *model.SavingGoal
}

// NewSavingGoal builds the form. A nil existing means create.
func NewSavingGoal(client GoalAPI, existing *model.SavingGoal, opts ...Option) *SavingGoalForm {
	var initial Values
	if existing != nil {
		initial = Values{
			"name":          existing.Name,
			"targetAmount":  existing.TargetAmount.String(),
			"currentAmount": existing.CurrentAmount.String(),
		}
	}
	f := &SavingGoalForm{existing: existing}
	f.Controller = newController([]Field{
		{Name: "name", Label: "Goal name", Required: true},
		{Name: "targetAmount", Label: "Target amount", Required: true, Numeric: true},
		{Name: "currentAmount", Label: "Current amount", Required: true, Numeric: true},
	}, initial, opts...)
	f.resetOnSuccess = existing == nil
	f.submit = func(ctx context.Context, v Values) error {
		in := model.SavingGoalInput{
			Name:          strings.TrimSpace(v["name"]),
			TargetAmount:  v.Decimal("targetAmount"),
			CurrentAmount: v.Decimal("currentAmount"),
		}
		if f.existing != nil {
			return client.UpdateSavingGoal(ctx, f.existing.ID, in)
		}
		return client.AddSavingGoal(ctx, in)
	}
	return f
}

// Editing reports whether the form updates an existing goal.
func (f *SavingGoalForm) Editing() bool { return f.existing != nil }
