package model

import "github.com/shopspring/decimal"

// MonthlyData is the /api/transaction/monthly response.
type MonthlyData struct {
	Transactions         []Transaction   `json:"transactions"`
	StartingBalance      decimal.Decimal `json:"startingBalance"`
	TotalCredits         decimal.Decimal `json:"totalCredits"`
	TotalExpenses        decimal.Decimal `json:"totalExpenses"`
	RemainingBalance     decimal.Decimal `json:"remainingBalance"`
	MonthlyIncome        decimal.Decimal `json:"monthlyIncome"`
	BudgetFood           decimal.Decimal `json:"budgetFood"`
	BudgetTransportation decimal.Decimal `json:"budgetTransportation"`
	BudgetEntertainment  decimal.Decimal `json:"budgetEntertainment"`
	BudgetShopping       decimal.Decimal `json:"budgetShopping"`
	BudgetUtilities      decimal.Decimal `json:"budgetUtilities"`
}

// BudgetLimits maps a budget key (e.g. "budgetFood") to its limit.
type BudgetLimits map[string]decimal.Decimal

// MonthlyBudgetSet holds the per-category limits and starting balance of one
// (year, month).
type MonthlyBudgetSet struct {
	Year            int
	Month           int
	Limits          BudgetLimits
	StartingBalance decimal.Decimal
}

// Limits returns the five budget fields keyed by their response key.
func (m MonthlyData) Limits() BudgetLimits {
	return BudgetLimits{
		"budgetFood":           m.BudgetFood,
		"budgetTransportation": m.BudgetTransportation,
		"budgetEntertainment":  m.BudgetEntertainment,
		"budgetShopping":       m.BudgetShopping,
		"budgetUtilities":      m.BudgetUtilities,
	}
}

// BudgetSet returns the budget set carried by a monthly response.
func (m MonthlyData) BudgetSet(year, month int) MonthlyBudgetSet {
	return MonthlyBudgetSet{
		Year:            year,
		Month:           month,
		Limits:          m.Limits(),
		StartingBalance: m.StartingBalance,
	}
}

// Total sums all limits.
func (l BudgetLimits) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range l {
		total = total.Add(v)
	}
	return total
}

// DashboardSummary is the /api/dashboard/summary response.
type DashboardSummary struct {
	TotalIncome   decimal.Decimal `json:"totalIncome"`
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
	Savings       decimal.Decimal `json:"savings"`
	BudgetsCount  int             `json:"budgetsCount"`
}

// SpendingTrend is one row of /api/transaction/spending-trends.
type SpendingTrend struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
}
