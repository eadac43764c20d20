// Package summary derives the monthly figures shown on the transactions and
// budget screens from a raw transaction list.
package summary

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/budgetwise-dev/budgetwise/internal/category"
	"github.com/budgetwise-dev/budgetwise/internal/model"
	"github.com/budgetwise-dev/budgetwise/internal/period"
)

// Input is everything the aggregator needs for one month.
type Input struct {
	Period          period.Period
	Transactions    []model.Transaction
	Limits          model.BudgetLimits // keyed by budget key; missing keys are zero
	StartingBalance decimal.Decimal
}

// CategoryStatus is the budget-vs-actual line of one fixed category.
type CategoryStatus struct {
	Category   category.Category
	Budget     decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Overbudget bool
}

// DayGroup holds one calendar date's transactions split by bucket, each list
// in fetch order.
type DayGroup struct {
	Date    model.Date
	Income  []model.Transaction
	Expense []model.Transaction
	Other   []model.Transaction
}

// MonthlySummary is derived per selected month and never persisted.
type MonthlySummary struct {
	Period           period.Period
	StartingBalance  decimal.Decimal
	TotalCredits     decimal.Decimal
	TotalExpenses    decimal.Decimal
	RemainingBalance decimal.Decimal
	Overbudget       bool

	Categories []CategoryStatus
	// Untracked sums expenses whose category is outside the fixed set.
	Untracked map[string]decimal.Decimal

	Transactions []model.Transaction // in the month, fetch order
	Days         []DayGroup          // most recent date first
}

// Aggregator computes MonthlySummary values against a category catalogue.
type Aggregator struct {
	categories *category.Catalogue
}

// New creates an Aggregator.
func New(categories *category.Catalogue) *Aggregator {
	return &Aggregator{categories: categories}
}

// Summarize filters in.Transactions to in.Period and computes totals,
// remaining balance, per-category remaining and date groups. Amounts that are
// not numeric count as zero here and are left untouched on the records.
func (a *Aggregator) Summarize(in Input) MonthlySummary {
	s := MonthlySummary{
		Period:          in.Period,
		StartingBalance: in.StartingBalance,
		TotalCredits:    decimal.Zero,
		TotalExpenses:   decimal.Zero,
		Untracked:       make(map[string]decimal.Decimal),
	}

	spent := make(map[string]decimal.Decimal)
	for _, txn := range in.Transactions {
		if !in.Period.Contains(txn.Date.Time) {
			continue
		}
		s.Transactions = append(s.Transactions, txn)

		amount := txn.Amount.OrZero()
		switch txn.Account.Bucket() {
		case model.BucketIncome:
			s.TotalCredits = s.TotalCredits.Add(amount)
		case model.BucketExpense:
			s.TotalExpenses = s.TotalExpenses.Add(amount)
			if a.categories.IsBudgeted(txn.Category) {
				spent[txn.Category] = spent[txn.Category].Add(amount)
			} else {
				s.Untracked[txn.Category] = s.Untracked[txn.Category].Add(amount)
			}
		}
	}

	s.RemainingBalance = s.StartingBalance.Add(s.TotalCredits).Sub(s.TotalExpenses)
	s.Overbudget = s.RemainingBalance.IsNegative()

	for _, cat := range a.categories.All() {
		budget := in.Limits[cat.BudgetKey]
		used := spent[cat.Name]
		remaining := budget.Sub(used)
		s.Categories = append(s.Categories, CategoryStatus{
			Category:   cat,
			Budget:     budget,
			Spent:      used,
			Remaining:  remaining,
			Overbudget: remaining.IsNegative(),
		})
	}

	s.Days = GroupByDate(s.Transactions)
	return s
}

// Category returns the status line for a budget key.
func (s MonthlySummary) Category(key string) (CategoryStatus, bool) {
	for _, c := range s.Categories {
		if c.Category.BudgetKey == key {
			return c, true
		}
	}
	return CategoryStatus{}, false
}

// GroupByDate groups transactions by calendar date, most recent first. Within
// a date the income, expense and other lists keep input order.
func GroupByDate(txns []model.Transaction) []DayGroup {
	index := make(map[string]int)
	var groups []DayGroup
	for _, txn := range txns {
		key := txn.Date.String()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: txn.Date})
		}
		switch txn.Account.Bucket() {
		case model.BucketIncome:
			groups[i].Income = append(groups[i].Income, txn)
		case model.BucketExpense:
			groups[i].Expense = append(groups[i].Expense, txn)
		default:
			groups[i].Other = append(groups[i].Other, txn)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date.Time)
	})
	return groups
}
