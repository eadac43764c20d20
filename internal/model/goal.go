package model

import "github.com/shopspring/decimal"

// SavingGoal is a named savings target. CurrentAmount may exceed
// TargetAmount; the server does not forbid it.
type SavingGoal struct {
	ID            int64           `json:"id,omitempty"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
}

// SavingGoalInput is the body of create/update requests.
type SavingGoalInput struct {
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
}

// Progress returns CurrentAmount/TargetAmount as a fraction, or zero when
// there is no target.
func (g SavingGoal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount)
}
