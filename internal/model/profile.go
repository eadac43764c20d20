package model

import "github.com/shopspring/decimal"

// User is the identity part of a profile response.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile is a user's static financial parameters.
type Profile struct {
	User          User            `json:"user"`
	Income        decimal.Decimal `json:"income"`
	SavingsGoal   decimal.Decimal `json:"savingsGoal"`
	TargetExpense decimal.Decimal `json:"targetExpense"`
}

// ProfileInput is the body of add-profile.
type ProfileInput struct {
	Income        decimal.Decimal `json:"income"`
	SavingsGoal   decimal.Decimal `json:"savingsGoal"`
	TargetExpense decimal.Decimal `json:"targetExpense"`
}

// ProfileCheck is the check-profile response.
type ProfileCheck struct {
	Profile bool `json:"Profile"`
}
