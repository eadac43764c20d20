// Package model holds the records exchanged with the BudgetWise API.
package model

import "github.com/shopspring/decimal"

func init() {
	// The server binds amounts, balances and budget limits as JSON numbers
	// and rejects quoted decimals.
	decimal.MarshalJSONWithoutQuotes = true
}
