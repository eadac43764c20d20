package model

// Transaction is a single income or expense record owned by the signed-in user.
type Transaction struct {
	ID          int64       `json:"id,omitempty"`
	Description string      `json:"description"`
	Amount      Amount      `json:"amount"`
	Category    string      `json:"category"` // free-text label
	Account     AccountKind `json:"account"`
	Date        Date        `json:"date"`
}

// TransactionInput is the body of add/update requests.
type TransactionInput struct {
	Description string      `json:"description"`
	Amount      Amount      `json:"amount"`
	Category    string      `json:"category"`
	Account     AccountKind `json:"account"`
	Date        Date        `json:"date"`
}

// Input returns the request body for re-submitting t.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Description: t.Description,
		Amount:      t.Amount,
		Category:    t.Category,
		Account:     t.Account,
		Date:        t.Date,
	}
}
