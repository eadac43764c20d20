package model

import "strings"

// AccountKind is the "account" field of a transaction. Despite the name it is
// the transaction's direction, not a bank account.
type AccountKind string

const (
	AccountIncome  AccountKind = "income"
	AccountExpense AccountKind = "expense"
	// AccountBorrow is a legacy value that counts as income.
	AccountBorrow AccountKind = "borrow"
)

// Bucket is the side of the ledger a transaction is totalled on.
type Bucket int

const (
	BucketOther Bucket = iota
	BucketIncome
	BucketExpense
)

// Normalize lowercases and trims the kind.
func (k AccountKind) Normalize() AccountKind {
	return AccountKind(strings.ToLower(strings.TrimSpace(string(k))))
}

// Bucket classifies the kind case-insensitively. Unknown kinds are
// BucketOther and are excluded from totals.
func (k AccountKind) Bucket() Bucket {
	switch k.Normalize() {
	case AccountIncome, AccountBorrow:
		return BucketIncome
	case AccountExpense:
		return BucketExpense
	default:
		return BucketOther
	}
}

// Valid reports whether k is accepted by the transaction form.
func (k AccountKind) Valid() bool {
	switch k.Normalize() {
	case AccountIncome, AccountExpense:
		return true
	default:
		return false
	}
}
