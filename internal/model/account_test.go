package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountKind_Bucket(t *testing.T) {
	tests := []struct {
		kind AccountKind
		want Bucket
	}{
		{"income", BucketIncome},
		{"Income", BucketIncome},
		{" INCOME ", BucketIncome},
		{"borrow", BucketIncome},
		{"expense", BucketExpense},
		{"EXPENSE", BucketExpense},
		{"transfer", BucketOther},
		{"", BucketOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.Bucket(), "kind %q", tt.kind)
	}
}

func TestAccountKind_Valid(t *testing.T) {
	assert.True(t, AccountKind("income").Valid())
	assert.True(t, AccountKind("Expense").Valid())
	assert.False(t, AccountKind("borrow").Valid())
	assert.False(t, AccountKind("").Valid())
}
