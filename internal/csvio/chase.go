package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/budgetwise-dev/budgetwise/internal/model"
)

// DefaultImportCategory labels rows whose source has no category column.
const DefaultImportCategory = "Imported"

// ChaseParser parses Chase checking CSV exports. Negative amounts become
// expenses and positive ones income.
type ChaseParser struct {
	Category string
}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

func (p *ChaseParser) Format() string { return "chase" }

func (p *ChaseParser) Parse(r io.Reader) ([]model.TransactionInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	category := p.Category
	if category == "" {
		category = DefaultImportCategory
	}

	var out []model.TransactionInput
	for i, rec := range records[1:] {
		in, err := parseChaseRow(rec, category)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func parseChaseRow(rec []string, category string) (model.TransactionInput, error) {
	date, err := time.Parse(chaseDateFormat, strings.TrimSpace(rec[chaseColDate]))
	if err != nil {
		return model.TransactionInput{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec[chaseColAmount]))
	if err != nil {
		return model.TransactionInput{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	account := model.AccountIncome
	if amount.IsNegative() {
		account = model.AccountExpense
	}

	return model.TransactionInput{
		Description: strings.TrimSpace(rec[chaseColDesc]),
		Amount:      model.NewAmount(amount.Abs()),
		Category:    category,
		Account:     account,
		Date:        model.NewDate(date.Year(), date.Month(), date.Day()),
	}, nil
}
