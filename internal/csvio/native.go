// Package csvio reads and writes transaction CSV files and imports bank
// exports through the transaction form.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/budgetwise-dev/budgetwise/internal/model"
)

// Header is the header row of the native transaction CSV.
const Header = "id,date,account,category,description,amount"

const (
	numFields = 6
	colID     = 0
	colDate   = 1
	colAcct   = 2
	colCat    = 3
	colDesc   = 4
	colAmount = 5
)

// WriteTransactions writes txns with a header row.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a transaction to a CSV row. Numeric amounts get
// two decimals; anything else is written as received.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	if txn.ID != 0 {
		row[colID] = strconv.FormatInt(txn.ID, 10)
	}
	row[colDate] = txn.Date.String()
	row[colAcct] = string(txn.Account)
	row[colCat] = txn.Category
	row[colDesc] = txn.Description
	if d, ok := txn.Amount.Decimal(); ok {
		row[colAmount] = d.StringFixed(2)
	} else {
		row[colAmount] = txn.Amount.Raw()
	}
	return row
}

// UnmarshalTransaction converts a CSV row to a transaction. The id column may
// be empty.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var id int64
	if s := strings.TrimSpace(record[colID]); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing id %q: %w", s, err)
		}
		id = n
	}

	date, err := model.ParseDate(record[colDate])
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := model.ParseAmount(record[colAmount])
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		ID:          id,
		Date:        date,
		Account:     model.AccountKind(record[colAcct]).Normalize(),
		Category:    strings.TrimSpace(record[colCat]),
		Description: strings.TrimSpace(record[colDesc]),
		Amount:      amount,
	}, nil
}

// NativeParser reads files produced by WriteTransactions.
type NativeParser struct{}

func (p *NativeParser) Format() string { return "native" }

func (p *NativeParser) Parse(r io.Reader) ([]model.TransactionInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transaction CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var out []model.TransactionInput
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, txn.Input())
	}
	return out, nil
}
