package csvio

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/budgetwise-dev/budgetwise/internal/api"
	"github.com/budgetwise-dev/budgetwise/internal/forms"
	"github.com/budgetwise-dev/budgetwise/internal/model"
)

// Parser converts a CSV file into transaction inputs.
type Parser interface {
	Parse(r io.Reader) ([]model.TransactionInput, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&NativeParser{})
	r.Register(&ChaseParser{})
	return r
}

// RowResult is the outcome of importing one row.
type RowResult struct {
	Row   int // 1-based data row
	Input model.TransactionInput
	Err   error
	// General and Fields hold the form's messages when the row was rejected.
	General string
	Fields  map[string]string
}

// Import submits each input through a fresh transaction form. It keeps going
// after a rejected row and stops when ctx is done or the session is rejected.
func Import(ctx context.Context, client forms.TransactionAPI, inputs []model.TransactionInput) ([]RowResult, error) {
	results := make([]RowResult, 0, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := RowResult{Row: i + 1, Input: in}

		f := forms.NewTransaction(client, nil)
		for name, value := range map[string]string{
			"description": in.Description,
			"amount":      in.Amount.Raw(),
			"category":    in.Category,
			"account":     string(in.Account),
			"date":        in.Date.String(),
		} {
			if err := f.FieldChange(name, value); err != nil {
				return results, fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		if err := f.Submit(ctx); err != nil {
			res.Err = err
			res.General = f.General()
			res.Fields = f.FieldErrors()
			if api.KindOf(err) == api.KindUnauthenticated {
				return append(results, res), err
			}
		}
		results = append(results, res)
	}
	return results, nil
}
