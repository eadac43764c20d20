// Package forms holds editable drafts for every data-entry screen and turns
// submissions into API calls.
//
// A failed submission only changes the form's own error state. Lists are
// refreshed through the Refetch hook, which runs after a successful call.
package forms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/budgetwise-dev/budgetwise/internal/api"
)

// ErrInvalid is returned when local checks reject a submission. No API call
// was made.
var ErrInvalid = errors.New("form has errors")

// Refetch reloads the list a form belongs to.
type Refetch func(ctx context.Context) error

// ErrorPolicy maps a failed API call to the error returned from Submit, e.g.
// clearing the session on an authorization failure.
type ErrorPolicy func(ctx context.Context, err error) error

// Field describes one input.
type Field struct {
	Name     string
	Label    string
	Required bool
	Numeric  bool // non-negative decimal
	Secret   bool
}

// Values is a snapshot of the draft passed to submit functions.
type Values map[string]string

// Decimal returns the field as a decimal. Empty text is zero. Callers use it
// on fields that already passed the numeric check.
func (v Values) Decimal(name string) decimal.Decimal {
	s := strings.TrimSpace(v[name])
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Controller is the shared draft/validate/submit machinery.
type Controller struct {
	fields  []Field
	initial Values
	draft   Values
	errs    map[string]string
	general string

	validate       func(Values) (fields map[string]string, general string)
	submit         func(ctx context.Context, v Values) error
	refetch        Refetch
	policy         ErrorPolicy
	resetOnSuccess bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRefetch sets the hook run after a successful submission.
func WithRefetch(r Refetch) Option {
	return func(c *Controller) { c.refetch = r }
}

// WithErrorPolicy sets how API failures are mapped before being returned.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(c *Controller) { c.policy = p }
}

func newController(fields []Field, initial Values, opts ...Option) *Controller {
	c := &Controller{
		fields:  fields,
		initial: copyValues(initial),
		draft:   copyValues(initial),
		errs:    map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fields lists the inputs in display order.
func (c *Controller) Fields() []Field { return c.fields }

// Value returns the current draft text of a field.
func (c *Controller) Value(name string) string { return c.draft[name] }

// FieldChange sets one field and clears any error shown for it.
func (c *Controller) FieldChange(name, value string) error {
	if !c.hasField(name) {
		return fmt.Errorf("unknown field %q", name)
	}
	c.draft[name] = value
	delete(c.errs, name)
	return nil
}

// FieldError returns the message shown next to a field.
func (c *Controller) FieldError(name string) string { return c.errs[name] }

// FieldErrors returns a copy of all per-field messages.
func (c *Controller) FieldErrors() map[string]string {
	out := make(map[string]string, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// General returns the banner message, if any.
func (c *Controller) General() string { return c.general }

// Submit validates the draft and, if it passes, performs the API call. On
// success the draft is reset for create flows and Refetch runs.
func (c *Controller) Submit(ctx context.Context) error {
	c.errs = map[string]string{}
	c.general = ""

	c.checkFields()
	if c.validate != nil && len(c.errs) == 0 {
		fields, general := c.validate(copyValues(c.draft))
		for k, v := range fields {
			c.errs[k] = v
		}
		c.general = general
	}
	if len(c.errs) > 0 || c.general != "" {
		if c.general != "" {
			return fmt.Errorf("%w: %s", ErrInvalid, c.general)
		}
		return ErrInvalid
	}

	if err := c.submit(ctx, copyValues(c.draft)); err != nil {
		c.absorb(err)
		if c.policy != nil {
			return c.policy(ctx, err)
		}
		return err
	}

	if c.resetOnSuccess {
		c.draft = copyValues(c.initial)
	}
	if c.refetch != nil {
		if err := c.refetch(ctx); err != nil {
			return fmt.Errorf("refreshing after save: %w", err)
		}
	}
	return nil
}

func (c *Controller) checkFields() {
	for _, f := range c.fields {
		value := strings.TrimSpace(c.draft[f.Name])
		if value == "" {
			if f.Required {
				c.errs[f.Name] = f.Label + " is required"
			}
			continue
		}
		if f.Numeric {
			d, err := decimal.NewFromString(value)
			switch {
			case err != nil:
				c.errs[f.Name] = f.Label + " must be a number"
			case d.IsNegative():
				c.errs[f.Name] = f.Label + " must not be negative"
			}
		}
	}
}

// absorb splits a server failure into banner and field messages. Field keys
// that do not belong to this form are folded into the banner.
func (c *Controller) absorb(err error) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		c.general = api.Message(err)
		return
	}

	var stray []string
	for k, v := range apiErr.Fields {
		if c.hasField(k) {
			c.errs[k] = v
		} else {
			stray = append(stray, v)
		}
	}
	sort.Strings(stray)

	general := apiErr.General
	if len(stray) > 0 {
		if general != "" {
			stray = append([]string{general}, stray...)
		}
		general = strings.Join(stray, "; ")
	}
	if general == "" && len(c.errs) == 0 {
		general = apiErr.Error()
	}
	c.general = general
}

func (c *Controller) hasField(name string) bool {
	for _, f := range c.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func copyValues(v Values) Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}
