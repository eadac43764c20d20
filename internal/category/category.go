package category

import "strings"

// Category is one of the fixed expense categories that carry a monthly budget.
type Category struct {
	Name      string // display label, matched exactly against transaction categories
	BudgetKey string // key in monthly responses, budget payloads and AI suggestions
	Short     string // CLI flag name
}

var fixed = []Category{
	{Name: "Food & dining", BudgetKey: "budgetFood", Short: "food"},
	{Name: "Transportation", BudgetKey: "budgetTransportation", Short: "transportation"},
	{Name: "Entertainment", BudgetKey: "budgetEntertainment", Short: "entertainment"},
	{Name: "Shopping", BudgetKey: "budgetShopping", Short: "shopping"},
	{Name: "Utilities", BudgetKey: "budgetUtilities", Short: "utilities"},
}

// Catalogue provides lookup over the fixed budget categories.
type Catalogue struct {
	all   []Category
	byKey map[string]Category
}

// Default returns the catalogue of the five budgeted categories.
func Default() *Catalogue {
	return NewCatalogue(fixed)
}

// NewCatalogue creates a Catalogue from a slice of categories.
func NewCatalogue(cats []Category) *Catalogue {
	byKey := make(map[string]Category, len(cats))
	for _, c := range cats {
		byKey[c.BudgetKey] = c
	}
	return &Catalogue{all: cats, byKey: byKey}
}

// All returns the categories in display order.
func (c *Catalogue) All() []Category {
	return c.all
}

// Names returns the display labels in order.
func (c *Catalogue) Names() []string {
	names := make([]string, len(c.all))
	for i, cat := range c.all {
		names[i] = cat.Name
	}
	return names
}

// ByKey returns the category for a budget key such as "budgetFood".
func (c *Catalogue) ByKey(key string) (Category, bool) {
	cat, ok := c.byKey[key]
	return cat, ok
}

// ByName returns the category whose label equals name exactly. Transaction
// labels are free text, so near misses are not budgeted.
func (c *Catalogue) ByName(name string) (Category, bool) {
	for _, cat := range c.all {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// ByShort returns the category for a CLI flag name, case-insensitively.
func (c *Catalogue) ByShort(short string) (Category, bool) {
	short = strings.ToLower(strings.TrimSpace(short))
	for _, cat := range c.all {
		if cat.Short == short {
			return cat, true
		}
	}
	return Category{}, false
}

// IsBudgeted reports whether a transaction label belongs to the fixed set.
func (c *Catalogue) IsBudgeted(name string) bool {
	_, ok := c.ByName(name)
	return ok
}

// ActualKey returns the AI-context key for a category's actual spending,
// e.g. "budgetFood" -> "actualSpendingFood".
func ActualKey(cat Category) string {
	return "actualSpending" + strings.TrimPrefix(cat.BudgetKey, "budget")
}
