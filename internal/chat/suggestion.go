package chat

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/budgetwise-dev/budgetwise/internal/category"
	"github.com/budgetwise-dev/budgetwise/internal/model"
)

// ParseSuggestion looks for a JSON object in advice whose keys include at
// least one budget key with a non-negative numeric value. Unknown keys are
// dropped. The first such object wins.
func ParseSuggestion(advice string, cats *category.Catalogue) (model.BudgetLimits, bool) {
	for i := 0; i < len(advice); i++ {
		if advice[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(advice[i:]))
		dec.UseNumber()
		var obj map[string]any
		if err := dec.Decode(&obj); err != nil {
			continue
		}
		if limits, ok := limitsFrom(obj, cats); ok {
			return limits, true
		}
	}
	return nil, false
}

func limitsFrom(obj map[string]any, cats *category.Catalogue) (model.BudgetLimits, bool) {
	limits := model.BudgetLimits{}
	for key, raw := range obj {
		if _, ok := cats.ByKey(key); !ok {
			continue
		}
		var text string
		switch v := raw.(type) {
		case json.Number:
			text = v.String()
		case string:
			text = v
		default:
			return nil, false
		}
		d, err := decimal.NewFromString(strings.TrimSpace(text))
		if err != nil || d.IsNegative() {
			return nil, false
		}
		limits[key] = d
	}
	return limits, len(limits) > 0
}
