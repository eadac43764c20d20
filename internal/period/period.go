package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a calendar month selected for viewing, e.g. 2025-01.
type Period struct {
	Year  int
	Month int // 1-12
}

// New returns the Period for year and month.
func New(year, month int) Period {
	return Period{Year: year, Month: month}
}

// Of returns the Period containing t, using t's own calendar fields.
func Of(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Current returns the Period containing now.
func Current(now time.Time) Period {
	return Of(now)
}

// String returns the period formatted as "2025-01".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Parse parses "2025-01" into a Period.
func Parse(s string) (Period, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("invalid period format: %q (want YYYY-MM)", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return Period{}, fmt.Errorf("invalid year in period %q", s)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("invalid month in period %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("month out of range in period %q", s)
	}

	return Period{Year: year, Month: month}, nil
}

// Contains reports whether t falls in the period. Only the calendar fields of
// t are compared; no timezone conversion is applied.
func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// Prev returns the preceding month.
func (p Period) Prev() Period {
	if p.Month == 1 {
		return Period{Year: p.Year - 1, Month: 12}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// After reports whether p is later than q.
func (p Period) After(q Period) bool {
	if p.Year != q.Year {
		return p.Year > q.Year
	}
	return p.Month > q.Month
}

// YearString and MonthString are the query-string forms sent to the API.
func (p Period) YearString() string  { return strconv.Itoa(p.Year) }
func (p Period) MonthString() string { return strconv.Itoa(p.Month) }
