package core

import (
	"fmt"
	"time"
)

// BudgetPeriod is a calendar month key.
type BudgetPeriod struct {
	year  int
	month int
}

func NewBudgetPeriod(year, month int) (BudgetPeriod, error) {
	if month < 1 || month > 12 {
		return BudgetPeriod{}, violation("BudgetPeriod", "month", "must be between 1 and 12")
	}
	return BudgetPeriod{year: year, month: month}, nil
}

// PeriodOf returns the period containing t, in t's location.
func PeriodOf(t time.Time) BudgetPeriod {
	return BudgetPeriod{year: t.Year(), month: int(t.Month())}
}

// CurrentPeriod returns the period containing clock.Now().
func CurrentPeriod(clock Clock) BudgetPeriod {
	return PeriodOf(clockOrSystem(clock).Now())
}

// ParseBudgetPeriod parses the "YYYY-MM" form produced by String.
func ParseBudgetPeriod(s string) (BudgetPeriod, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return BudgetPeriod{}, fmt.Errorf("parse budget period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

func (p BudgetPeriod) Year() int  { return p.year }
func (p BudgetPeriod) Month() int { return p.month }

// Compare orders by year, then month.
func (p BudgetPeriod) Compare(o BudgetPeriod) int {
	switch {
	case p.year < o.year:
		return -1
	case p.year > o.year:
		return 1
	case p.month < o.month:
		return -1
	case p.month > o.month:
		return 1
	}
	return 0
}

func (p BudgetPeriod) Before(o BudgetPeriod) bool { return p.Compare(o) < 0 }
func (p BudgetPeriod) After(o BudgetPeriod) bool  { return p.Compare(o) > 0 }

func (p BudgetPeriod) Next() BudgetPeriod {
	if p.month == 12 {
		return BudgetPeriod{year: p.year + 1, month: 1}
	}
	return BudgetPeriod{year: p.year, month: p.month + 1}
}

func (p BudgetPeriod) Previous() BudgetPeriod {
	if p.month == 1 {
		return BudgetPeriod{year: p.year - 1, month: 12}
	}
	return BudgetPeriod{year: p.year, month: p.month - 1}
}

// FirstDay is midnight of the first day of the period in loc (UTC if nil).
func (p BudgetPeriod) FirstDay(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(p.year, time.Month(p.month), 1, 0, 0, 0, 0, loc)
}

// Contains reports whether t falls inside the period, judged in t's location.
func (p BudgetPeriod) Contains(t time.Time) bool {
	return PeriodOf(t) == p
}

func (p BudgetPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.year, p.month)
}
