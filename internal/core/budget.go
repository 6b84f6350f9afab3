package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a spending limit for one category in one month. At most one
// budget should exist per (category, period); the store enforces that.
type Budget struct {
	id         uuid.UUID
	categoryID uuid.UUID
	limit      decimal.Decimal
	period     BudgetPeriod
	modifiedAt time.Time
}

type BudgetParams struct {
	ID         uuid.UUID
	CategoryID uuid.UUID
	Limit      decimal.Decimal
	Period     BudgetPeriod
	ModifiedAt time.Time
	Clock      Clock
}

func NewBudget(p BudgetParams) (Budget, error) {
	if p.Limit.IsNegative() {
		return Budget{}, violation("Budget", "limit", "must be non-negative")
	}
	if p.Period.month < 1 || p.Period.month > 12 {
		return Budget{}, violation("Budget", "period", "is required")
	}

	b := Budget{
		id:         p.ID,
		categoryID: p.CategoryID,
		limit:      p.Limit,
		period:     p.Period,
		modifiedAt: p.ModifiedAt,
	}
	if b.id == uuid.Nil {
		b.id = uuid.New()
	}
	if b.modifiedAt.IsZero() {
		b.modifiedAt = clockOrSystem(p.Clock).Now()
	}
	return b, nil
}

func (b Budget) ID() uuid.UUID          { return b.id }
func (b Budget) CategoryID() uuid.UUID  { return b.categoryID }
func (b Budget) Limit() decimal.Decimal { return b.limit }
func (b Budget) Period() BudgetPeriod   { return b.period }
func (b Budget) ModifiedAt() time.Time  { return b.modifiedAt }

func (b Budget) WithLimit(limit decimal.Decimal, at time.Time) (Budget, error) {
	return NewBudget(BudgetParams{
		ID:         b.id,
		CategoryID: b.categoryID,
		Limit:      limit,
		Period:     b.period,
		ModifiedAt: at,
	})
}

// Remaining is limit - spent; negative when over budget.
func (b Budget) Remaining(spent decimal.Decimal) decimal.Decimal {
	return b.limit.Sub(spent)
}

func (b Budget) Equal(o Budget) bool {
	return b.id == o.id &&
		b.categoryID == o.categoryID &&
		b.limit.Equal(o.limit) &&
		b.period == o.period &&
		b.modifiedAt.Equal(o.modifiedAt)
}
