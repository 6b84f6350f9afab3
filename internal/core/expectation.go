package core

import "github.com/shopspring/decimal"

// ExpectationProperties is an estimate that is later reconciled against the
// amount actually paid.
type ExpectationProperties struct {
	expectedAmount decimal.Decimal
	actualAmount   decimal.Decimal
	reconciled     bool
}

// NewExpectationProperties builds an expectation; actual may be nil.
func NewExpectationProperties(expected decimal.Decimal, actual *decimal.Decimal) ExpectationProperties {
	p := ExpectationProperties{expectedAmount: expected}
	if actual != nil {
		p.actualAmount, p.reconciled = *actual, true
	}
	return p
}

func (p ExpectationProperties) ExpectedAmount() decimal.Decimal { return p.expectedAmount }

func (p ExpectationProperties) ActualAmount() (decimal.Decimal, bool) {
	return p.actualAmount, p.reconciled
}

func (p ExpectationProperties) IsReconciled() bool { return p.reconciled }

// Variance is actual - expected; ok is false until reconciled.
func (p ExpectationProperties) Variance() (v decimal.Decimal, ok bool) {
	if !p.reconciled {
		return decimal.Decimal{}, false
	}
	return p.actualAmount.Sub(p.expectedAmount), true
}

// Reconcile returns a copy carrying the actual amount.
func (p ExpectationProperties) Reconcile(actual decimal.Decimal) ExpectationProperties {
	p.actualAmount, p.reconciled = actual, true
	return p
}

// Settled is the actual amount once known, otherwise the expected one.
func (p ExpectationProperties) Settled() decimal.Decimal {
	if p.reconciled {
		return p.actualAmount
	}
	return p.expectedAmount
}

func (p ExpectationProperties) Equal(o ExpectationProperties) bool {
	if p.reconciled != o.reconciled || !p.expectedAmount.Equal(o.expectedAmount) {
		return false
	}
	return !p.reconciled || p.actualAmount.Equal(o.actualAmount)
}
