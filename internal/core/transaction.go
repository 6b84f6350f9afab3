package core

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one cash movement in a wallet. Negative amounts are allowed
// (refunds, income); zero is not.
type Transaction struct {
	id                uuid.UUID
	walletID          uuid.UUID
	amount            decimal.Decimal
	kind              TransactionKind
	categoryID        uuid.UUID
	date              time.Time
	description       string
	isSharedExpense   bool
	customBurdenRatio decimal.Decimal
	hasCustomRatio    bool
	modifiedAt        time.Time
}

// TransactionParams are the inputs to NewTransaction. Zero ID generates a
// fresh one; zero Date and ModifiedAt are taken from Clock.
type TransactionParams struct {
	ID                uuid.UUID
	WalletID          uuid.UUID
	Amount            decimal.Decimal
	Kind              TransactionKind
	CategoryID        uuid.UUID
	Date              time.Time
	Description       string
	IsSharedExpense   bool
	CustomBurdenRatio *decimal.Decimal
	ModifiedAt        time.Time
	Clock             Clock
}

func NewTransaction(p TransactionParams) (Transaction, error) {
	if p.Amount.IsZero() {
		return Transaction{}, violation("Transaction", "amount", "cannot be zero")
	}
	if p.Kind == nil {
		return Transaction{}, violation("Transaction", "kind", "is required")
	}
	if p.CustomBurdenRatio != nil && !validRatio(*p.CustomBurdenRatio) {
		return Transaction{}, violation("Transaction", "customBurdenRatio", "must be between 0 and 1")
	}

	now := clockOrSystem(p.Clock).Now()
	t := Transaction{
		id:              p.ID,
		walletID:        p.WalletID,
		amount:          p.Amount,
		kind:            p.Kind,
		categoryID:      p.CategoryID,
		date:            p.Date,
		description:     p.Description,
		isSharedExpense: p.IsSharedExpense,
		modifiedAt:      p.ModifiedAt,
	}
	if p.CustomBurdenRatio != nil {
		t.customBurdenRatio, t.hasCustomRatio = *p.CustomBurdenRatio, true
	}
	if t.id == uuid.Nil {
		t.id = uuid.New()
	}
	if t.date.IsZero() {
		t.date = now
	}
	if t.modifiedAt.IsZero() {
		t.modifiedAt = now
	}
	return t, nil
}

func (t Transaction) ID() uuid.UUID           { return t.id }
func (t Transaction) WalletID() uuid.UUID     { return t.walletID }
func (t Transaction) Amount() decimal.Decimal { return t.amount }
func (t Transaction) Kind() TransactionKind   { return t.kind }
func (t Transaction) CategoryID() uuid.UUID   { return t.categoryID }
func (t Transaction) Date() time.Time         { return t.date }
func (t Transaction) Description() string     { return t.description }
func (t Transaction) IsSharedExpense() bool   { return t.isSharedExpense }
func (t Transaction) ModifiedAt() time.Time   { return t.modifiedAt }

func (t Transaction) IsOneTime() bool     { return IsOneTime(t.kind) }
func (t Transaction) IsRecurring() bool   { return IsRecurring(t.kind) }
func (t Transaction) IsSpreadOut() bool   { return IsSpreadOut(t.kind) }
func (t Transaction) IsExpectation() bool { return IsExpectation(t.kind) }

// CustomBurdenRatio is the per-transaction split override, if any.
func (t Transaction) CustomBurdenRatio() (decimal.Decimal, bool) {
	return t.customBurdenRatio, t.hasCustomRatio
}

// EffectiveBurdenRatio returns the custom ratio when set. It deliberately
// does not fall back to the wallet's ratio; callers holding the wallet decide.
func (t Transaction) EffectiveBurdenRatio() (decimal.Decimal, bool) {
	return t.CustomBurdenRatio()
}

func (t Transaction) params() TransactionParams {
	p := TransactionParams{
		ID:              t.id,
		WalletID:        t.walletID,
		Amount:          t.amount,
		Kind:            t.kind,
		CategoryID:      t.categoryID,
		Date:            t.date,
		Description:     t.description,
		IsSharedExpense: t.isSharedExpense,
		ModifiedAt:      t.modifiedAt,
	}
	if t.hasCustomRatio {
		r := t.customBurdenRatio
		p.CustomBurdenRatio = &r
	}
	return p
}

func (t Transaction) WithAmount(amount decimal.Decimal, at time.Time) (Transaction, error) {
	p := t.params()
	p.Amount, p.ModifiedAt = amount, at
	return NewTransaction(p)
}

func (t Transaction) WithKind(kind TransactionKind, at time.Time) (Transaction, error) {
	p := t.params()
	p.Kind, p.ModifiedAt = kind, at
	return NewTransaction(p)
}

func (t Transaction) WithDescription(description string, at time.Time) Transaction {
	t.description, t.modifiedAt = description, at
	return t
}

// WithSharing sets the shared flag and the optional custom split together.
func (t Transaction) WithSharing(shared bool, customRatio *decimal.Decimal, at time.Time) (Transaction, error) {
	p := t.params()
	p.IsSharedExpense, p.CustomBurdenRatio, p.ModifiedAt = shared, customRatio, at
	return NewTransaction(p)
}

func (t Transaction) Equal(o Transaction) bool {
	if t.hasCustomRatio != o.hasCustomRatio ||
		(t.hasCustomRatio && !t.customBurdenRatio.Equal(o.customBurdenRatio)) {
		return false
	}
	return t.id == o.id &&
		t.walletID == o.walletID &&
		t.amount.Equal(o.amount) &&
		KindsEqual(t.kind, o.kind) &&
		t.categoryID == o.categoryID &&
		t.date.Equal(o.date) &&
		t.description == o.description &&
		t.isSharedExpense == o.isSharedExpense &&
		t.modifiedAt.Equal(o.modifiedAt)
}
