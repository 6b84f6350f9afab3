package core

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletType is the ownership model of a wallet.
type WalletType string

const (
	WalletSingle  WalletType = "single"
	WalletTwoUser WalletType = "twoUser"
)

func (t WalletType) IsValid() bool {
	return t == WalletSingle || t == WalletTwoUser
}

// OwnerCount is how many owners a wallet of this type has.
func (t WalletType) OwnerCount() int {
	switch t {
	case WalletSingle:
		return 1
	case WalletTwoUser:
		return 2
	}
	return 0
}

// DefaultBurdenRatio splits shared expenses evenly.
var DefaultBurdenRatio = decimal.RequireFromString("0.5")

var (
	ratioMin = decimal.Zero
	ratioMax = decimal.NewFromInt(1)
)

func validRatio(r decimal.Decimal) bool {
	return !r.LessThan(ratioMin) && !r.GreaterThan(ratioMax)
}

// Wallet is a budget container owned by one or two users.
type Wallet struct {
	id          uuid.UUID
	name        string
	currency    CurrencyCode
	walletType  WalletType
	burdenRatio decimal.Decimal
	isArchived  bool
	ownerIDs    []string
	createdAt   time.Time
	modifiedAt  time.Time
}

// WalletParams are the inputs to NewWallet. Zero ID generates a fresh one,
// nil BurdenRatio means DefaultBurdenRatio, and zero timestamps are taken
// from Clock (the system clock when nil).
type WalletParams struct {
	ID          uuid.UUID
	Name        string
	Currency    CurrencyCode
	Type        WalletType
	BurdenRatio *decimal.Decimal
	IsArchived  bool
	OwnerIDs    []string
	CreatedAt   time.Time
	ModifiedAt  time.Time
	Clock       Clock
}

func NewWallet(p WalletParams) (Wallet, error) {
	if p.Name == "" {
		return Wallet{}, violation("Wallet", "name", "cannot be empty")
	}
	if p.Currency.IsZero() {
		return Wallet{}, violation("Wallet", "currency", "is required")
	}
	if !p.Type.IsValid() {
		return Wallet{}, violation("Wallet", "type", "unknown wallet type "+string(p.Type))
	}
	ratio := DefaultBurdenRatio
	if p.BurdenRatio != nil {
		ratio = *p.BurdenRatio
	}
	if !validRatio(ratio) {
		return Wallet{}, violation("Wallet", "burdenRatio", "must be between 0 and 1")
	}
	if len(p.OwnerIDs) != p.Type.OwnerCount() {
		return Wallet{}, violation("Wallet", "ownerIDs", "owner count must match wallet type (single: 1, twoUser: 2)")
	}

	now := clockOrSystem(p.Clock).Now()
	w := Wallet{
		id:          p.ID,
		name:        p.Name,
		currency:    p.Currency,
		walletType:  p.Type,
		burdenRatio: ratio,
		isArchived:  p.IsArchived,
		ownerIDs:    slices.Clone(p.OwnerIDs),
		createdAt:   p.CreatedAt,
		modifiedAt:  p.ModifiedAt,
	}
	if w.id == uuid.Nil {
		w.id = uuid.New()
	}
	if w.createdAt.IsZero() {
		w.createdAt = now
	}
	if w.modifiedAt.IsZero() {
		w.modifiedAt = now
	}
	return w, nil
}

func (w Wallet) ID() uuid.UUID                { return w.id }
func (w Wallet) Name() string                 { return w.name }
func (w Wallet) Currency() CurrencyCode       { return w.currency }
func (w Wallet) Type() WalletType             { return w.walletType }
func (w Wallet) BurdenRatio() decimal.Decimal { return w.burdenRatio }
func (w Wallet) IsArchived() bool             { return w.isArchived }
func (w Wallet) OwnerIDs() []string           { return slices.Clone(w.ownerIDs) }
func (w Wallet) OwnerCount() int              { return len(w.ownerIDs) }
func (w Wallet) IsTwoUser() bool              { return w.walletType == WalletTwoUser }
func (w Wallet) CreatedAt() time.Time         { return w.createdAt }
func (w Wallet) ModifiedAt() time.Time        { return w.modifiedAt }

// params round-trips the wallet through NewWallet so every change is revalidated.
func (w Wallet) params() WalletParams {
	ratio := w.burdenRatio
	return WalletParams{
		ID:          w.id,
		Name:        w.name,
		Currency:    w.currency,
		Type:        w.walletType,
		BurdenRatio: &ratio,
		IsArchived:  w.isArchived,
		OwnerIDs:    w.ownerIDs,
		CreatedAt:   w.createdAt,
		ModifiedAt:  w.modifiedAt,
	}
}

func (w Wallet) Rename(name string, at time.Time) (Wallet, error) {
	p := w.params()
	p.Name, p.ModifiedAt = name, at
	return NewWallet(p)
}

func (w Wallet) WithBurdenRatio(ratio decimal.Decimal, at time.Time) (Wallet, error) {
	p := w.params()
	p.BurdenRatio, p.ModifiedAt = &ratio, at
	return NewWallet(p)
}

// Archive and Unarchive cannot fail on a valid wallet.
func (w Wallet) Archive(at time.Time) Wallet {
	w.isArchived, w.modifiedAt = true, at
	w.ownerIDs = slices.Clone(w.ownerIDs)
	return w
}

func (w Wallet) Unarchive(at time.Time) Wallet {
	w.isArchived, w.modifiedAt = false, at
	w.ownerIDs = slices.Clone(w.ownerIDs)
	return w
}

func (w Wallet) Equal(o Wallet) bool {
	return w.id == o.id &&
		w.name == o.name &&
		w.currency == o.currency &&
		w.walletType == o.walletType &&
		w.burdenRatio.Equal(o.burdenRatio) &&
		w.isArchived == o.isArchived &&
		slices.Equal(w.ownerIDs, o.ownerIDs) &&
		w.createdAt.Equal(o.createdAt) &&
		w.modifiedAt.Equal(o.modifiedAt)
}
