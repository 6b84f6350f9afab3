package codec

import (
	"encoding/json"
	"fmt"

	"inari/internal/core"
)

// Wire type names, also used as the entity name on the change feed.
const (
	TypeBudgetPeriod    = "BudgetPeriod"
	TypeCurrencyCode    = "CurrencyCode"
	TypeWallet          = "Wallet"
	TypeCategory        = "Category"
	TypeBudget          = "Budget"
	TypeTransactionKind = "TransactionKind"
	TypeTransaction     = "Transaction"
)

func EncodeCurrencyCode(c core.CurrencyCode) ([]byte, error) {
	return json.Marshal(c.Code())
}

func DecodeCurrencyCode(data []byte) (core.CurrencyCode, error) {
	var s *string
	if err := unmarshal(TypeCurrencyCode, data, &s); err != nil {
		return core.CurrencyCode{}, err
	}
	d := &decoder{typ: TypeCurrencyCode}
	c := d.currency("code", s)
	return c, d.err
}

func EncodeBudgetPeriod(p core.BudgetPeriod) ([]byte, error) {
	return json.Marshal(periodWire{Year: ptr(p.Year()), Month: ptr(p.Month())})
}

func DecodeBudgetPeriod(data []byte) (core.BudgetPeriod, error) {
	var w *periodWire
	if err := unmarshal(TypeBudgetPeriod, data, &w); err != nil {
		return core.BudgetPeriod{}, err
	}
	if w == nil {
		return core.BudgetPeriod{}, &DecodeError{Type: TypeBudgetPeriod, Field: "year", Err: ErrMissingField}
	}
	d := &decoder{typ: TypeBudgetPeriod}
	year := d.integer("year", w.Year)
	month := d.integer("month", w.Month)
	if d.err != nil {
		return core.BudgetPeriod{}, d.err
	}
	p, err := core.NewBudgetPeriod(year, month)
	return p, d.construct(err)
}

func EncodeWallet(w core.Wallet) ([]byte, error) {
	e := &encoder{typ: TypeWallet}
	wire := walletWire{
		ID:          ptr(w.ID().String()),
		Name:        ptr(w.Name()),
		Currency:    ptr(w.Currency().Code()),
		Type:        ptr(string(w.Type())),
		BurdenRatio: e.float("burdenRatio", w.BurdenRatio()),
		IsArchived:  ptr(w.IsArchived()),
		OwnerIDs:    ptr(w.OwnerIDs()),
		CreatedAt:   ptr(formatTime(w.CreatedAt())),
		ModifiedAt:  ptr(formatTime(w.ModifiedAt())),
	}
	if e.err != nil {
		return nil, e.err
	}
	return json.Marshal(wire)
}

func DecodeWallet(data []byte) (core.Wallet, error) {
	var w walletWire
	if err := unmarshal(TypeWallet, data, &w); err != nil {
		return core.Wallet{}, err
	}
	d := &decoder{typ: TypeWallet}
	p := core.WalletParams{
		ID:          d.entityID(w.ID),
		Name:        d.str("name", w.Name),
		Currency:    d.currency("currency", w.Currency),
		Type:        core.WalletType(d.str("type", w.Type)),
		BurdenRatio: ptr(d.decimal("burdenRatio", w.BurdenRatio)),
		IsArchived:  d.boolean("isArchived", w.IsArchived),
		CreatedAt:   d.time("createdAt", w.CreatedAt),
		ModifiedAt:  d.time("modifiedAt", w.ModifiedAt),
	}
	if w.OwnerIDs == nil {
		d.missing("ownerIDs")
	} else {
		p.OwnerIDs = *w.OwnerIDs
	}
	if d.err != nil {
		return core.Wallet{}, d.err
	}
	wallet, err := core.NewWallet(p)
	return wallet, d.construct(err)
}

func EncodeCategory(c core.Category) ([]byte, error) {
	return json.Marshal(categoryWire{
		ID:         ptr(c.ID().String()),
		WalletID:   ptr(c.WalletID().String()),
		Name:       ptr(c.Name()),
		IconName:   ptr(c.IconName()),
		Color:      ptr(string(c.Color())),
		IsShared:   ptr(c.IsShared()),
		SortOrder:  ptr(c.SortOrder()),
		ModifiedAt: ptr(formatTime(c.ModifiedAt())),
	})
}

func DecodeCategory(data []byte) (core.Category, error) {
	var w categoryWire
	if err := unmarshal(TypeCategory, data, &w); err != nil {
		return core.Category{}, err
	}
	d := &decoder{typ: TypeCategory}
	p := core.CategoryParams{
		ID:         d.entityID(w.ID),
		WalletID:   d.id("walletID", w.WalletID),
		Name:       d.str("name", w.Name),
		IconName:   d.str("iconName", w.IconName),
		Color:      core.CategoryColor(d.str("color", w.Color)),
		IsShared:   d.boolean("isShared", w.IsShared),
		SortOrder:  d.integer("sortOrder", w.SortOrder),
		ModifiedAt: d.time("modifiedAt", w.ModifiedAt),
	}
	if d.err != nil {
		return core.Category{}, d.err
	}
	c, err := core.NewCategory(p)
	return c, d.construct(err)
}

func EncodeBudget(b core.Budget) ([]byte, error) {
	e := &encoder{typ: TypeBudget}
	wire := budgetWire{
		ID:         ptr(b.ID().String()),
		CategoryID: ptr(b.CategoryID().String()),
		Limit:      e.float("limit", b.Limit()),
		Period:     &periodWire{Year: ptr(b.Period().Year()), Month: ptr(b.Period().Month())},
		ModifiedAt: ptr(formatTime(b.ModifiedAt())),
	}
	if e.err != nil {
		return nil, e.err
	}
	return json.Marshal(wire)
}

func DecodeBudget(data []byte) (core.Budget, error) {
	var w budgetWire
	if err := unmarshal(TypeBudget, data, &w); err != nil {
		return core.Budget{}, err
	}
	d := &decoder{typ: TypeBudget}
	p := core.BudgetParams{
		ID:         d.entityID(w.ID),
		CategoryID: d.id("categoryID", w.CategoryID),
		Limit:      d.decimal("limit", w.Limit),
		Period:     d.period("period", w.Period),
		ModifiedAt: d.time("modifiedAt", w.ModifiedAt),
	}
	if d.err != nil {
		return core.Budget{}, d.err
	}
	b, err := core.NewBudget(p)
	return b, d.construct(err)
}

func EncodeTransaction(t core.Transaction) ([]byte, error) {
	kind, err := EncodeTransactionKind(t.Kind())
	if err != nil {
		return nil, fmt.Errorf("encode Transaction %s: %w", t.ID(), err)
	}
	e := &encoder{typ: TypeTransaction}
	wire := transactionWire{
		ID:              ptr(t.ID().String()),
		WalletID:        ptr(t.WalletID().String()),
		Amount:          e.float("amount", t.Amount()),
		Kind:            kind,
		CategoryID:      ptr(t.CategoryID().String()),
		Date:            ptr(formatTime(t.Date())),
		Description:     ptr(t.Description()),
		IsSharedExpense: ptr(t.IsSharedExpense()),
		ModifiedAt:      ptr(formatTime(t.ModifiedAt())),
	}
	if ratio, ok := t.CustomBurdenRatio(); ok {
		wire.CustomBurdenRatio = e.float("customBurdenRatio", ratio)
	}
	if e.err != nil {
		return nil, e.err
	}
	return json.Marshal(wire)
}

func DecodeTransaction(data []byte) (core.Transaction, error) {
	var w transactionWire
	if err := unmarshal(TypeTransaction, data, &w); err != nil {
		return core.Transaction{}, err
	}
	d := &decoder{typ: TypeTransaction}
	p := core.TransactionParams{
		ID:                d.entityID(w.ID),
		WalletID:          d.id("walletID", w.WalletID),
		Amount:            d.decimal("amount", w.Amount),
		CategoryID:        d.id("categoryID", w.CategoryID),
		Date:              d.time("date", w.Date),
		Description:       d.str("description", w.Description),
		IsSharedExpense:   d.boolean("isSharedExpense", w.IsSharedExpense),
		CustomBurdenRatio: d.optDecimal(w.CustomBurdenRatio),
		ModifiedAt:        d.time("modifiedAt", w.ModifiedAt),
	}
	if isAbsent(w.Kind) {
		d.missing("kind")
	}
	if d.err != nil {
		return core.Transaction{}, d.err
	}
	kind, err := DecodeTransactionKind(w.Kind)
	if err != nil {
		return core.Transaction{}, nest(TypeTransaction, "kind", err)
	}
	p.Kind = kind
	t, err := core.NewTransaction(p)
	return t, d.construct(err)
}

// nest re-roots a DecodeError from an embedded value under field of typ.
func nest(typ, field string, err error) error {
	de, ok := err.(*DecodeError)
	if !ok {
		return &DecodeError{Type: typ, Field: field, Err: err}
	}
	inner := field
	if de.Field != "" {
		inner = field + "." + de.Field
	}
	return &DecodeError{Type: typ, Field: inner, Value: de.Value, Err: de.Err}
}
