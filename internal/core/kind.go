package core

// Wire discriminants for TransactionKind.
const (
	KindOneTime     = "oneTime"
	KindRecurring   = "recurring"
	KindSpreadOut   = "spreadOut"
	KindExpectation = "expectation"
)

// TransactionKind is the closed set {OneTime, RecurringProperties,
// SpreadOutProperties, ExpectationProperties}. Switch on the concrete type to
// reach the payload; the unexported marker keeps other packages from adding
// variants.
type TransactionKind interface {
	// TypeName is the stable lowercase discriminant used on the wire and in
	// store queries.
	TypeName() string
	isTransactionKind()
}

// OneTime is a single cash movement with no payload.
type OneTime struct{}

func (OneTime) TypeName() string { return KindOneTime }
func (OneTime) isTransactionKind() {}

func (RecurringProperties) TypeName() string { return KindRecurring }
func (RecurringProperties) isTransactionKind() {}

func (SpreadOutProperties) TypeName() string { return KindSpreadOut }
func (SpreadOutProperties) isTransactionKind() {}

func (ExpectationProperties) TypeName() string { return KindExpectation }
func (ExpectationProperties) isTransactionKind() {}

func IsOneTime(k TransactionKind) bool {
	_, ok := k.(OneTime)
	return ok
}

func IsRecurring(k TransactionKind) bool {
	_, ok := k.(RecurringProperties)
	return ok
}

func IsSpreadOut(k TransactionKind) bool {
	_, ok := k.(SpreadOutProperties)
	return ok
}

func IsExpectation(k TransactionKind) bool {
	_, ok := k.(ExpectationProperties)
	return ok
}

// KindsEqual compares two kinds by variant and payload value.
func KindsEqual(a, b TransactionKind) bool {
	switch x := a.(type) {
	case OneTime:
		_, ok := b.(OneTime)
		return ok
	case RecurringProperties:
		y, ok := b.(RecurringProperties)
		return ok && x.Equal(y)
	case SpreadOutProperties:
		y, ok := b.(SpreadOutProperties)
		return ok && x.Equal(y)
	case ExpectationProperties:
		y, ok := b.(ExpectationProperties)
		return ok && x.Equal(y)
	case nil:
		return b == nil
	}
	return false
}
