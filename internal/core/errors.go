// Package core is the inari budgeting model: wallets, categories, monthly
// budgets and transactions together with the value types they are built from.
// Every type is constructed through a validating constructor and is
// immutable afterwards.
package core

import (
	"errors"
	"fmt"
)

// ErrContractViolation matches every *ContractViolation through errors.Is.
var ErrContractViolation = errors.New("contract violation")

// ContractViolation reports a constructor input that breaks an invariant.
// No value is produced when one is returned.
type ContractViolation struct {
	Entity string // e.g. "Wallet", "SpreadOutProperties"
	Field  string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrContractViolation) succeed for any violation.
func (e *ContractViolation) Is(target error) bool {
	return target == ErrContractViolation
}

func violation(entity, field, reason string) *ContractViolation {
	return &ContractViolation{Entity: entity, Field: field, Reason: reason}
}
