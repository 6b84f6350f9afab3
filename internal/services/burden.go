package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"inari/internal/core"
)

// Share is how one transaction's amount splits between a wallet's owners.
// Ratio is the first owner's share; Owner and Partner always sum to the
// transaction amount.
type Share struct {
	Ratio   decimal.Decimal
	Owner   decimal.Decimal
	Partner decimal.Decimal
}

// BurdenShare resolves the ratio for tx: its custom ratio when set, otherwise
// the wallet's. The owner's part is rounded to the wallet currency's minor
// units and the partner takes the remainder. Transactions that are not shared, or live in single-owner
// wallets, fall entirely on the first owner.
func BurdenShare(tx core.Transaction, w core.Wallet) (Share, error) {
	if tx.WalletID() != w.ID() {
		return Share{}, fmt.Errorf("transaction %s belongs to wallet %s, not %s", tx.ID(), tx.WalletID(), w.ID())
	}

	amount := tx.Amount()
	if !tx.IsSharedExpense() || !w.IsTwoUser() {
		return Share{Ratio: decimal.NewFromInt(1), Owner: amount, Partner: decimal.Zero}, nil
	}

	ratio, ok := tx.EffectiveBurdenRatio()
	if !ok {
		ratio = w.BurdenRatio()
	}
	owner := amount.Mul(ratio).Round(w.Currency().MinorUnits())
	return Share{Ratio: ratio, Owner: owner, Partner: amount.Sub(owner)}, nil
}
