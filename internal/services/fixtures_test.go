package services

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"inari/internal/core"
	"inari/internal/log"
	"inari/internal/storage"
)

var base = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "inari.db"), storage.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Format: log.FormatJSON, Output: buf, Level: slog.LevelDebug})
}

func newWallet(t *testing.T, typ core.WalletType, at time.Time) core.Wallet {
	t.Helper()
	owners := []string{"alice"}
	if typ == core.WalletTwoUser {
		owners = append(owners, "bob")
	}
	ratio := decimal.RequireFromString("0.6")
	w, err := core.NewWallet(core.WalletParams{
		Name:        "Household",
		Currency:    core.EUR,
		Type:        typ,
		BurdenRatio: &ratio,
		OwnerIDs:    owners,
		CreatedAt:   base,
		ModifiedAt:  at,
	})
	require.NoError(t, err)
	return w
}

func newCategory(t *testing.T, walletID uuid.UUID, name string, order int) core.Category {
	t.Helper()
	c, err := core.NewCategory(core.CategoryParams{
		WalletID:   walletID,
		Name:       name,
		IconName:   core.DefaultIconName,
		Color:      core.DefaultCategoryColor,
		SortOrder:  order,
		ModifiedAt: base,
	})
	require.NoError(t, err)
	return c
}

type txOption func(*core.TransactionParams)

func shared(ratio *decimal.Decimal) txOption {
	return func(p *core.TransactionParams) {
		p.IsSharedExpense = true
		p.CustomBurdenRatio = ratio
	}
}

func newTransaction(t *testing.T, walletID, categoryID uuid.UUID, amount string, kind core.TransactionKind, on time.Time, opts ...txOption) core.Transaction {
	t.Helper()
	p := core.TransactionParams{
		WalletID:   walletID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Kind:       kind,
		Date:       on,
		ModifiedAt: base,
	}
	for _, opt := range opts {
		opt(&p)
	}
	tx, err := core.NewTransaction(p)
	require.NoError(t, err)
	return tx
}
