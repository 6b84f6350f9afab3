package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inari/internal/core"
)

var base = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "inari.db")
	repo, err := NewSQLiteRepository(path, DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func wallet(t *testing.T, id uuid.UUID, name string, at time.Time) core.Wallet {
	t.Helper()
	w, err := core.NewWallet(core.WalletParams{
		ID:         id,
		Name:       name,
		Currency:   core.USD,
		Type:       core.WalletSingle,
		OwnerIDs:   []string{"alice"},
		CreatedAt:  base,
		ModifiedAt: at,
	})
	require.NoError(t, err)
	return w
}

func transaction(t *testing.T, walletID uuid.UUID, kind core.TransactionKind, date time.Time) core.Transaction {
	t.Helper()
	tx, err := core.NewTransaction(core.TransactionParams{
		WalletID:   walletID,
		CategoryID: uuid.New(),
		Amount:     decimal.NewFromInt(25),
		Kind:       kind,
		Date:       date,
		ModifiedAt: base,
	})
	require.NoError(t, err)
	return tx
}

func TestMigrationsApplied(t *testing.T) {
	_, path := newRepo(t)
	version, dirty, err := SchemaVersion(path)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	require.NoError(t, RunMigrations(path))
}

func TestWalletLastWriteWins(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	id := uuid.New()

	applied, err := repo.SaveWallet(ctx, wallet(t, id, "v2", base.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.SaveWallet(ctx, wallet(t, id, "v1", base.Add(time.Hour)))
	require.NoError(t, err)
	assert.False(t, applied)

	applied, err = repo.SaveWallet(ctx, wallet(t, id, "v2 again", base.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.False(t, applied, "equal modifiedAt is not newer")

	got, err := repo.GetWallet(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Name())

	applied, err = repo.SaveWallet(ctx, wallet(t, id, "v3", base.Add(3*time.Hour)))
	require.NoError(t, err)
	assert.True(t, applied)

	// bypass the cache to check the stored document
	repo.wallets.Delete(id)
	got, err = repo.GetWallet(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v3", got.Name())
}

func TestListWalletsHidesArchived(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	active := wallet(t, uuid.New(), "Active", base)
	archived := wallet(t, uuid.New(), "Old", base).Archive(base.Add(time.Minute))
	for _, w := range []core.Wallet{active, archived} {
		_, err := repo.SaveWallet(ctx, w)
		require.NoError(t, err)
	}

	list, err := repo.ListWallets(ctx, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, active.Equal(list[0]))

	list, err = repo.ListWallets(ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestGetMissing(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.GetWallet(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetCategory(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetBudget(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetTransaction(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoriesInSortOrder(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	walletID := uuid.New()

	for i, name := range []string{"Rent", "Food", "Fun"} {
		c, err := core.NewCategory(core.CategoryParams{
			WalletID:   walletID,
			Name:       name,
			IconName:   core.DefaultIconName,
			Color:      core.DefaultCategoryColor,
			SortOrder:  3 - i,
			ModifiedAt: base,
		})
		require.NoError(t, err)
		_, err = repo.SaveCategory(ctx, c)
		require.NoError(t, err)
	}

	list, err := repo.ListCategories(ctx, walletID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Fun", list[0].Name())
	assert.Equal(t, "Rent", list[2].Name())

	got, err := repo.GetCategory(ctx, list[1].ID())
	require.NoError(t, err)
	assert.True(t, list[1].Equal(got))
}

func TestBudgetUniquePerCategoryAndPeriod(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	categoryID := uuid.New()
	march, _ := core.NewBudgetPeriod(2026, 3)
	april, _ := core.NewBudgetPeriod(2026, 4)

	newBudget := func(limit int64, period core.BudgetPeriod) core.Budget {
		b, err := core.NewBudget(core.BudgetParams{
			CategoryID: categoryID,
			Limit:      decimal.NewFromInt(limit),
			Period:     period,
			ModifiedAt: base,
		})
		require.NoError(t, err)
		return b
	}

	first := newBudget(100, march)
	applied, err := repo.SaveBudget(ctx, first)
	require.NoError(t, err)
	assert.True(t, applied)

	_, err = repo.SaveBudget(ctx, newBudget(200, march))
	assert.ErrorIs(t, err, ErrDuplicateBudget)

	_, err = repo.SaveBudget(ctx, newBudget(300, april))
	require.NoError(t, err)

	raised, err := first.WithLimit(decimal.NewFromInt(150), base.Add(time.Hour))
	require.NoError(t, err)
	applied, err = repo.SaveBudget(ctx, raised)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.GetBudgetFor(ctx, categoryID, march)
	require.NoError(t, err)
	assert.True(t, raised.Equal(got))

	inMarch, err := repo.ListBudgets(ctx, march)
	require.NoError(t, err)
	assert.Len(t, inMarch, 1)

	all, err := repo.ListCategoryBudgets(ctx, categoryID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	may, _ := core.NewBudgetPeriod(2026, 5)
	_, err = repo.GetBudgetFor(ctx, categoryID, may)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTransactionsFilters(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	walletID := uuid.New()

	monthly, err := core.NewRecurringProperties(core.FrequencyMonthly, nil, nil)
	require.NoError(t, err)
	spread, err := core.NewSpreadOutProperties(decimal.NewFromInt(300), 3, core.SpreadMonths, base)
	require.NoError(t, err)

	txs := []core.Transaction{
		transaction(t, walletID, core.OneTime{}, base),
		transaction(t, walletID, monthly, base.AddDate(0, 0, 10)),
		transaction(t, walletID, spread, base.AddDate(0, 1, 0)),
		transaction(t, uuid.New(), core.OneTime{}, base),
	}
	for _, tx := range txs {
		applied, err := repo.SaveTransaction(ctx, tx)
		require.NoError(t, err)
		require.True(t, applied)
	}

	all, err := repo.ListTransactions(ctx, TransactionFilter{WalletID: walletID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, txs[0].Equal(all[0]))

	recurring, err := repo.ListTransactions(ctx, TransactionFilter{WalletID: walletID, Kind: core.KindRecurring})
	require.NoError(t, err)
	require.Len(t, recurring, 1)
	assert.True(t, recurring[0].IsRecurring())

	march, err := repo.ListTransactions(ctx, TransactionFilter{
		WalletID: walletID,
		From:     time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, march, 2)

	byCategory, err := repo.ListTransactions(ctx, TransactionFilter{CategoryID: txs[2].CategoryID()})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.True(t, byCategory[0].IsSpreadOut())
}

func TestTransactionUpdateAndDelete(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	tx := transaction(t, uuid.New(), core.OneTime{}, base)
	_, err := repo.SaveTransaction(ctx, tx)
	require.NoError(t, err)

	edited, err := tx.WithAmount(decimal.RequireFromString("30.5"), base.Add(time.Hour))
	require.NoError(t, err)
	applied, err := repo.SaveTransaction(ctx, edited)
	require.NoError(t, err)
	assert.True(t, applied)

	got, err := repo.GetTransaction(ctx, tx.ID())
	require.NoError(t, err)
	assert.True(t, edited.Equal(got))

	deleted, err := repo.DeleteTransaction(ctx, tx.ID(), base.Add(30*time.Minute))
	require.NoError(t, err)
	assert.False(t, deleted, "delete older than the stored edit is ignored")

	deleted, err = repo.DeleteTransaction(ctx, tx.ID(), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.GetTransaction(ctx, tx.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeletedTransactionStaysDeleted(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	tx := transaction(t, uuid.New(), core.OneTime{}, base)

	_, err := repo.SaveTransaction(ctx, tx)
	require.NoError(t, err)
	deleted, err := repo.DeleteTransaction(ctx, tx.ID(), base.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, deleted)

	deletedAt, ok, err := repo.TransactionDeletedAt(ctx, tx.ID())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, deletedAt.Equal(base.Add(time.Hour)))

	tests := []struct {
		name    string
		at      time.Time
		applied bool
	}{
		{"redelivered original", base, false},
		{"edit made before the delete", base.Add(30 * time.Minute), false},
		{"edit at the delete instant", base.Add(time.Hour), false},
		{"edit made after the delete", base.Add(2 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, err := tx.WithAmount(decimal.NewFromInt(40), tt.at)
			require.NoError(t, err)
			applied, err := repo.SaveTransaction(ctx, version)
			require.NoError(t, err)
			assert.Equal(t, tt.applied, applied)

			_, err = repo.GetTransaction(ctx, tx.ID())
			if tt.applied {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestDeleteBeforeCreate(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	tx := transaction(t, uuid.New(), core.OneTime{}, base)

	deleted, err := repo.DeleteTransaction(ctx, tx.ID(), base.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, deleted)

	applied, err := repo.SaveTransaction(ctx, tx)
	require.NoError(t, err)
	assert.False(t, applied, "the delete arrived first but is newer")
}

func TestLostDeleteLeavesNoTombstone(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	tx := transaction(t, uuid.New(), core.OneTime{}, base.Add(time.Hour))
	edited, err := tx.WithAmount(decimal.NewFromInt(30), base.Add(time.Hour))
	require.NoError(t, err)
	_, err = repo.SaveTransaction(ctx, edited)
	require.NoError(t, err)

	deleted, err := repo.DeleteTransaction(ctx, tx.ID(), base.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, deleted)

	_, ok, err := repo.TransactionDeletedAt(ctx, tx.ID())
	require.NoError(t, err)
	assert.False(t, ok)
}
