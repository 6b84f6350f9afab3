// Package storage persists inari entities in SQLite. Each row carries the
// entity's codec document plus the columns needed to index and filter it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"inari/internal/cache"
	"inari/internal/codec"
	"inari/internal/core"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicateBudget = errors.New("a budget already exists for this category and period")
)

type Options struct {
	CacheSize int
	CacheTTL  time.Duration
}

func DefaultOptions() Options {
	return Options{CacheSize: 256, CacheTTL: 5 * time.Minute}
}

type SQLiteRepository struct {
	db         *sql.DB
	queries    *Queries
	wallets    *cache.LRUCache[core.Wallet]
	categories *cache.LRUCache[core.Category]
}

func NewSQLiteRepository(dbPath string, opts Options) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if opts.CacheSize < 1 {
		opts = DefaultOptions()
	}
	return &SQLiteRepository{
		db:         db,
		queries:    New(db),
		wallets:    cache.NewLRUCache[core.Wallet](opts.CacheSize, opts.CacheTTL),
		categories: cache.NewLRUCache[core.Category](opts.CacheSize, opts.CacheTTL),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Caches exposes the entity caches for periodic expiry.
func (r *SQLiteRepository) Caches() []cache.Cleaner {
	return []cache.Cleaner{r.wallets, r.categories}
}

func nanos(t time.Time) int64 { return t.UTC().UnixNano() }

func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return fmt.Errorf("get %s %s: %w", entity, id, err)
}

// SaveWallet stores w unless a newer version is already stored. applied is
// false when the stored version won.
func (r *SQLiteRepository) SaveWallet(ctx context.Context, w core.Wallet) (applied bool, err error) {
	doc, err := codec.EncodeWallet(w)
	if err != nil {
		return false, err
	}
	n, err := r.queries.UpsertWallet(ctx, UpsertWalletParams{
		ID:         w.ID().String(),
		Name:       w.Name(),
		IsArchived: w.IsArchived(),
		ModifiedAt: nanos(w.ModifiedAt()),
		Document:   string(doc),
	})
	if err != nil {
		return false, fmt.Errorf("save wallet: %w", err)
	}
	if n > 0 {
		r.wallets.Set(w)
	}
	slog.DebugContext(ctx, "Wallet saved", "component", "storage", "entity_id", w.ID(), "applied", n > 0)
	return n > 0, nil
}

func (r *SQLiteRepository) GetWallet(ctx context.Context, id uuid.UUID) (core.Wallet, error) {
	if w, ok := r.wallets.Get(id); ok {
		return w, nil
	}
	doc, err := r.queries.GetWalletDocument(ctx, id.String())
	if err != nil {
		return core.Wallet{}, notFound(err, "wallet", id)
	}
	w, err := codec.DecodeWallet([]byte(doc))
	if err != nil {
		return core.Wallet{}, fmt.Errorf("decode stored wallet %s: %w", id, err)
	}
	r.wallets.Set(w)
	return w, nil
}

func (r *SQLiteRepository) ListWallets(ctx context.Context, includeArchived bool) ([]core.Wallet, error) {
	docs, err := r.queries.ListWalletDocuments(ctx, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return decodeAll(docs, codec.DecodeWallet)
}

func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.Category) (bool, error) {
	doc, err := codec.EncodeCategory(c)
	if err != nil {
		return false, err
	}
	n, err := r.queries.UpsertCategory(ctx, UpsertCategoryParams{
		ID:         c.ID().String(),
		WalletID:   c.WalletID().String(),
		SortOrder:  int64(c.SortOrder()),
		ModifiedAt: nanos(c.ModifiedAt()),
		Document:   string(doc),
	})
	if err != nil {
		return false, fmt.Errorf("save category: %w", err)
	}
	if n > 0 {
		r.categories.Set(c)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id uuid.UUID) (core.Category, error) {
	if c, ok := r.categories.Get(id); ok {
		return c, nil
	}
	doc, err := r.queries.GetCategoryDocument(ctx, id.String())
	if err != nil {
		return core.Category{}, notFound(err, "category", id)
	}
	c, err := codec.DecodeCategory([]byte(doc))
	if err != nil {
		return core.Category{}, fmt.Errorf("decode stored category %s: %w", id, err)
	}
	r.categories.Set(c)
	return c, nil
}

// ListCategories returns a wallet's categories in sort order.
func (r *SQLiteRepository) ListCategories(ctx context.Context, walletID uuid.UUID) ([]core.Category, error) {
	docs, err := r.queries.ListCategoryDocuments(ctx, walletID.String())
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return decodeAll(docs, codec.DecodeCategory)
}

// SaveBudget fails with ErrDuplicateBudget when another budget already covers
// the same category and period.
func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) (bool, error) {
	doc, err := codec.EncodeBudget(b)
	if err != nil {
		return false, err
	}
	n, err := r.queries.UpsertBudget(ctx, UpsertBudgetParams{
		ID:         b.ID().String(),
		CategoryID: b.CategoryID().String(),
		Year:       int64(b.Period().Year()),
		Month:      int64(b.Period().Month()),
		ModifiedAt: nanos(b.ModifiedAt()),
		Document:   string(doc),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("save budget %s for %s: %w", b.ID(), b.Period(), ErrDuplicateBudget)
		}
		return false, fmt.Errorf("save budget: %w", err)
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id uuid.UUID) (core.Budget, error) {
	doc, err := r.queries.GetBudgetDocument(ctx, id.String())
	if err != nil {
		return core.Budget{}, notFound(err, "budget", id)
	}
	return decodeStored(doc, codec.DecodeBudget)
}

// GetBudgetFor returns the budget of a category for one period.
func (r *SQLiteRepository) GetBudgetFor(ctx context.Context, categoryID uuid.UUID, period core.BudgetPeriod) (core.Budget, error) {
	doc, err := r.queries.GetBudgetDocumentFor(ctx, categoryID.String(), int64(period.Year()), int64(period.Month()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Budget{}, fmt.Errorf("budget for %s in %s: %w", categoryID, period, ErrNotFound)
		}
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return decodeStored(doc, codec.DecodeBudget)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, period core.BudgetPeriod) ([]core.Budget, error) {
	docs, err := r.queries.ListBudgetDocumentsByPeriod(ctx, int64(period.Year()), int64(period.Month()))
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return decodeAll(docs, codec.DecodeBudget)
}

func (r *SQLiteRepository) ListCategoryBudgets(ctx context.Context, categoryID uuid.UUID) ([]core.Budget, error) {
	docs, err := r.queries.ListBudgetDocumentsByCategory(ctx, categoryID.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return decodeAll(docs, codec.DecodeBudget)
}

func (r *SQLiteRepository) SaveTransaction(ctx context.Context, t core.Transaction) (bool, error) {
	doc, err := codec.EncodeTransaction(t)
	if err != nil {
		return false, err
	}
	n, err := r.queries.UpsertTransaction(ctx, UpsertTransactionParams{
		ID:         t.ID().String(),
		WalletID:   t.WalletID().String(),
		CategoryID: t.CategoryID().String(),
		Kind:       t.Kind().TypeName(),
		Date:       nanos(t.Date()),
		ModifiedAt: nanos(t.ModifiedAt()),
		Document:   string(doc),
	})
	if err != nil {
		return false, fmt.Errorf("save transaction: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	doc, err := r.queries.GetTransactionDocument(ctx, id.String())
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction", id)
	}
	return decodeStored(doc, codec.DecodeTransaction)
}

// TransactionFilter narrows ListTransactions. Zero fields do not filter.
// The date range is [From, To).
type TransactionFilter struct {
	WalletID   uuid.UUID
	CategoryID uuid.UUID
	Kind       string
	From       time.Time
	To         time.Time
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	arg := ListTransactionDocumentsParams{Kind: f.Kind}
	if f.WalletID != uuid.Nil {
		arg.WalletID = f.WalletID.String()
	}
	if f.CategoryID != uuid.Nil {
		arg.CategoryID = f.CategoryID.String()
	}
	if !f.From.IsZero() {
		arg.DateFrom = nanos(f.From)
	}
	if !f.To.IsZero() {
		arg.DateTo = nanos(f.To)
	}
	docs, err := r.queries.ListTransactionDocuments(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return decodeAll(docs, codec.DecodeTransaction)
}

// DeleteTransaction removes a transaction unless the stored copy is newer than
// modifiedAt, and leaves a tombstone so older saves delivered later are
// ignored. It reports whether a row was removed.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id uuid.UUID, modifiedAt time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("delete transaction %s: %w", id, err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	n, err := q.DeleteTransaction(ctx, id.String(), nanos(modifiedAt))
	if err != nil {
		return false, fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if err := q.UpsertTransactionTombstone(ctx, id.String(), nanos(modifiedAt)); err != nil {
		return false, fmt.Errorf("tombstone transaction %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete transaction %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Transaction delete processed", "component", "storage", "entity_id", id, "applied", n > 0)
	return n > 0, nil
}

// TransactionDeletedAt reports when a transaction was last deleted, if ever.
func (r *SQLiteRepository) TransactionDeletedAt(ctx context.Context, id uuid.UUID) (time.Time, bool, error) {
	deletedAt, err := r.queries.GetTransactionTombstone(ctx, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get tombstone %s: %w", id, err)
	}
	return time.Unix(0, deletedAt).UTC(), true, nil
}

func decodeStored[T any](doc string, decode func([]byte) (T, error)) (T, error) {
	v, err := decode([]byte(doc))
	if err != nil {
		var zero T
		return zero, fmt.Errorf("decode stored document: %w", err)
	}
	return v, nil
}

func decodeAll[T any](docs []string, decode func([]byte) (T, error)) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decodeStored(doc, decode)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
