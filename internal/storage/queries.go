package storage

import (
	"context"
	"database/sql"
	"strings"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries holds the raw SQL. Every upsert only overwrites a row when the
// incoming modified_at is strictly newer, and returns the affected row count.
type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const upsertWallet = `
INSERT INTO wallets (id, name, is_archived, modified_at, document)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    is_archived = excluded.is_archived,
    modified_at = excluded.modified_at,
    document = excluded.document
WHERE excluded.modified_at > wallets.modified_at`

type UpsertWalletParams struct {
	ID         string
	Name       string
	IsArchived bool
	ModifiedAt int64
	Document   string
}

func (q *Queries) UpsertWallet(ctx context.Context, arg UpsertWalletParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, upsertWallet, arg.ID, arg.Name, arg.IsArchived, arg.ModifiedAt, arg.Document)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getWalletDocument = `SELECT document FROM wallets WHERE id = ?`

func (q *Queries) GetWalletDocument(ctx context.Context, id string) (string, error) {
	var doc string
	err := q.db.QueryRowContext(ctx, getWalletDocument, id).Scan(&doc)
	return doc, err
}

const listWalletDocuments = `SELECT document FROM wallets WHERE is_archived = 0 OR ? ORDER BY name`

func (q *Queries) ListWalletDocuments(ctx context.Context, includeArchived bool) ([]string, error) {
	return q.documents(ctx, listWalletDocuments, includeArchived)
}

const upsertCategory = `
INSERT INTO categories (id, wallet_id, sort_order, modified_at, document)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    wallet_id = excluded.wallet_id,
    sort_order = excluded.sort_order,
    modified_at = excluded.modified_at,
    document = excluded.document
WHERE excluded.modified_at > categories.modified_at`

type UpsertCategoryParams struct {
	ID         string
	WalletID   string
	SortOrder  int64
	ModifiedAt int64
	Document   string
}

func (q *Queries) UpsertCategory(ctx context.Context, arg UpsertCategoryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, upsertCategory, arg.ID, arg.WalletID, arg.SortOrder, arg.ModifiedAt, arg.Document)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getCategoryDocument = `SELECT document FROM categories WHERE id = ?`

func (q *Queries) GetCategoryDocument(ctx context.Context, id string) (string, error) {
	var doc string
	err := q.db.QueryRowContext(ctx, getCategoryDocument, id).Scan(&doc)
	return doc, err
}

const listCategoryDocuments = `SELECT document FROM categories WHERE wallet_id = ? ORDER BY sort_order, id`

func (q *Queries) ListCategoryDocuments(ctx context.Context, walletID string) ([]string, error) {
	return q.documents(ctx, listCategoryDocuments, walletID)
}

const upsertBudget = `
INSERT INTO budgets (id, category_id, year, month, modified_at, document)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    category_id = excluded.category_id,
    year = excluded.year,
    month = excluded.month,
    modified_at = excluded.modified_at,
    document = excluded.document
WHERE excluded.modified_at > budgets.modified_at`

type UpsertBudgetParams struct {
	ID         string
	CategoryID string
	Year       int64
	Month      int64
	ModifiedAt int64
	Document   string
}

func (q *Queries) UpsertBudget(ctx context.Context, arg UpsertBudgetParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, upsertBudget, arg.ID, arg.CategoryID, arg.Year, arg.Month, arg.ModifiedAt, arg.Document)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getBudgetDocument = `SELECT document FROM budgets WHERE id = ?`

func (q *Queries) GetBudgetDocument(ctx context.Context, id string) (string, error) {
	var doc string
	err := q.db.QueryRowContext(ctx, getBudgetDocument, id).Scan(&doc)
	return doc, err
}

const getBudgetDocumentFor = `SELECT document FROM budgets WHERE category_id = ? AND year = ? AND month = ?`

func (q *Queries) GetBudgetDocumentFor(ctx context.Context, categoryID string, year, month int64) (string, error) {
	var doc string
	err := q.db.QueryRowContext(ctx, getBudgetDocumentFor, categoryID, year, month).Scan(&doc)
	return doc, err
}

const listBudgetDocumentsByPeriod = `SELECT document FROM budgets WHERE year = ? AND month = ? ORDER BY category_id`

func (q *Queries) ListBudgetDocumentsByPeriod(ctx context.Context, year, month int64) ([]string, error) {
	return q.documents(ctx, listBudgetDocumentsByPeriod, year, month)
}

const listBudgetDocumentsByCategory = `SELECT document FROM budgets WHERE category_id = ? ORDER BY year, month`

func (q *Queries) ListBudgetDocumentsByCategory(ctx context.Context, categoryID string) ([]string, error) {
	return q.documents(ctx, listBudgetDocumentsByCategory, categoryID)
}

// upsertTransaction also refuses versions no newer than the transaction's
// tombstone, so a late save cannot bring back a deleted row.
const upsertTransaction = `
INSERT INTO transactions (id, wallet_id, category_id, kind, date, modified_at, document)
SELECT ?, ?, ?, ?, ?, ?, ?
WHERE NOT EXISTS (
    SELECT 1 FROM transaction_tombstones WHERE id = ? AND deleted_at >= ?
)
ON CONFLICT(id) DO UPDATE SET
    wallet_id = excluded.wallet_id,
    category_id = excluded.category_id,
    kind = excluded.kind,
    date = excluded.date,
    modified_at = excluded.modified_at,
    document = excluded.document
WHERE excluded.modified_at > transactions.modified_at`

type UpsertTransactionParams struct {
	ID         string
	WalletID   string
	CategoryID string
	Kind       string
	Date       int64
	ModifiedAt int64
	Document   string
}

func (q *Queries) UpsertTransaction(ctx context.Context, arg UpsertTransactionParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, upsertTransaction,
		arg.ID, arg.WalletID, arg.CategoryID, arg.Kind, arg.Date, arg.ModifiedAt, arg.Document,
		arg.ID, arg.ModifiedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getTransactionDocument = `SELECT document FROM transactions WHERE id = ?`

func (q *Queries) GetTransactionDocument(ctx context.Context, id string) (string, error) {
	var doc string
	err := q.db.QueryRowContext(ctx, getTransactionDocument, id).Scan(&doc)
	return doc, err
}

// ListTransactionDocumentsParams filters on the non-empty / non-zero fields.
// DateFrom is inclusive and DateTo exclusive, both unix nanoseconds.
type ListTransactionDocumentsParams struct {
	WalletID   string
	CategoryID string
	Kind       string
	DateFrom   int64
	DateTo     int64
}

func (q *Queries) ListTransactionDocuments(ctx context.Context, arg ListTransactionDocumentsParams) ([]string, error) {
	var (
		where []string
		args  []interface{}
	)
	if arg.WalletID != "" {
		where, args = append(where, "wallet_id = ?"), append(args, arg.WalletID)
	}
	if arg.CategoryID != "" {
		where, args = append(where, "category_id = ?"), append(args, arg.CategoryID)
	}
	if arg.Kind != "" {
		where, args = append(where, "kind = ?"), append(args, arg.Kind)
	}
	if arg.DateFrom != 0 {
		where, args = append(where, "date >= ?"), append(args, arg.DateFrom)
	}
	if arg.DateTo != 0 {
		where, args = append(where, "date < ?"), append(args, arg.DateTo)
	}

	query := "SELECT document FROM transactions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, id"
	return q.documents(ctx, query, args...)
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND modified_at <= ?`

// DeleteTransaction removes the row unless it was modified after modifiedAt.
func (q *Queries) DeleteTransaction(ctx context.Context, id string, modifiedAt int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, id, modifiedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// The tombstone is kept only when no newer version of the row survives, and
// only ever moves forward.
const upsertTransactionTombstone = `
INSERT INTO transaction_tombstones (id, deleted_at)
SELECT ?, ?
WHERE NOT EXISTS (
    SELECT 1 FROM transactions WHERE id = ? AND modified_at > ?
)
ON CONFLICT(id) DO UPDATE SET
    deleted_at = excluded.deleted_at
WHERE excluded.deleted_at > transaction_tombstones.deleted_at`

func (q *Queries) UpsertTransactionTombstone(ctx context.Context, id string, deletedAt int64) error {
	_, err := q.db.ExecContext(ctx, upsertTransactionTombstone, id, deletedAt, id, deletedAt)
	return err
}

const getTransactionTombstone = `SELECT deleted_at FROM transaction_tombstones WHERE id = ?`

func (q *Queries) GetTransactionTombstone(ctx context.Context, id string) (int64, error) {
	var deletedAt int64
	err := q.db.QueryRowContext(ctx, getTransactionTombstone, id).Scan(&deletedAt)
	return deletedAt, err
}

func (q *Queries) documents(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []string
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return docs, rows.Err()
}
