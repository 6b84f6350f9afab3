package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inari/internal/codec"
	"inari/internal/core"
	"inari/internal/log"
	"inari/internal/services"
	"inari/internal/storage"
)

var at = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	srv      *Server
	wallet   core.Wallet
	category core.Category
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "inari.db"), storage.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	w, err := core.NewWallet(core.WalletParams{Name: "Home", Currency: core.EUR, Type: core.WalletSingle, OwnerIDs: []string{"alice"}, ModifiedAt: at})
	require.NoError(t, err)
	c, err := core.NewCategory(core.CategoryParams{WalletID: w.ID(), Name: "Food", IconName: core.DefaultIconName, Color: core.DefaultCategoryColor, ModifiedAt: at})
	require.NoError(t, err)
	march, _ := core.NewBudgetPeriod(2026, 3)
	b, err := core.NewBudget(core.BudgetParams{CategoryID: c.ID(), Limit: decimal.NewFromInt(100), Period: march, ModifiedAt: at})
	require.NoError(t, err)
	weekly, err := core.NewRecurringProperties(core.FrequencyWeekly, nil, nil)
	require.NoError(t, err)

	_, err = repo.SaveWallet(ctx, w)
	require.NoError(t, err)
	_, err = repo.SaveCategory(ctx, c)
	require.NoError(t, err)
	_, err = repo.SaveBudget(ctx, b)
	require.NoError(t, err)
	for _, p := range []core.TransactionParams{
		{WalletID: w.ID(), CategoryID: c.ID(), Amount: decimal.NewFromInt(30), Kind: core.OneTime{}, Date: at, ModifiedAt: at},
		{WalletID: w.ID(), CategoryID: c.ID(), Amount: decimal.NewFromInt(20), Kind: weekly, Date: at, ModifiedAt: at},
	} {
		tx, err := core.NewTransaction(p)
		require.NoError(t, err)
		_, err = repo.SaveTransaction(ctx, tx)
		require.NoError(t, err)
	}

	logger := log.New(log.Config{Output: &bytes.Buffer{}})
	reports := services.NewReportBuilder(repo, logger, nil)
	return fixture{
		srv:      NewServer(":0", repo, reports, core.FixedClock(at), logger),
		wallet:   w,
		category: c,
	}
}

func (f fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestWallets(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/api/wallets")
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	w, err := codec.DecodeWallet(docs[0])
	require.NoError(t, err)
	assert.True(t, f.wallet.Equal(w))

	rec = f.get(t, "/api/wallets/"+f.wallet.ID().String())
	require.Equal(t, http.StatusOK, rec.Code)
	w, err = codec.DecodeWallet(rec.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, f.wallet.Equal(w))

	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/wallets/"+uuid.NewString()).Code)
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/wallets/nope").Code)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	rec := f.get(t, "/api/wallets/"+f.wallet.ID().String()+"/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	var docs []json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	c, err := codec.DecodeCategory(docs[0])
	require.NoError(t, err)
	assert.True(t, f.category.Equal(c))
}

func TestTransactions(t *testing.T) {
	f := newFixture(t)
	base := "/api/wallets/" + f.wallet.ID().String() + "/transactions"

	tests := []struct {
		query  string
		status int
		count  int
	}{
		{"", http.StatusOK, 2},
		{"?kind=recurring", http.StatusOK, 1},
		{"?period=2026-03", http.StatusOK, 2},
		{"?period=2026-04", http.StatusOK, 0},
		{"?kind=weekly", http.StatusBadRequest, 0},
		{"?period=2026-13", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := f.get(t, base+tt.query)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				return
			}
			var docs []json.RawMessage
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
			assert.Len(t, docs, tt.count)
		})
	}
}

type reportBody struct {
	Currency string `json:"currency"`
	Period   string `json:"period"`
	Lines    []struct {
		Name       string  `json:"name"`
		Spent      string  `json:"spent"`
		Limit      *string `json:"limit"`
		Remaining  *string `json:"remaining"`
		OverBudget bool    `json:"overBudget"`
	} `json:"lines"`
	Total string `json:"total"`
}

func TestReport(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/api/wallets/"+f.wallet.ID().String()+"/report")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp reportBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "EUR", resp.Currency)
	assert.Equal(t, "2026-03", resp.Period)
	require.Len(t, resp.Lines, 1)

	// 30 once plus 20 on March 4, 11, 18 and 25
	line := resp.Lines[0]
	assert.Equal(t, "Food", line.Name)
	assert.Equal(t, "110", line.Spent)
	require.NotNil(t, line.Limit)
	assert.Equal(t, "100", *line.Limit)
	assert.Equal(t, "-10", *line.Remaining)
	assert.True(t, line.OverBudget)
	assert.Equal(t, "110", resp.Total)

	rec = f.get(t, "/api/wallets/"+f.wallet.ID().String()+"/report?period=2026-02")
	require.Equal(t, http.StatusOK, rec.Code)
	var feb reportBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feb))
	assert.Equal(t, "0", feb.Total)
	require.Len(t, feb.Lines, 1)
	assert.Nil(t, feb.Lines[0].Limit)

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/api/wallets/"+f.wallet.ID().String()+"/report?period=march").Code)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/api/wallets/"+uuid.NewString()+"/report").Code)
}

type brokenStore struct {
	*storage.SQLiteRepository
}

func (brokenStore) ListWallets(context.Context, bool) ([]core.Wallet, error) {
	return nil, errors.New("database is locked")
}

func TestServerErrorIsLoggedWithRequestID(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "inari.db"), storage.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	var logs bytes.Buffer
	logger := log.New(log.Config{Format: log.FormatJSON, Output: &logs})
	srv := NewServer(":0", brokenStore{repo}, services.NewReportBuilder(repo, logger, nil), core.FixedClock(at), logger)

	req := httptest.NewRequest(http.MethodGet, "/api/wallets", nil)
	req.Header.Set("X-Request-ID", "req_fixed")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req_fixed", rec.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), `"msg":"Request failed"`)
	assert.Contains(t, logs.String(), `"request_id":"req_fixed"`)
	assert.Contains(t, logs.String(), `"component":"http"`)
	assert.Contains(t, logs.String(), `"error":"database is locked"`)
}
