package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"inari/internal/core"
	"inari/internal/log"
	"inari/internal/storage"
)

// ReportSource is the read side of the store used by reports.
type ReportSource interface {
	GetWallet(ctx context.Context, id uuid.UUID) (core.Wallet, error)
	ListCategories(ctx context.Context, walletID uuid.UUID) ([]core.Category, error)
	ListBudgets(ctx context.Context, period core.BudgetPeriod) ([]core.Budget, error)
	ListTransactions(ctx context.Context, f storage.TransactionFilter) ([]core.Transaction, error)
}

// CategoryLine is one category's spending in a period.
type CategoryLine struct {
	Category   core.Category
	Spent      decimal.Decimal
	OwnerShare decimal.Decimal
	Limit      decimal.Decimal
	HasBudget  bool
}

// Remaining is the limit minus spent; zero when the category has no budget.
func (l CategoryLine) Remaining() decimal.Decimal {
	if !l.HasBudget {
		return decimal.Zero
	}
	return l.Limit.Sub(l.Spent)
}

func (l CategoryLine) OverBudget() bool {
	return l.HasBudget && l.Spent.GreaterThan(l.Limit)
}

type MonthlyReport struct {
	Wallet core.Wallet
	Period core.BudgetPeriod
	Lines  []CategoryLine
	// Unassigned is spending whose category is not in the wallet.
	Unassigned decimal.Decimal
	Total      decimal.Decimal
}

type ReportBuilder struct {
	source ReportSource
	logger *log.StructuredLogger
	loc    *time.Location
}

// NewReportBuilder builds reports with period boundaries in loc (UTC if nil).
func NewReportBuilder(source ReportSource, logger *log.Logger, loc *time.Location) *ReportBuilder {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportBuilder{
		source: source,
		logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentReport)),
		loc:    loc,
	}
}

// MonthlyReport totals a wallet's spending per category for one period and
// sets it against the period's budgets.
func (b *ReportBuilder) MonthlyReport(ctx context.Context, walletID uuid.UUID, period core.BudgetPeriod) (*MonthlyReport, error) {
	start := time.Now()
	periodStart := period.FirstDay(b.loc)
	periodEnd := period.Next().FirstDay(b.loc)

	var (
		wallet     core.Wallet
		categories []core.Category
		budgets    []core.Budget
		txs        []core.Transaction
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		wallet, err = b.source.GetWallet(gctx, walletID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = b.source.ListCategories(gctx, walletID)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = b.source.ListBudgets(gctx, period)
		return err
	})
	g.Go(func() error {
		// recurring and spread-out transactions dated before the period
		// can still fall into it
		var err error
		txs, err = b.source.ListTransactions(gctx, storage.TransactionFilter{WalletID: walletID, To: periodEnd})
		return err
	})
	if err := g.Wait(); err != nil {
		b.logger.LogError(ctx, "Failed to load report data", err, log.ComponentReport, log.OpReport,
			log.NewFields().WithWallet(walletID.String()).WithPeriod(period.String()))
		return nil, fmt.Errorf("load report data: %w", err)
	}

	report := &MonthlyReport{
		Wallet:     wallet,
		Period:     period,
		Lines:      make([]CategoryLine, len(categories)),
		Unassigned: decimal.Zero,
		Total:      decimal.Zero,
	}
	index := make(map[uuid.UUID]int, len(categories))
	for i, c := range categories {
		report.Lines[i] = CategoryLine{Category: c, Spent: decimal.Zero, OwnerShare: decimal.Zero, Limit: decimal.Zero}
		index[c.ID()] = i
	}
	for _, bud := range budgets {
		if i, ok := index[bud.CategoryID()]; ok {
			report.Lines[i].Limit = bud.Limit()
			report.Lines[i].HasBudget = true
		}
	}

	for _, tx := range txs {
		spent, err := b.spentIn(tx, period, periodStart, periodEnd)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.ID(), err)
		}
		if spent.IsZero() {
			continue
		}
		report.Total = report.Total.Add(spent)

		i, ok := index[tx.CategoryID()]
		if !ok {
			report.Unassigned = report.Unassigned.Add(spent)
			continue
		}
		share, err := BurdenShare(tx, wallet)
		if err != nil {
			return nil, err
		}
		report.Lines[i].Spent = report.Lines[i].Spent.Add(spent)
		report.Lines[i].OwnerShare = report.Lines[i].OwnerShare.Add(spent.Mul(share.Ratio))
	}

	b.logger.LogReport(ctx, walletID.String(), period.String(), len(report.Lines), time.Since(start))
	return report, nil
}

// spentIn is how much of tx falls into the period.
func (b *ReportBuilder) spentIn(tx core.Transaction, period core.BudgetPeriod, from, to time.Time) (decimal.Decimal, error) {
	switch k := tx.Kind().(type) {
	case core.OneTime:
		if period.Contains(tx.Date().In(b.loc)) {
			return tx.Amount(), nil
		}
	case core.ExpectationProperties:
		if period.Contains(tx.Date().In(b.loc)) {
			return k.Settled(), nil
		}
	case core.RecurringProperties:
		n, err := CountIn(k, tx.Date().In(b.loc), period)
		if err != nil {
			return decimal.Zero, err
		}
		return tx.Amount().Mul(decimal.NewFromInt(int64(n))), nil
	case core.SpreadOutProperties:
		if k.StartDate().Before(to) && k.EndDate().After(from) {
			return k.MonthlyAmount(), nil
		}
	}
	return decimal.Zero, nil
}
