package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"inari/internal/cli"
	"inari/internal/config"
	"inari/internal/core"
	"inari/internal/log"
	"inari/internal/services"
)

func main() {
	walletFlag := flag.String("wallet", "", "wallet ID (defaults to DEFAULT_WALLET_ID)")
	periodFlag := flag.String("period", "", "budget period as YYYY-MM (defaults to the current month)")
	flag.Parse()

	cfg, logger, err := cli.Setup(log.ComponentReport)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	walletID, period, err := parseArgs(cfg, *walletFlag, *periodFlag, core.SystemClock{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	store, err := cli.OpenStore(cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := services.NewReportBuilder(store, logger, time.Local).MonthlyReport(ctx, walletID, period)
	if err != nil {
		logger.Error("Failed to build report", log.FieldError, err, log.FieldWalletID, walletID)
		store.Close()
		os.Exit(1)
	}

	printReport(os.Stdout, report, newFormatter(cfg, report.Wallet.Currency()))
}

func parseArgs(cfg *config.Config, wallet, period string, clock core.Clock) (uuid.UUID, core.BudgetPeriod, error) {
	if wallet == "" {
		wallet = cfg.DefaultWalletID
	}
	if wallet == "" {
		return uuid.Nil, core.BudgetPeriod{}, fmt.Errorf("no wallet: pass -wallet or set DEFAULT_WALLET_ID")
	}
	walletID, err := uuid.Parse(wallet)
	if err != nil {
		return uuid.Nil, core.BudgetPeriod{}, fmt.Errorf("invalid wallet ID %q: %w", wallet, err)
	}

	if period == "" {
		return walletID, core.CurrentPeriod(clock), nil
	}
	p, err := core.ParseBudgetPeriod(period)
	if err != nil {
		return uuid.Nil, core.BudgetPeriod{}, err
	}
	return walletID, p, nil
}

type formatter struct {
	printer *message.Printer
	symbol  string
}

func newFormatter(cfg *config.Config, currency core.CurrencyCode) formatter {
	locale := cfg.Locale()
	return formatter{
		printer: message.NewPrinter(locale),
		symbol:  currency.Symbol(core.NewLocaleSymbols(locale)),
	}
}

func (f formatter) amount(d decimal.Decimal) string {
	return f.symbol + f.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

func printReport(out io.Writer, r *services.MonthlyReport, f formatter) {
	fmt.Fprintf(out, "%s, %s\n\n", r.Wallet.Name(), r.Period)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Category\tSpent\tYour share\tBudget\tRemaining\t")
	for _, line := range r.Lines {
		budget, remaining := "-", "-"
		if line.HasBudget {
			budget = f.amount(line.Limit)
			remaining = f.amount(line.Remaining())
			if line.OverBudget() {
				remaining += " !"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			line.Category.Name(), f.amount(line.Spent), f.amount(line.OwnerShare), budget, remaining)
	}
	if !r.Unassigned.IsZero() {
		fmt.Fprintf(tw, "Other\t%s\t\t\t\t\n", f.amount(r.Unassigned))
	}
	fmt.Fprintf(tw, "Total\t%s\t\t\t\t\n", f.amount(r.Total))
	tw.Flush()
}
