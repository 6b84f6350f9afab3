package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"inari/internal/amqp"
	"inari/internal/cli"
	"inari/internal/codec"
	"inari/internal/log"
	"inari/internal/services"
)

// bundle is an export of codec documents grouped by entity.
type bundle struct {
	Wallets      []json.RawMessage `json:"wallets"`
	Categories   []json.RawMessage `json:"categories"`
	Budgets      []json.RawMessage `json:"budgets"`
	Transactions []json.RawMessage `json:"transactions"`
}

type stats struct {
	applied, stale int
}

func main() {
	file := flag.String("file", "", "bundle to import (stdin when empty)")
	publish := flag.Bool("publish", true, "announce imported changes on the change feed")
	flag.Parse()

	cfg, logger, err := cli.Setup(log.ComponentApp)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	in := io.Reader(os.Stdin)
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			cli.Fatal(logger, "Failed to open bundle", err)
		}
		defer f.Close()
		in = f
	}
	var b bundle
	if err := json.NewDecoder(in).Decode(&b); err != nil {
		cli.Fatal(logger, "Failed to read bundle", err)
	}

	store, err := cli.OpenStore(cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer store.Close()

	var publisher services.Publisher
	if *publish && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, importing locally only", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	st, err := importBundle(ctx, services.NewLedgerService(store, publisher), b)
	if err != nil {
		logger.Error("Import failed", log.FieldError, err, "applied", st.applied)
		cancel()
		store.Close()
		os.Exit(1)
	}
	logger.Info("Import complete", "applied", st.applied, "stale", st.stale)
}

// importBundle saves wallets first and transactions last, stopping at the
// first document that fails to decode or save.
func importBundle(ctx context.Context, ledger *services.LedgerService, b bundle) (stats, error) {
	var st stats
	count := func(applied bool) {
		if applied {
			st.applied++
		} else {
			st.stale++
		}
	}

	for i, doc := range b.Wallets {
		w, err := codec.DecodeWallet(doc)
		if err != nil {
			return st, fmt.Errorf("wallets[%d]: %w", i, err)
		}
		applied, err := ledger.SaveWallet(ctx, w)
		if err != nil {
			return st, err
		}
		count(applied)
	}
	for i, doc := range b.Categories {
		c, err := codec.DecodeCategory(doc)
		if err != nil {
			return st, fmt.Errorf("categories[%d]: %w", i, err)
		}
		applied, err := ledger.SaveCategory(ctx, c)
		if err != nil {
			return st, err
		}
		count(applied)
	}
	for i, doc := range b.Budgets {
		bud, err := codec.DecodeBudget(doc)
		if err != nil {
			return st, fmt.Errorf("budgets[%d]: %w", i, err)
		}
		applied, err := ledger.SaveBudget(ctx, bud)
		if err != nil {
			return st, err
		}
		count(applied)
	}
	for i, doc := range b.Transactions {
		t, err := codec.DecodeTransaction(doc)
		if err != nil {
			return st, fmt.Errorf("transactions[%d]: %w", i, err)
		}
		applied, err := ledger.SaveTransaction(ctx, t)
		if err != nil {
			return st, err
		}
		count(applied)
	}
	return st, nil
}
