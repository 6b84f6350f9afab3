package main

import (
	"fmt"
	"os"
	"time"

	"inari/internal/cache"
	"inari/internal/cli"
	"inari/internal/core"
	apihttp "inari/internal/http"
	"inari/internal/log"
	"inari/internal/services"
)

func main() {
	cfg, logger, err := cli.Setup(log.ComponentHTTP)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Info("Starting inari-server", "addr", cfg.HTTPAddr)

	store, err := cli.OpenStore(cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer store.Close()

	caches := cache.NewManager()
	for _, c := range store.Caches() {
		caches.Register(c)
	}
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	reports := services.NewReportBuilder(store, logger, nil)
	srv := apihttp.NewServer(cfg.HTTPAddr, store, reports, core.SystemClock{}, logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	if err := srv.Run(ctx, 15*time.Second); err != nil {
		logger.Error("HTTP server failed", log.FieldError, err)
		os.Exit(1)
	}
}
