package main

import (
	"fmt"
	"os"
	"time"

	"inari/internal/amqp"
	"inari/internal/cache"
	"inari/internal/cli"
	"inari/internal/log"
	"inari/internal/services"
	"inari/internal/worker"
)

func main() {
	cfg, logger, err := cli.Setup(log.ComponentWorker)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger.Info("Starting inari-worker")

	store, err := cli.OpenStore(cfg)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize SQLite repository", err)
	}
	defer store.Close()

	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "Change feed is required", fmt.Errorf("AMQP_URL is empty"))
	}
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer amqpClient.Close()

	caches := cache.NewManager()
	for _, c := range store.Caches() {
		caches.Register(c)
	}

	processor := services.NewSyncProcessor(store, logger)
	changeWorker := worker.NewChangeWorker(amqpClient, processor, caches, time.Minute)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	logger.Info("Consuming change feed",
		log.FieldQueue, cfg.AMQPQueue,
		"exchange", cfg.AMQPExchange,
		"sqlite_db", cfg.SQLiteDBPath)

	if err := changeWorker.Run(ctx); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		cancel()
		store.Close()
		amqpClient.Close()
		os.Exit(1)
	}

	processed, failed := changeWorker.Stats()
	logger.Info("Worker shutdown complete", "processed", processed, "failed", failed)
}
