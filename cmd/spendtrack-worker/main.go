package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"spendtrack/internal/amqp"
	"spendtrack/internal/config"
	applog "spendtrack/internal/log"
	"spendtrack/internal/sheets"
	gsheet "spendtrack/internal/sheets/google"
	mem "spendtrack/internal/sheets/memory"
	"spendtrack/internal/storage"
	"spendtrack/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting spendtrack-worker")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var mirror sheets.ExpenseMirror
	switch cfg.MirrorBackend {
	case "google":
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	case "memory":
		mirror = mem.New()
		logger.Info("In-memory mirror initialized")
	default:
		logger.Info("Mirroring disabled, nothing to do")
		return
	}

	w := worker.NewMirrorWorker(repo, mirror, cfg.MirrorBatchSize)

	if err := w.StartupCheck(ctx); err != nil {
		logger.Error("Startup mirror check failed", "error", err)
		// Keep running, the sweep loop retries.
	}

	g, ctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeExpenseChanges(ctx, func(msg *amqp.ExpenseChangedMessage) error {
				return w.HandleChangeMessage(ctx, msg)
			})
		})
	} else {
		logger.Info("AMQP disabled, relying on the periodic sweep only")
	}

	g.Go(func() error {
		return w.RunSweepLoop(ctx, cfg.SweepInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
