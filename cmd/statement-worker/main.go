package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/PhantomExMachina/Budget-Tool/internal/amqp"
	"github.com/PhantomExMachina/Budget-Tool/internal/cli"
	"github.com/PhantomExMachina/Budget-Tool/internal/config"
	"github.com/PhantomExMachina/Budget-Tool/internal/log"
	"github.com/PhantomExMachina/Budget-Tool/internal/services"
)

func main() {
	logger := cli.SetupLogger(log.ComponentWorker)
	cli.LoadEnvFile()

	logger.Info("Starting statement-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// Scan events feed downstream consumers; the worker keeps running
	// without a broker.
	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient != nil {
		defer amqpClient.Close()
		logger.Info("AMQP client initialized - scan events will be published and consumed")
	} else {
		logger.Info("AMQP disabled - scan events will not be published")
	}

	scanService := services.NewScanService(sqliteRepo, amqpClient, cfg.ScanTolerance, cfg.ScanDayWindow)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Consume scan events published by other processes (CLI-driven scans)
	// so the worker log carries the full scan audit trail.
	if amqpClient != nil {
		go func() {
			if err := amqpClient.ConsumeScanEvents(ctx, handleScanEvent(logger)); err != nil && err != context.Canceled {
				logger.Error("Scan event consumption failed", log.FieldError, err)
			}
		}()
	}

	logger.Info("Statement watcher configured",
		"interval", cfg.WorkerInterval,
		"dir", cfg.StatementDir,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	// Run initial ingestion on startup
	logger.Info("Running initial statement ingestion...")
	ingest(ctx, logger, scanService, cfg)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ingest(ctx, logger, scanService, cfg)
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
}

// handleScanEvent logs scan completions announced on the queue. Events from
// this process are already logged at scan time; the handler makes runs from
// other publishers visible too.
func handleScanEvent(logger *log.Logger) func(*amqp.ScanEventMessage) error {
	return func(msg *amqp.ScanEventMessage) error {
		logger.Info("Scan event received",
			log.FieldScanRun, msg.RunID,
			log.FieldUser, msg.User,
			log.FieldPeriods, msg.Periods,
			log.FieldRecurring, msg.RecurringFound,
			log.FieldOneTime, msg.OneTimeFound)
		return nil
	}
}

// ingest scans every CSV statement waiting in the drop directory, oldest
// file name first, then moves them to a processed subdirectory so the next
// tick does not pick them up again.
func ingest(ctx context.Context, logger *log.Logger, scanService *services.ScanService, cfg *config.Config) {
	paths, err := filepath.Glob(filepath.Join(cfg.StatementDir, "*.csv"))
	if err != nil {
		logger.Error("Failed to list statement directory", log.FieldError, err, "dir", cfg.StatementDir)
		return
	}
	if len(paths) == 0 {
		return
	}

	logger.Info("Ingesting statements", "count", len(paths))

	result, err := scanService.ScanFiles(ctx, cfg.DefaultUser, paths)
	if err != nil {
		logger.Error("Statement scan failed", log.FieldError, err)
		return
	}

	logger.Info("Statement scan complete",
		log.FieldScanRun, result.RunID,
		log.FieldPeriods, result.Periods,
		log.FieldRecurring, len(result.Recurring),
		log.FieldOneTime, result.NewOneTimes)

	processedDir := filepath.Join(cfg.StatementDir, "processed")
	if err := os.MkdirAll(processedDir, 0755); err != nil {
		logger.Error("Failed to create processed directory", log.FieldError, err, "dir", processedDir)
		return
	}
	for _, path := range paths {
		dest := filepath.Join(processedDir, filepath.Base(path))
		if err := os.Rename(path, dest); err != nil {
			logger.Error("Failed to move processed statement", log.FieldError, err, "path", path)
		}
	}
}
