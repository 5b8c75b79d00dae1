package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/PhantomExMachina/Budget-Tool/internal/amqp"
	"github.com/PhantomExMachina/Budget-Tool/internal/ledger"
	"github.com/PhantomExMachina/Budget-Tool/internal/recurring"
	"github.com/PhantomExMachina/Budget-Tool/internal/statement"
	"github.com/PhantomExMachina/Budget-Tool/internal/storage"
)

// ScanService runs the statement pipeline: parse one statement per period,
// detect recurring charges across the periods, classify the rest as one-time
// outflows, and persist what is new.
type ScanService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	tolerance  float64
	dayWindow  int
}

func NewScanService(storage *storage.SQLiteRepository, amqpClient *amqp.Client, tolerance float64, dayWindow int) *ScanService {
	return &ScanService{
		storage:    storage,
		amqpClient: amqpClient,
		tolerance:  tolerance,
		dayWindow:  dayWindow,
	}
}

// ScanResult summarizes one completed scan.
type ScanResult struct {
	RunID       string
	Periods     int
	Recurring   []ledger.RecurringCandidate
	OneTimes    []ledger.OneTimeCandidate
	NewOneTimes int
}

// ScanFiles parses the given statement files, ordered oldest period first,
// and runs detection across them.
func (s *ScanService) ScanFiles(ctx context.Context, user string, paths []string) (ScanResult, error) {
	readers := make([]io.Reader, len(paths))
	for i, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return ScanResult{}, fmt.Errorf("open statement %s: %w", path, err)
		}
		defer f.Close()
		readers[i] = f
	}
	return s.Scan(ctx, user, readers)
}

// Scan parses one statement per reader, each reader covering one period in
// chronological order, then detects recurring and one-time charges.
func (s *ScanService) Scan(ctx context.Context, user string, readers []io.Reader) (ScanResult, error) {
	userID, err := s.storage.EnsureUser(ctx, user)
	if err != nil {
		return ScanResult{}, fmt.Errorf("resolve user: %w", err)
	}

	// Parse statements concurrently, keeping period order by index.
	periods := make([][]ledger.Transaction, len(readers))
	var g errgroup.Group
	for i, r := range readers {
		i, r := i, r
		g.Go(func() error {
			txs, err := statement.Parse(r)
			if err != nil {
				return fmt.Errorf("parse statement %d: %w", i+1, err)
			}
			periods[i] = txs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ScanResult{}, err
	}

	candidates, matched := recurring.Detect(periods, s.tolerance, s.dayWindow)
	oneTimes := recurring.OneTimes(periods, matched)

	result := ScanResult{
		RunID:     uuid.New().String(),
		Periods:   len(periods),
		Recurring: candidates,
		OneTimes:  oneTimes,
	}

	for _, c := range candidates {
		if err := s.storage.UpsertRecurring(ctx, userID, c); err != nil {
			return ScanResult{}, fmt.Errorf("persist recurring charge: %w", err)
		}
	}
	for _, c := range oneTimes {
		inserted, err := s.storage.InsertOneTime(ctx, userID, c)
		if err != nil {
			return ScanResult{}, fmt.Errorf("persist one-time charge: %w", err)
		}
		if inserted {
			result.NewOneTimes++
		}
	}

	run := storage.ScanRun{
		ID:           result.RunID,
		Periods:      result.Periods,
		RecurringNew: len(result.Recurring),
		OneTimeNew:   result.NewOneTimes,
	}
	if err := s.storage.RecordScanRun(ctx, userID, run); err != nil {
		return ScanResult{}, fmt.Errorf("record scan run: %w", err)
	}

	if err := s.publishScanEvent(ctx, user, result); err != nil {
		slog.ErrorContext(ctx, "Failed to publish scan event",
			"run_id", result.RunID, "error", err)
		// Don't fail the scan - results are saved locally
	}

	slog.InfoContext(ctx, "Statement scan completed",
		"run_id", result.RunID,
		"user", user,
		"periods", result.Periods,
		"recurring", len(result.Recurring),
		"one_time_new", result.NewOneTimes)

	return result, nil
}

func (s *ScanService) publishScanEvent(ctx context.Context, user string, result ScanResult) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping scan event")
		return nil
	}

	msg := amqp.NewScanEventMessage(result.RunID, user, result.Periods, len(result.Recurring), result.NewOneTimes)
	return s.amqpClient.PublishScanEvent(ctx, msg)
}
