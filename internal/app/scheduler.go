package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
)

// cronParser accepts standard 5-field expressions and descriptors like @daily.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSchedule checks a cron expression.
func ValidateSchedule(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression '%s': %w", expr, err)
	}
	return nil
}

// Scheduler runs a preset scan on a cron schedule. Each run is recorded in
// scan history by the screener service.
type Scheduler struct {
	cron    *cron.Cron
	service interfaces.ScreenerService
	preset  string
	logger  *common.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	runs    chan struct{} // signalled after each run; nil unless set by tests
}

// NewScheduler creates a scheduler for preset. Overlapping runs are skipped.
func NewScheduler(service interfaces.ScreenerService, preset string, logger *common.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		service: service,
		preset:  preset,
		logger:  logger,
	}
}

// Start registers expr and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context, expr string) error {
	if err := ValidateSchedule(expr); err != nil {
		return err
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	if _, err := s.cron.AddFunc(expr, s.RunOnce); err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule scan: %w", err)
	}

	s.cron.Start()

	next := time.Time{}
	if entries := s.cron.Entries(); len(entries) > 0 {
		next = entries[0].Next
	}
	s.logger.Info().
		Str("schedule", expr).
		Str("preset", s.preset).
		Str("next", next.Format(time.RFC3339)).
		Msg("Scan scheduler started")
	return nil
}

// Stop cancels any running scan and waits for the cron loop to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scan scheduler stopped")
}

// RunOnce performs one scheduled scan. Its correlation id is carried on the
// context so the scan's own lines share it.
func (s *Scheduler) RunOnce() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	logger := s.logger.WithCorrelationId(uuid.NewString())
	ctx = common.WithLogger(ctx, logger)
	start := time.Now()

	record, err := s.service.Scan(ctx, interfaces.ScanOptions{Preset: s.preset})
	if err != nil {
		logger.Warn().Str("preset", s.preset).Err(err).Msg("Scheduled scan failed")
	} else {
		logger.Info().
			Str("preset", s.preset).
			Str("id", record.ID).
			Int("results", len(record.Results)).
			Dur("elapsed", time.Since(start)).
			Msg("Scheduled scan complete")
	}

	if s.runs != nil {
		select {
		case s.runs <- struct{}{}:
		default:
		}
	}
}
