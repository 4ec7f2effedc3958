package scheduler

import (
	"context"
	"time"

	"coupon-day/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler runs the recurring background jobs: the hourly token expiry
// sweep and the monthly settlement batch.
type Scheduler struct {
	cron       *cron.Cron
	token      service.TokenService
	settlement service.SettlementService
	logger     zerolog.Logger
}

// New creates a scheduler with its jobs registered but not started.
func New(token service.TokenService, settlement service.SettlementService, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(),
		token:      token,
		settlement: settlement,
		logger:     logger.With().Str("component", "scheduler").Logger(),
	}

	// Hourly sweep keeps listings honest even when nobody touches a token.
	if _, err := s.cron.AddFunc("0 * * * *", s.expireTokens); err != nil {
		return nil, err
	}

	// Settle the previous month shortly after it closes.
	if _, err := s.cron.AddFunc("0 2 1 * *", s.runMonthlySettlements); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running the scheduled jobs.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("starting scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info().Msg("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) expireTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	expired, err := s.token.ExpireOverdue(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("token expiry sweep failed")
		return
	}
	if expired > 0 {
		s.logger.Info().Int64("expired", expired).Msg("token expiry sweep completed")
	}
}

func (s *Scheduler) runMonthlySettlements() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	previous := time.Now().AddDate(0, -1, 0)
	year, month := previous.Year(), previous.Month()

	results, err := s.settlement.RunMonthly(ctx, year, month)
	if err != nil {
		s.logger.Error().Err(err).Int("year", year).Str("month", month.String()).
			Msg("monthly settlement run failed")
		return
	}

	var failed int
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}
	s.logger.Info().
		Int("year", year).
		Str("month", month.String()).
		Int("partnerships", len(results)).
		Int("failed", failed).
		Msg("monthly settlement run completed")
}
