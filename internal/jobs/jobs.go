package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"morak/internal/security"
)

// Schedules for the background jobs
const (
	TokenPurgeSchedule   = "@hourly"
	LimiterSweepSchedule = "*/10 * * * *"
)

const jobTimeout = 30 * time.Second

// TokenCleaner removes refresh tokens that are past their expiry
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// VisitorSweeper forgets rate limiter entries that have been idle
type VisitorSweeper interface {
	Cleanup(now time.Time) int
}

// Scheduler owns the cron runner for the server's periodic jobs
type Scheduler struct {
	cron    *cron.Cron
	tokens  TokenCleaner
	limiter VisitorSweeper
	logger  *zap.Logger
}

// NewScheduler registers the periodic jobs. A nil limiter skips the sweep job.
func NewScheduler(tokens TokenCleaner, limiter *security.RateLimiter, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		tokens: tokens,
		logger: logger,
	}
	if limiter != nil {
		s.limiter = limiter
	}

	if _, err := s.cron.AddFunc(TokenPurgeSchedule, s.PurgeExpiredTokens); err != nil {
		return nil, err
	}
	if s.limiter != nil {
		if _, err := s.cron.AddFunc(LimiterSweepSchedule, s.SweepVisitors); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("background jobs started",
		zap.Int("jobs", len(s.cron.Entries())),
		zap.String("token_purge", TokenPurgeSchedule))
}

// Stop prevents new runs and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("background jobs did not stop in time")
	}
}

// PurgeExpiredTokens deletes expired refresh tokens
func (s *Scheduler) PurgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	removed, err := s.tokens.CleanupExpiredTokens(ctx)
	if err != nil {
		s.logger.Error("failed to purge expired refresh tokens", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("purged expired refresh tokens", zap.Int64("removed", removed))
	}
}

// SweepVisitors drops idle rate limiter entries
func (s *Scheduler) SweepVisitors() {
	if s.limiter == nil {
		return
	}
	if n := s.limiter.Cleanup(time.Now()); n > 0 {
		s.logger.Debug("swept idle rate limiter entries", zap.Int("removed", n))
	}
}
