package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"morak/internal/security"
)

type fakeCleaner struct {
	removed int64
	err     error
	calls   int
}

func (f *fakeCleaner) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("job context has no deadline")
	}
	return f.removed, f.err
}

type fakeSweeper struct {
	removed int
	calls   int
}

func (f *fakeSweeper) Cleanup(time.Time) int {
	f.calls++
	return f.removed
}

func TestNewSchedulerRegistersJobs(t *testing.T) {
	var nilLimiter *security.RateLimiter

	tests := []struct {
		name    string
		limiter *security.RateLimiter
		want    int
	}{
		{"tokens only", nil, 1},
		{"typed nil limiter", nilLimiter, 1},
		{"tokens and limiter", security.NewRateLimiter(10), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScheduler(&fakeCleaner{}, tt.limiter, zap.NewNop())
			if err != nil {
				t.Fatalf("NewScheduler() error = %v", err)
			}
			if got := len(s.cron.Entries()); got != tt.want {
				t.Errorf("registered %d jobs, want %d", got, tt.want)
			}
		})
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	tests := []struct {
		name      string
		cleaner   *fakeCleaner
		wantLevel zapcore.Level
		wantLogs  int
	}{
		{"removes tokens", &fakeCleaner{removed: 3}, zapcore.InfoLevel, 1},
		{"nothing to remove", &fakeCleaner{}, zapcore.InfoLevel, 0},
		{"cleanup fails", &fakeCleaner{err: errors.New("db down")}, zapcore.ErrorLevel, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			s, err := NewScheduler(tt.cleaner, nil, zap.New(core))
			if err != nil {
				t.Fatalf("NewScheduler() error = %v", err)
			}

			s.PurgeExpiredTokens()

			if tt.cleaner.calls != 1 {
				t.Fatalf("cleaner called %d times, want 1", tt.cleaner.calls)
			}
			entries := logs.All()
			if len(entries) != tt.wantLogs {
				t.Fatalf("got %d log entries, want %d: %+v", len(entries), tt.wantLogs, entries)
			}
			if tt.wantLogs > 0 && entries[0].Level != tt.wantLevel {
				t.Errorf("log level = %v, want %v", entries[0].Level, tt.wantLevel)
			}
		})
	}
}

func TestSweepVisitors(t *testing.T) {
	s, err := NewScheduler(&fakeCleaner{}, security.NewRateLimiter(10), zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	sweeper := &fakeSweeper{removed: 2}
	s.limiter = sweeper

	s.SweepVisitors()
	if sweeper.calls != 1 {
		t.Errorf("sweeper called %d times, want 1", sweeper.calls)
	}
}

func TestSweepVisitorsWithoutLimiter(t *testing.T) {
	var nilLimiter *security.RateLimiter
	s, err := NewScheduler(&fakeCleaner{}, nilLimiter, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	s.SweepVisitors()
}

func TestStartStop(t *testing.T) {
	s, err := NewScheduler(&fakeCleaner{}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	if ctx.Err() != nil {
		t.Error("Stop() should return before the deadline when no job is running")
	}
}
