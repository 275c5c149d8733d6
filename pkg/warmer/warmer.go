// Package warmer refreshes the gateway snapshots on a cron schedule so page
// loads are served from fresh entries.
package warmer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/augustcaio/portfolio-gateway/pkg/gateway"
	"github.com/augustcaio/portfolio-gateway/pkg/logging"
	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// Refresher drops and re-reads each snapshot kind
type Refresher interface {
	RefreshProfile(ctx context.Context) gateway.Result[types.UserProfile]
	RefreshRepositories(ctx context.Context, limit int) gateway.Result[[]types.Repository]
	RefreshStats(ctx context.Context) gateway.Result[types.AggregateStats]
}

// DefaultRunTimeout bounds one warm-up run
const DefaultRunTimeout = 30 * time.Second

// Warmer runs Refresh for every snapshot kind on a schedule
type Warmer struct {
	cron     *cron.Cron
	target   Refresher
	limit    int
	schedule string
	logger   *slog.Logger
}

// ValidateSchedule checks a cron expression; descriptors such as
// "@every 4m" and "@hourly" are accepted. An empty schedule is valid.
func ValidateSchedule(schedule string) error {
	if schedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}
	return nil
}

// New creates a warmer. It returns nil when schedule is empty.
func New(schedule string, target Refresher, limit int, logger *slog.Logger) (*Warmer, error) {
	if schedule == "" {
		return nil, nil
	}
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("component", "warmer")

	w := &Warmer{
		target:   target,
		limit:    limit,
		schedule: schedule,
		logger:   logger,
	}

	cl := cronLogger{logger}
	w.cron = cron.New(cron.WithLogger(cl), cron.WithChain(
		cron.Recover(cl),
		cron.SkipIfStillRunning(cl),
	))

	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start runs the schedule in the background
func (w *Warmer) Start() {
	if w == nil {
		return
	}
	w.logger.Info("cache warmer started", "schedule", w.schedule)
	w.cron.Start()
}

// Stop halts the schedule and waits for a running warm-up until ctx is done
func (w *Warmer) Stop(ctx context.Context) {
	if w == nil {
		return
	}
	select {
	case <-w.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Warm refreshes every snapshot kind once and returns the outcome per key
func (w *Warmer) Warm(ctx context.Context) map[string]types.Outcome {
	start := time.Now()
	out := map[string]types.Outcome{
		gateway.KeyProfile:           w.target.RefreshProfile(ctx).Outcome,
		gateway.KeyProjects(w.limit): w.target.RefreshRepositories(ctx, w.limit).Outcome,
		gateway.KeyStats:             w.target.RefreshStats(ctx).Outcome,
	}

	attrs := []any{"duration_ms", time.Since(start).Milliseconds()}
	for key, outcome := range out {
		attrs = append(attrs, key, outcome)
	}
	w.logger.Info("cache warmed", attrs...)
	return out
}

func (w *Warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultRunTimeout)
	defer cancel()
	w.Warm(ctx)
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
