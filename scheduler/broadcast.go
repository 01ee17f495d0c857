// Package scheduler runs the daily reminder broadcast at a fixed wall-clock
// time.
package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/puzzlebot/core/logger"
)

const schedComponent = "scheduler"

// UserSource lists the user IDs to notify.
type UserSource interface {
	AllIDs(ctx context.Context) ([]int64, error)
}

// Notifier delivers one message to one user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, text string) error
}

// Broadcaster wakes up once per day and fans the reminder out to all
// registered users with bounded concurrency.
type Broadcaster struct {
	cfg      Config
	loc      *time.Location
	users    UserSource
	notifier Notifier
	message  string

	// now is swapped in tests.
	now func() time.Time
}

// NewBroadcaster validates the schedule and builds the broadcaster.
func NewBroadcaster(cfg Config, users UserSource, notifier Notifier, message string) (*Broadcaster, error) {
	loc, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	return &Broadcaster{
		cfg:      cfg,
		loc:      loc,
		users:    users,
		notifier: notifier,
		message:  message,
		now:      time.Now,
	}, nil
}

// Run blocks until ctx is cancelled, firing the broadcast at the configured
// time each day. Meant to be started in its own goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	if !b.cfg.Enabled {
		logger.Info(ctx, schedComponent, "broadcast.disabled")
		return
	}

	logger.Info(ctx, schedComponent, "broadcast.scheduled",
		slog.Int("hour", b.cfg.Hour),
		slog.Int("minute", b.cfg.Minute),
		slog.String("timezone", b.loc.String()),
	)

	for {
		wait := b.untilNext()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info(ctx, schedComponent, "broadcast.stopped")
			return
		case <-timer.C:
		}
		_, _ = b.Broadcast(ctx)
	}
}

// untilNext returns the duration until the next scheduled wall-clock fire.
func (b *Broadcaster) untilNext() time.Duration {
	now := b.now().In(b.loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), b.cfg.Hour, b.cfg.Minute, 0, 0, b.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Broadcast sends the reminder to every registered user and logs a summary.
// It returns the total user count and how many deliveries succeeded.
func (b *Broadcaster) Broadcast(ctx context.Context) (int, int) {
	start := time.Now()

	ids, err := b.users.AllIDs(ctx)
	if err != nil {
		logger.Error(ctx, schedComponent, "broadcast.list_users",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return 0, 0
	}

	var notified atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := b.notifier.Notify(gctx, id, b.message); err != nil {
				logger.Warn(gctx, schedComponent, "broadcast.notify_failed",
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
				return nil
			}
			notified.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	logger.Info(ctx, schedComponent, "broadcast.done",
		slog.String("status", "ok"),
		slog.Int("users_total", len(ids)),
		slog.Int64("users_notified", notified.Load()),
		slog.Duration("duration", logger.Took(start)),
	)
	return len(ids), int(notified.Load())
}
