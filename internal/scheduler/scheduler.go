package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Daily fires a job once per day at a fixed wall-clock time in a target
// timezone.
type Daily struct {
	hour   int
	minute int
	loc    *time.Location
	logger *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewDaily(hour, minute int, loc *time.Location, logger *zap.Logger) *Daily {
	return &Daily{
		hour:   hour,
		minute: minute,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// Run blocks, invoking fn at the configured time every day until ctx is
// cancelled. A panicking job is logged and must not prevent the next day's
// fire.
func (d *Daily) Run(ctx context.Context, fn func(context.Context)) {
	for {
		next := d.nextRun(d.now().In(d.loc))
		d.logger.Info("next scheduled check", zap.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		d.fire(ctx, fn)
	}
}

func (d *Daily) fire(ctx context.Context, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("scheduled job panicked", zap.Any("panic", r))
		}
	}()
	fn(ctx)
}

// nextRun returns the next instant matching hour:minute in the target zone,
// strictly after now.
func (d *Daily) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), d.hour, d.minute, 0, 0, d.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
