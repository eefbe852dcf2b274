package fitstats

import (
	"context"
	"fmt"
	"time"

	"github.com/fittrack/backend/internal/telemetry/metrics"
	"github.com/fittrack/backend/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// DailyResetSweeper zeroes every user's cumulative totals once per
// calendar day, anchored to a fixed timezone. The trigger is
// at-least-once (process restarts re-run it, Start sweeps immediately
// on boot), the lastResetDate check on each record is what makes the
// reset itself at-most-once per day.
type DailyResetSweeper struct {
	store    Store
	location *time.Location
	metrics  *metrics.Manager

	// injectable for unit and dev testing
	NowFunc func() time.Time
}

func NewDailyResetSweeper(
	store Store,
	location *time.Location,
	metricsManager *metrics.Manager,
) *DailyResetSweeper {
	return &DailyResetSweeper{
		store:    store,
		location: location,
		metrics:  metricsManager,
		NowFunc:  time.Now,
	}
}

// Start blocks until ctx is cancelled, running one sweep immediately
// (self-heals a boundary missed while the process was down) and then
// one at every local midnight.
func (s *DailyResetSweeper) Start(ctx context.Context) {
	log.Debugf("daily reset sweeper started, timezone: %s", s.location)

	if err := s.RunOnce(ctx); err != nil {
		log.Errorf("daily reset sweep: %s", err)
	}

	for {
		timer := time.NewTimer(time.Until(s.nextMidnight()))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Debugln("daily reset sweeper stopped")
			return
		case <-timer.C:
			if err := s.RunOnce(ctx); err != nil {
				log.Errorf("daily reset sweep: %s", err)
			}
		}
	}
}

// RunOnce performs one full sweep over all user records. Records whose
// lastResetDate is already today are left untouched, so re-running on
// the same day is a no-op. A failure on one user's record is logged
// and skipped, the sweep goes on; the record self-heals on the next
// trigger through the same lastResetDate check. Updates are per-user
// writes on purpose: no all-or-nothing batch is needed.
func (s *DailyResetSweeper) RunOnce(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sweeper.fitstats.runonce")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := s.NowFunc()
	today := s.today()

	records, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list user records: %w", err)
	}

	var resetCount int
	for _, record := range records {
		if sameCalendarDay(record.LastResetDate, today, s.location) {
			continue
		}

		if err := s.store.ResetTotals(ctx, record.UserID, today); err != nil {
			log.Errorf("daily reset sweep, reset user %s: %s", record.UserID, err)
			s.metrics.CounterResetFailures.Inc()
			continue
		}

		resetCount++
		s.metrics.CounterResetUsers.Inc()
	}

	s.metrics.CounterResetSweeps.Inc()
	s.metrics.HistResetSweepDuration.Observe(time.Since(start).Seconds())

	log.Infof(
		"daily reset sweep done: %d of %d user records zeroed for %s",
		resetCount, len(records), today.Format("2006-01-02"),
	)
	return nil
}

// today returns the current calendar date in the sweep timezone,
// truncated to midnight.
func (s *DailyResetSweeper) today() time.Time {
	now := s.NowFunc().In(s.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location)
}

func (s *DailyResetSweeper) nextMidnight() time.Time {
	return s.today().AddDate(0, 0, 1)
}

func sameCalendarDay(a, b time.Time, loc *time.Location) bool {
	aYear, aMonth, aDay := a.In(loc).Date()
	bYear, bMonth, bDay := b.In(loc).Date()
	return aYear == bYear && aMonth == bMonth && aDay == bDay
}
