package workers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stratus-tools/bug-advisor/internal/services"
)

// StatsRebuilder periodically re-derives recent daily aggregates from
// the query log. The per-insert recompute already keeps stats fresh;
// this sweep repairs days whose recompute failed (stats are a cache,
// the log is the source of truth).
type StatsRebuilder struct {
	Stats  services.StatsService
	Logger *logrus.Logger

	Interval time.Duration
	// WindowDays is how many trailing days each sweep recomputes.
	WindowDays int
}

func (w *StatsRebuilder) Start(ctx context.Context) error {
	if w.Stats == nil {
		return errors.New("StatsRebuilder missing dependency: Stats must be set")
	}
	if w.Interval <= 0 {
		w.Interval = time.Hour
	}
	if w.WindowDays <= 0 {
		w.WindowDays = 2
	}
	if w.Logger == nil {
		w.Logger = logrus.New()
	}

	go w.run(ctx)
	return nil
}

func (w *StatsRebuilder) run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *StatsRebuilder) sweep(ctx context.Context) {
	today := services.DayOf(time.Now())
	for i := 0; i < w.WindowDays; i++ {
		day := today.AddDate(0, 0, -i)
		if err := w.Stats.RecomputeDay(ctx, day); err != nil {
			w.Logger.WithError(err).
				WithField("date", day.Format("2006-01-02")).
				Warn("stats sweep recompute failed")
		}
	}
}
