// Package report emits the periodic usage report: daily token totals,
// the budget zone, and the latest trim statistics.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/katamari-chat/katamari/internal/metrics"
	"github.com/katamari-chat/katamari/internal/usage"
)

// Scheduler runs the usage report on a cron schedule.
type Scheduler struct {
	spec     string
	cron     *robfigcron.Cron
	store    *usage.Store
	governor *usage.Governor
	metrics  *metrics.Registry
	log      *slog.Logger
}

// NewScheduler builds a Scheduler for spec, a standard 5-field cron
// expression or @descriptor such as "@hourly". A nil log uses slog's
// default logger.
func NewScheduler(
	spec string,
	store *usage.Store,
	governor *usage.Governor,
	metricsReg *metrics.Registry,
	log *slog.Logger,
) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		spec:     spec,
		cron:     robfigcron.New(),
		store:    store,
		governor: governor,
		metrics:  metricsReg,
		log:      log,
	}
}

// Start arms the schedule and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() { s.Emit(ctx) })
	if err != nil {
		return fmt.Errorf("report: invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("report: scheduled", "spec", s.spec)

	<-ctx.Done()

	<-s.cron.Stop().Done()
	return ctx.Err()
}

// Emit writes one usage report record. It is also called directly by the
// status command.
func (s *Scheduler) Emit(ctx context.Context) {
	today := time.Now().Format("2006-01-02")
	total, err := s.store.DailyTotal(ctx, today)
	if err != nil {
		s.log.Warn("report: usage total failed", "err", err)
		return
	}
	zone, err := s.governor.ZoneToday(ctx)
	if err != nil {
		s.log.Warn("report: zone lookup failed", "err", err)
		return
	}

	ratio, retention := s.metrics.Snapshot()
	attrs := []any{
		"date", today,
		"tokens", total,
		"zone", zone.String(),
		"compress_ratio", ratio,
	}
	if retention != nil {
		attrs = append(attrs, "semantic_retention", *retention)
	}
	s.log.Info("usage report", attrs...)
}
