package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/pkg/metrics"
)

// KPIJobs keeps the published KPI report fresh
type KPIJobs struct {
	kpiService kpi.KPIService
	interval   time.Duration
	timeout    time.Duration
	pushURL    string
	pushJob    string
}

// NewKPIJobs creates KPI cron jobs. An empty pushURL disables the push gateway.
func NewKPIJobs(kpiService kpi.KPIService, interval, timeout time.Duration, pushURL, pushJob string) *KPIJobs {
	return &KPIJobs{
		kpiService: kpiService,
		interval:   interval,
		timeout:    timeout,
		pushURL:    pushURL,
		pushJob:    pushJob,
	}
}

// RegisterJobs registers all KPI-related cron jobs
func (j *KPIJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.Add(Job{
		Name:     "refresh_kpi_report",
		Interval: j.interval,
		Timeout:  j.timeout,
		Fn:       j.RefreshReport,
	})
}

// RefreshReport recomputes the current reporting period. A run already in
// progress for another period is not an error for the scheduler.
func (j *KPIJobs) RefreshReport(ctx context.Context) error {
	summary, err := j.kpiService.Run(ctx, kpi.RunRequest{})
	if err != nil {
		if errors.Is(err, kpi.ErrRunInProgress) {
			slog.Info("KPI refresh skipped, another run is in progress")
			return nil
		}
		return err
	}

	slog.Info("KPI report refreshed",
		"run_id", summary.RunID,
		"period_start", summary.PeriodStart,
		"period_end", summary.PeriodEnd,
		"duration_ms", summary.DurationMS,
	)

	if j.pushURL != "" {
		if err := metrics.Push(ctx, j.pushURL, j.pushJob); err != nil {
			slog.Warn("failed to push KPI metrics", "url", j.pushURL, "error", err)
		}
	}
	return nil
}
