package kpi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/pkg/metrics"
	"github.com/salesops/kpi-backend-go/internal/pkg/spreadsheet"
	"github.com/salesops/kpi-backend-go/internal/pkg/sse"
	"github.com/salesops/kpi-backend-go/internal/pkg/storage"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Options configure the KPI service
type Options struct {
	Divisions       []string
	CompanyCode     string
	CallDayActivity string
	BoundaryRule    BoundaryRule
	// Location decides which calendar day "today" is
	Location *time.Location
	// Now is replaced in tests
	Now func() time.Time
	// Events receives run lifecycle events; nil disables them
	Events *sse.Hub
}

var _ kpi.KPIService = (*KPIServiceImpl)(nil)

type KPIServiceImpl struct {
	source    kpi.SourceRepository
	hierarchy kpi.HierarchySource
	// targets[0] is the primary target that downloads are served from
	targets []storage.Target
	opts    Options

	group   singleflight.Group
	running atomic.Bool

	mu     sync.RWMutex
	latest *kpi.Report
}

func NewKPIService(
	source kpi.SourceRepository,
	hierarchy kpi.HierarchySource,
	targets []storage.Target,
	opts Options,
) *KPIServiceImpl {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &KPIServiceImpl{
		source:    source,
		hierarchy: hierarchy,
		targets:   targets,
		opts:      opts,
	}
}

// Run generates the report of the requested month. Concurrent requests for the
// same period share one execution; a different period is rejected while a run is active.
func (s *KPIServiceImpl) Run(ctx context.Context, req kpi.RunRequest) (kpi.RunSummary, error) {
	if err := req.Validate(); err != nil {
		return kpi.RunSummary{}, err
	}

	today := s.opts.Now().In(s.opts.Location)
	period := req.Period(time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC))

	v, err, shared := s.group.Do(period.String(), func() (any, error) {
		if !s.running.CompareAndSwap(false, true) {
			return kpi.RunSummary{}, kpi.ErrRunInProgress
		}
		defer s.running.Store(false)

		// a caller leaving must not abort the run the others are waiting on
		return s.run(context.WithoutCancel(ctx), period)
	})
	if shared {
		slog.Info("KPI run request joined an active run", "period", period.String())
	}
	if err != nil {
		return kpi.RunSummary{}, err
	}
	return v.(kpi.RunSummary), nil
}

func (s *KPIServiceImpl) run(ctx context.Context, period kpi.Period) (summary kpi.RunSummary, err error) {
	runID := uuid.NewString()
	started := s.opts.Now()
	log := slog.With("run_id", runID, "period", period.String())
	log.Info("KPI run started")

	event := kpi.RunEvent{RunID: runID, PeriodStart: period.Start.Format("2006-01-02"), PeriodEnd: period.End.Format("2006-01-02")}
	s.opts.Events.Publish(sse.Event{Name: kpi.EventRunStarted, Data: event})

	defer func() {
		metrics.RunDurationSeconds.Observe(time.Since(started).Seconds())
		if err != nil {
			metrics.RunsTotal.WithLabelValues("failure").Inc()
			log.Error("KPI run failed", "error", err)
			event.Error = err.Error()
			s.opts.Events.Publish(sse.Event{Name: kpi.EventRunFailed, Data: event})
			return
		}
		metrics.RunsTotal.WithLabelValues("success").Inc()
		metrics.LastSuccessTimestamp.SetToCurrentTime()
		event.Summary = &summary
		s.opts.Events.Publish(sse.Event{Name: kpi.EventRunCompleted, Data: event})
	}()

	stage := time.Now()
	extract, err := s.source.Extract(ctx, kpi.SourceFilter{
		Divisions:   s.opts.Divisions,
		CompanyCode: s.opts.CompanyCode,
		Period:      period,
	})
	if err != nil {
		return kpi.RunSummary{}, err
	}
	if s.hierarchy != nil {
		links, err := s.hierarchy.LoadHierarchy(ctx)
		if err != nil {
			// ABM, ZBM and NSM stay empty
			log.Warn("Hierarchy unavailable", "error", err)
		}
		extract.Hierarchy = links
	}
	metrics.StageDurationSeconds.WithLabelValues("extract").Observe(time.Since(stage).Seconds())
	recordSourceSizes(extract)

	stage = time.Now()
	result := Compute(extract, period, ComputeOptions{
		CallDayActivity: s.opts.CallDayActivity,
		BoundaryRule:    s.opts.BoundaryRule,
	})
	metrics.StageDurationSeconds.WithLabelValues("compute").Observe(time.Since(stage).Seconds())
	if result.Clamped > 0 {
		metrics.ClampedCountsTotal.Add(float64(result.Clamped))
		log.Warn("Coverage counts exceeded assigned totals and were clamped", "count", result.Clamped)
	}

	generatedAt := s.opts.Now().In(s.opts.Location)

	stage = time.Now()
	buf, err := RenderWorkbook(result.Tables, result.Combined)
	if err != nil {
		return kpi.RunSummary{}, err
	}
	exportPath, err := s.upload(ctx, ExportFileName(generatedAt), buf.Bytes())
	if err != nil {
		return kpi.RunSummary{}, err
	}
	metrics.StageDurationSeconds.WithLabelValues("export").Observe(time.Since(stage).Seconds())

	report := kpi.Report{
		RunID:       runID,
		Period:      period,
		GeneratedAt: generatedAt,
		Tables:      result.Tables,
		Combined:    result.Combined,
		ExportPath:  exportPath,
	}
	s.publish(report)

	summary = Summarize(report, time.Since(started))
	log.Info("KPI run completed", "duration_ms", summary.DurationMS, "rows", summary.RowCounts, "export", exportPath)
	return summary, nil
}

// upload writes the workbook to every target. Only a primary failure fails the run.
func (s *KPIServiceImpl) upload(ctx context.Context, name string, data []byte) (string, error) {
	if len(s.targets) == 0 {
		return "", nil
	}

	paths := make([]string, len(s.targets))
	var g errgroup.Group
	for i, t := range s.targets {
		i, t := i, t
		g.Go(func() error {
			p, err := t.Storage.Upload(ctx, bytes.NewReader(data), path.Join(t.Dir, name), spreadsheet.ContentType)
			if err != nil {
				metrics.ExportUploadsTotal.WithLabelValues(t.Name, "failure").Inc()
				if i == 0 {
					return fmt.Errorf("%w: %s: %w", kpi.ErrExportFailed, t.Name, err)
				}
				slog.Warn("Secondary export target failed", "target", t.Name, "error", err)
				return nil
			}
			metrics.ExportUploadsTotal.WithLabelValues(t.Name, "success").Inc()
			paths[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return paths[0], nil
}

func (s *KPIServiceImpl) publish(r kpi.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &r

	metrics.RowsByDesignation.Reset()
	for _, t := range r.Tables {
		metrics.RowsByDesignation.WithLabelValues(t.Name).Set(float64(len(t.Rows)))
	}
	metrics.RowsByDesignation.WithLabelValues(r.Combined.Name).Set(float64(len(r.Combined.Rows)))
}

// Latest implements kpi.KPIService
func (s *KPIServiceImpl) Latest(ctx context.Context) (kpi.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return kpi.Report{}, kpi.ErrNoReportAvailable
	}
	return *s.latest, nil
}

// GetTable implements kpi.KPIService
func (s *KPIServiceImpl) GetTable(ctx context.Context, req kpi.TableRequest) (kpi.Table, error) {
	if err := req.Validate(); err != nil {
		return kpi.Table{}, err
	}

	report, err := s.Latest(ctx)
	if err != nil {
		return kpi.Table{}, err
	}

	t, ok := report.Table(kpi.Designation(req.Designation))
	if !ok {
		return kpi.Table{}, kpi.ErrInvalidDesignation
	}
	return t, nil
}

// DownloadLatest implements kpi.KPIService
func (s *KPIServiceImpl) DownloadLatest(ctx context.Context) (io.ReadCloser, string, error) {
	report, err := s.Latest(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(s.targets) == 0 || report.ExportPath == "" {
		return nil, "", kpi.ErrNoReportAvailable
	}

	rc, err := s.targets[0].Storage.Download(ctx, report.ExportPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open exported workbook: %w", err)
	}
	return rc, path.Base(report.ExportPath), nil
}

// Summarize builds the API summary of a published report
func Summarize(r kpi.Report, elapsed time.Duration) kpi.RunSummary {
	counts := make(map[string]int, len(r.Tables)+1)
	for _, t := range r.Tables {
		counts[t.Name] = len(t.Rows)
	}
	counts[r.Combined.Name] = len(r.Combined.Rows)

	return kpi.RunSummary{
		RunID:       r.RunID,
		PeriodStart: r.Period.Start.Format("2006-01-02"),
		PeriodEnd:   r.Period.End.Format("2006-01-02"),
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
		DurationMS:  elapsed.Milliseconds(),
		RowCounts:   counts,
		ExportPath:  r.ExportPath,
	}
}

func recordSourceSizes(ex kpi.Extract) {
	sizes := map[string]int{
		"daily_work":       len(ex.DailyWork),
		"holidays":         len(ex.Holidays),
		"employees":        len(ex.Employees),
		"visits":           len(ex.Visits),
		"leave_requests":   len(ex.LeaveRequests),
		"territory_states": len(ex.TerritoryStates),
		"assignments":      len(ex.Assignments),
		"activities":       len(ex.Activities),
		"hierarchy":        len(ex.Hierarchy),
	}
	metrics.SourceRecords.Reset()
	for source, n := range sizes {
		metrics.SourceRecords.WithLabelValues(source).Set(float64(n))
	}
}

// IsRunInProgress reports whether err means another run is active
func IsRunInProgress(err error) bool {
	return errors.Is(err, kpi.ErrRunInProgress)
}
