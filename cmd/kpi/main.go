package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/salesops/kpi-backend-go/internal/config"
	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/pkg/database"
	"github.com/salesops/kpi-backend-go/internal/pkg/metrics"
	"github.com/salesops/kpi-backend-go/internal/pkg/spreadsheet"
	"github.com/salesops/kpi-backend-go/internal/pkg/storage"
	"github.com/salesops/kpi-backend-go/internal/repository/postgresql"
	kpiService "github.com/salesops/kpi-backend-go/internal/service/kpi"
)

// kpi runs one report generation and exits. Without -month and -year the
// reporting period follows the day the command runs.
func main() {
	month := flag.Int("month", 0, "report month (1-12), requires -year")
	year := flag.Int("year", 0, "report year, requires -month")
	pushURL := flag.String("push-url", "", "Pushgateway URL, overrides METRICS_PUSH_URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, kpi.RunRequest{Month: *month, Year: *year}); err != nil {
		slog.Error("KPI run failed", "error", err)
		push(cfg, *pushURL)
		os.Exit(1)
	}
	push(cfg, *pushURL)
}

func run(ctx context.Context, cfg *config.Config, req kpi.RunRequest) error {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:         cfg.Database.MaxConns,
		StatementTimeout: cfg.Database.StatementTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	targets, err := storage.NewTargets(cfg.Storage, cfg.SFTP, path.Join(cfg.Storage.RemoteDir, cfg.KPI.Affiliate))
	if err != nil {
		return err
	}

	var hierarchy kpi.HierarchySource
	if cfg.KPI.HierarchyFile != "" {
		hierarchy = spreadsheet.NewHierarchyFile(cfg.KPI.HierarchyFile)
	}

	svc := kpiService.NewKPIService(postgresql.NewKPISourceRepository(db), hierarchy, targets, kpiService.Options{
		Divisions:       cfg.KPI.Divisions,
		CompanyCode:     cfg.KPI.CompanyCode,
		CallDayActivity: cfg.KPI.CallDayActivity,
		BoundaryRule:    kpiService.ParseBoundaryRule(cfg.KPI.BoundaryRule),
		Location:        cfg.Location(),
	})

	summary, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	slog.Info("KPI report written",
		"run_id", summary.RunID,
		"period_start", summary.PeriodStart,
		"period_end", summary.PeriodEnd,
		"export_path", summary.ExportPath,
		"row_counts", summary.RowCounts,
	)
	return nil
}

func push(cfg *config.Config, override string) {
	url := cfg.Metrics.PushURL
	if override != "" {
		url = override
	}
	if url == "" {
		return
	}
	if err := metrics.Push(context.Background(), url, cfg.Metrics.Job); err != nil {
		slog.Warn("Failed to push metrics", "error", err)
	}
}
