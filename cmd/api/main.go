package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/salesops/kpi-backend-go/internal/config"
	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	appHTTP "github.com/salesops/kpi-backend-go/internal/handler/http"
	"github.com/salesops/kpi-backend-go/internal/pkg/cron"
	"github.com/salesops/kpi-backend-go/internal/pkg/database"
	"github.com/salesops/kpi-backend-go/internal/pkg/jwt"
	"github.com/salesops/kpi-backend-go/internal/pkg/spreadsheet"
	"github.com/salesops/kpi-backend-go/internal/pkg/sse"
	"github.com/salesops/kpi-backend-go/internal/pkg/storage"
	"github.com/salesops/kpi-backend-go/internal/repository/postgresql"
	serviceAuth "github.com/salesops/kpi-backend-go/internal/service/auth"
	dashboardService "github.com/salesops/kpi-backend-go/internal/service/dashboard"
	kpiService "github.com/salesops/kpi-backend-go/internal/service/kpi"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns:         cfg.Database.MaxConns,
		StatementTimeout: cfg.Database.StatementTimeout,
	})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	targets, err := storage.NewTargets(cfg.Storage, cfg.SFTP, path.Join(cfg.Storage.RemoteDir, cfg.KPI.Affiliate))
	if err != nil {
		log.Fatal("Failed to initialize export storage: ", err)
	}

	sourceRepo := postgresql.NewKPISourceRepository(db)
	var hierarchy kpi.HierarchySource
	if cfg.KPI.HierarchyFile != "" {
		hierarchy = spreadsheet.NewHierarchyFile(cfg.KPI.HierarchyFile)
	}

	runEvents := sse.NewHub()
	kpiSvc := kpiService.NewKPIService(sourceRepo, hierarchy, targets, kpiService.Options{
		Divisions:       cfg.KPI.Divisions,
		CompanyCode:     cfg.KPI.CompanyCode,
		CallDayActivity: cfg.KPI.CallDayActivity,
		BoundaryRule:    kpiService.ParseBoundaryRule(cfg.KPI.BoundaryRule),
		Location:        cfg.Location(),
		Events:          runEvents,
	})

	users, err := serviceAuth.NewStaticUserStore(cfg.Dashboard.Users)
	if err != nil {
		log.Fatal("Invalid DASHBOARD_USERS: ", err)
	}
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	authService := serviceAuth.NewAuthService(users, JWTService)
	dashboardSvc := dashboardService.NewDashboardService(kpiSvc, dashboardService.Options{
		CallDayActivity: cfg.KPI.CallDayActivity,
	})

	authHandler := appHTTP.NewAuthHandler(JWTService, authService)
	kpiHandler := appHTTP.NewKPIHandler(kpiSvc, runEvents)
	dashboardHandler := appHTTP.NewDashboardHandler(dashboardSvc)

	router := appHTTP.NewRouter(JWTService, authHandler, kpiHandler, dashboardHandler, appHTTP.RouterOptions{
		Env:            cfg.App.Env,
		Version:        version,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	})

	scheduler := cron.NewScheduler()
	cron.NewKPIJobs(kpiSvc, cfg.KPI.RunInterval, cfg.KPI.RunInterval, cfg.Metrics.PushURL, cfg.Metrics.Job).
		RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", srv.Addr, "env", cfg.App.Env, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
