package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/salesops/kpi-backend-go/internal/domain/auth"
	"github.com/salesops/kpi-backend-go/internal/handler/http/middleware"
	"github.com/salesops/kpi-backend-go/internal/handler/http/response"
	"github.com/salesops/kpi-backend-go/internal/pkg/jwt"
	"github.com/salesops/kpi-backend-go/internal/pkg/metrics"
)

type RouterOptions struct {
	Env            string
	Version        string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(JWTService jwt.Service, authHandler AuthHandler, kpiHandler KPIHandler, dashboardHandler DashboardHandler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "kpi-backend"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "route not found")
	})

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
		})

		r.Route("/kpi", func(r chi.Router) {
			// EventSource cannot set headers, so the stream also accepts ?jwt=
			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromCookie, jwtauth.TokenFromQuery))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
				r.With(middleware.RequirePermission(auth.PermissionReportView)).Get("/events", kpiHandler.Events)
			})

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

				r.With(middleware.RequirePermission(auth.PermissionReportRun)).Post("/runs", kpiHandler.Run)

				r.Route("/reports/latest", func(r chi.Router) {
					r.Use(middleware.RequirePermission(auth.PermissionReportView))
					r.Get("/", kpiHandler.GetLatest)
					r.Get("/combined", kpiHandler.GetCombined)
					r.Get("/tables/{designation}", kpiHandler.GetTable)
					r.With(middleware.RequirePermission(auth.PermissionReportDownload)).Get("/download", kpiHandler.Download)
				})
			})
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequirePermission(auth.PermissionReportView))

			r.Get("/", dashboardHandler.GetDashboard)
			r.Get("/filters", dashboardHandler.GetFilterOptions)
			r.With(middleware.RequirePermission(auth.PermissionReportDownload)).Get("/export", dashboardHandler.Export)
			r.With(middleware.RequirePermission(auth.PermissionWorkbookUpload)).Post("/upload", dashboardHandler.UploadWorkbook)
		})
	})
	return r
}
