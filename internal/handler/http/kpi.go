package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/salesops/kpi-backend-go/internal/domain/kpi"
	"github.com/salesops/kpi-backend-go/internal/handler/http/response"
	"github.com/salesops/kpi-backend-go/internal/pkg/spreadsheet"
	"github.com/salesops/kpi-backend-go/internal/pkg/sse"
)

type KPIHandler interface {
	// Run triggers a KPI run
	Run(w http.ResponseWriter, r *http.Request)
	// GetLatest returns the latest report metadata
	GetLatest(w http.ResponseWriter, r *http.Request)
	// GetTable returns one designation table of the latest report
	GetTable(w http.ResponseWriter, r *http.Request)
	// GetCombined returns the enriched combined table
	GetCombined(w http.ResponseWriter, r *http.Request)
	// Download streams the latest exported workbook
	Download(w http.ResponseWriter, r *http.Request)
	// Events streams run lifecycle events over SSE
	Events(w http.ResponseWriter, r *http.Request)
}

type kpiHandlerImpl struct {
	kpiService kpi.KPIService
	events     *sse.Hub
	keepalive  time.Duration
}

func NewKPIHandler(kpiService kpi.KPIService, events *sse.Hub) KPIHandler {
	return &kpiHandlerImpl{kpiService: kpiService, events: events, keepalive: 30 * time.Second}
}

// Run handles POST /kpi/runs. An empty body selects the current reporting period.
func (h *kpiHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	var req kpi.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	summary, err := h.kpiService.Run(r.Context(), req)
	if err != nil {
		slog.Error("KPI run failed", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "KPI report generated", summary)
}

// GetLatest handles GET /kpi/reports/latest
func (h *kpiHandlerImpl) GetLatest(w http.ResponseWriter, r *http.Request) {
	report, err := h.kpiService.Latest(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, kpi.NewReportResponse(report))
}

// GetTable handles GET /kpi/reports/latest/tables/{designation}
func (h *kpiHandlerImpl) GetTable(w http.ResponseWriter, r *http.Request) {
	req := kpi.TableRequest{Designation: chi.URLParam(r, "designation")}

	table, err := h.kpiService.GetTable(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := kpi.NewTableResponse(table)
	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: int64(len(result.Rows))})
}

// GetCombined handles GET /kpi/reports/latest/combined
func (h *kpiHandlerImpl) GetCombined(w http.ResponseWriter, r *http.Request) {
	report, err := h.kpiService.Latest(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := kpi.NewTableResponse(report.Combined)
	response.SuccessWithMeta(w, result, &response.Meta{
		RunID:      report.RunID,
		TotalItems: int64(len(result.Rows)),
	})
}

// Download handles GET /kpi/reports/latest/download
func (h *kpiHandlerImpl) Download(w http.ResponseWriter, r *http.Request) {
	rc, name, err := h.kpiService.DownloadLatest(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer rc.Close()

	response.Attachment(w, name, spreadsheet.ContentType, rc)
}

// Events handles GET /kpi/events
func (h *kpiHandlerImpl) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.events.Subscribe()
	defer cleanup()

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Warn("Failed to encode run event", "event", event.Name, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
