package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocketbook/internal/export"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/render"
	httpreport "github.com/MrJamesThe3rd/pocketbook/internal/http/report"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/request"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
)

// Handler serves a financial report rendered as a downloadable statement.
type Handler struct {
	reports  *report.Service
	exporter *export.TextExporter
	now      httpreport.Clock
}

func NewHandler(reports *report.Service, exporter *export.TextExporter, now httpreport.Clock) *Handler {
	return &Handler{reports: reports, exporter: exporter, now: now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.statement)
}

func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	params, err := httpreport.ParseParams(r, h.now())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	rep, err := h.reports.Report(r.Context(), ownerID, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	// Render fully before writing headers so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := h.exporter.Export(&buf, rep); err != nil {
		render.Error(w, r, fmt.Errorf("rendering statement: %w", err))
		return
	}

	w.Header().Set("Content-Type", h.exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exporter.Filename(rep)))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write statement", "error", err)
	}
}
