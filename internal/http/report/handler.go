package report

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/render"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/request"
	"github.com/MrJamesThe3rd/pocketbook/internal/report"
)

// Clock reports the current time in the timezone that decides "today".
type Clock func() time.Time

// InLocation returns a Clock that reads the wall clock in loc.
func InLocation(loc *time.Location) Clock {
	return func() time.Time {
		return time.Now().In(loc)
	}
}

type Handler struct {
	svc *report.Service
	now Clock
}

func NewHandler(svc *report.Service, now Clock) *Handler {
	return &Handler{svc: svc, now: now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.report)
	r.Get("/monthly", h.monthly)
}

func (h *Handler) DashboardRoutes(r chi.Router) {
	r.Get("/", h.dashboard)
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	today := h.now()
	year, month := today.Year(), today.Month()
	q := r.URL.Query()

	if s := q.Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			render.Error(w, r, apperr.Validation("year", "must be a number, got %q", s))
			return
		}

		year = y
	}

	if s := q.Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil {
			render.Error(w, r, apperr.Validation("month", "must be a number, got %q", s))
			return
		}

		month = time.Month(m)
	}

	summary, err := h.svc.MonthlySummary(r.Context(), ownerID, year, month)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toMonthlySummary(summary))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	d, err := h.svc.Dashboard(r.Context(), ownerID, h.now())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toDashboard(d))
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	params, err := ParseParams(r, h.now())
	if err != nil {
		render.Error(w, r, err)
		return
	}

	rep, err := h.svc.Report(r.Context(), ownerID, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toFinancialReport(rep))
}

// ParseParams reads either ?preset= or ?start_date=&end_date=[&period_type=].
func ParseParams(r *http.Request, now time.Time) (report.ReportParams, error) {
	q := r.URL.Query()

	if preset := q.Get("preset"); preset != "" {
		return report.Preset(preset, now)
	}

	start, err := request.ParseDate("start_date", q.Get("start_date"))
	if err != nil {
		return report.ReportParams{}, err
	}

	end, err := request.ParseDate("end_date", q.Get("end_date"))
	if err != nil {
		return report.ReportParams{}, err
	}

	return report.ReportParams{
		Start:      start,
		End:        end,
		PeriodType: report.ParsePeriodType(q.Get("period_type")),
	}, nil
}
