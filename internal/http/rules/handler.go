package rules

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/render"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/request"
	"github.com/MrJamesThe3rd/pocketbook/internal/rules"
)

type Handler struct {
	svc *rules.Service
}

func NewHandler(svc *rules.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.learn)
	r.Get("/suggest", h.suggest)
	r.Delete("/{id}", h.delete)
}

type ruleResponse struct {
	ID           uuid.UUID `json:"id"`
	Pattern      string    `json:"pattern"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	CreatedAt    time.Time `json:"created_at"`
}

func toResponse(rule *rules.Rule) ruleResponse {
	return ruleResponse{
		ID:           rule.ID,
		Pattern:      rule.Pattern,
		CategoryID:   rule.CategoryID,
		CategoryName: rule.CategoryName,
		CreatedAt:    rule.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	rs, err := h.svc.List(r.Context(), ownerID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]ruleResponse, len(rs))
	for i, rule := range rs {
		resp[i] = toResponse(rule)
	}

	render.JSON(w, http.StatusOK, resp)
}

type suggestResponse struct {
	Description string        `json:"description"`
	Rule        *ruleResponse `json:"rule"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	desc := r.URL.Query().Get("description")
	if desc == "" {
		render.Error(w, r, apperr.Validation("description", "query parameter is required"))
		return
	}

	rule, err := h.svc.Suggest(r.Context(), ownerID, desc)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := suggestResponse{Description: desc}
	if rule != nil {
		resp.Rule = new(toResponse(rule))
	}

	render.JSON(w, http.StatusOK, resp)
}

type learnRequest struct {
	Pattern    string    `json:"pattern"`
	CategoryID uuid.UUID `json:"category_id"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	var req learnRequest
	if !request.Decode(w, r, &req) {
		return
	}

	rule, err := h.svc.Learn(r.Context(), ownerID, req.Pattern, req.CategoryID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(rule))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	id, ok := request.ID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), ownerID, id); err != nil {
		render.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
