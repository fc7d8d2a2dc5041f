package category

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/render"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/request"
)

type Handler struct {
	svc *category.Service
}

func NewHandler(svc *category.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type categoryResponse struct {
	ID               uuid.UUID     `json:"id"`
	Name             string        `json:"name"`
	Kind             category.Kind `json:"kind"`
	Color            *string       `json:"color,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	TransactionCount *int          `json:"transaction_count,omitempty"`
}

func toResponse(c *category.Category) categoryResponse {
	return categoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      c.Kind,
		Color:     c.Color,
		CreatedAt: c.CreatedAt,
	}
}

type createCategoryRequest struct {
	Name  string        `json:"name"`
	Kind  category.Kind `json:"kind"`
	Color *string       `json:"color,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	var req createCategoryRequest
	if !request.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.Create(r.Context(), ownerID, category.CreateParams{
		Name:  req.Name,
		Kind:  req.Kind,
		Color: req.Color,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	cs, err := h.svc.List(r.Context(), ownerID)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(cs))
	for i, c := range cs {
		resp[i] = toResponse(c)
	}

	render.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	id, ok := request.ID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), ownerID, id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	n, err := h.svc.TransactionCount(r.Context(), ownerID, id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	resp := toResponse(c)
	resp.TransactionCount = &n

	render.JSON(w, http.StatusOK, resp)
}

// Kind is fixed at creation and cannot be patched. A null color clears it.
type updateCategoryRequest struct {
	Name  *string                  `json:"name,omitempty"`
	Color request.Optional[string] `json:"color"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	id, ok := request.ID(w, r)
	if !ok {
		return
	}

	var req updateCategoryRequest
	if !request.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.Update(r.Context(), ownerID, id, category.UpdateParams{
		Name:       req.Name,
		Color:      req.Color.Value,
		ClearColor: req.Color.Null(),
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, toResponse(c))
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
