package transaction

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/render"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/request"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/recent", h.recent)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createTransactionRequest struct {
	CategoryID  uuid.UUID       `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

func (req createTransactionRequest) params() (transaction.CreateParams, error) {
	date, err := request.ParseDate("date", req.Date)
	if err != nil {
		return transaction.CreateParams{}, err
	}

	return transaction.CreateParams{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	}, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if !request.Decode(w, r, &req) {
		return
	}

	params, err := req.params()
	if err != nil {
		render.Error(w, r, err)
		return
	}

	tx, err := h.svc.Create(r.Context(), ownerID, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, ToResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	var filter transaction.ListFilter

	if filter.StartDate, ok = request.Date(w, r, "start_date"); !ok {
		return
	}

	if filter.EndDate, ok = request.Date(w, r, "end_date"); !ok {
		return
	}

	categoryID, err := request.UUID("category_id", r.URL.Query().Get("category_id"))
	if err != nil {
		render.Error(w, r, err)
		return
	}

	filter.CategoryID = categoryID

	txs, err := h.svc.List(r.Context(), ownerID, filter)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, ToResponseList(txs))
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	limit := 0

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			render.Error(w, r, apperr.Validation("limit", "must be a number, got %q", s))
			return
		}

		limit = n
	}

	txs, err := h.svc.Recent(r.Context(), ownerID, limit)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, ToResponseList(txs))
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

	tx, err := h.svc.Get(r.Context(), ownerID, id)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, ToResponse(tx))
}

// A null description clears it.
type updateTransactionRequest struct {
	CategoryID  *uuid.UUID               `json:"category_id,omitempty"`
	Amount      *decimal.Decimal         `json:"amount,omitempty"`
	Description request.Optional[string] `json:"description"`
	Date        *string                  `json:"date,omitempty"`
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

	var req updateTransactionRequest
	if !request.Decode(w, r, &req) {
		return
	}

	params := transaction.UpdateParams{
		CategoryID:       req.CategoryID,
		Amount:           req.Amount,
		Description:      req.Description.Value,
		ClearDescription: req.Description.Null(),
	}

	if req.Date != nil {
		date, err := request.ParseDate("date", *req.Date)
		if err != nil {
			render.Error(w, r, err)
			return
		}

		params.Date = &date
	}

	tx, err := h.svc.Update(r.Context(), ownerID, id, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusOK, ToResponse(tx))
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
