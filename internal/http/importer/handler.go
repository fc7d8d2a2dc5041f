package importer

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/render"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/request"
	httptransaction "github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
}

func NewHandler(importSvc *importer.Service, txSvc *transaction.Service) *Handler {
	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importStatement)
	r.Post("/confirm", h.confirmImport)
}

type importSuccessResponse struct {
	Imported     int                        `json:"imported"`
	Transactions []httptransaction.Response `json:"transactions"`
}

type conflictDTO struct {
	Incoming httptransaction.Params   `json:"incoming"`
	Existing httptransaction.Response `json:"existing"`
}

type importConflictResponse struct {
	New       []httptransaction.Params `json:"new"`
	Conflicts []conflictDTO            `json:"conflicts"`
}

type paramsDTO struct {
	CategoryID  uuid.UUID       `json:"category_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
}

type confirmRequest struct {
	Params []paramsDTO `json:"params"`
}

func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		render.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	// The format field wins; otherwise the file extension decides.
	name := r.FormValue("format")
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	}

	format, err := importer.ParseFormat(name)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	var defaults importer.Defaults

	for field, dst := range map[string]*uuid.UUID{
		"income_category_id":  &defaults.IncomeCategoryID,
		"expense_category_id": &defaults.ExpenseCategoryID,
	} {
		id, err := request.UUID(field, r.FormValue(field))
		if err != nil {
			render.Error(w, r, err)
			return
		}

		if id != nil {
			*dst = *id
		}
	}

	rows, err := h.importSvc.Parse(format, file)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	params, err := h.importSvc.Categorize(r.Context(), ownerID, rows, defaults)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	result, err := h.txSvc.ImportBatch(r.Context(), ownerID, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]httptransaction.Params, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}

		for _, p := range result.New {
			resp.New = append(resp.New, httptransaction.ToParams(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: httptransaction.ToParams(c.Incoming),
				Existing: httptransaction.ToResponse(c.Existing),
			})
		}

		render.JSON(w, http.StatusConflict, resp)

		return
	}

	render.JSON(w, http.StatusCreated, toSuccessResponse(result.Imported))
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := request.Owner(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if !request.Decode(w, r, &req) {
		return
	}

	if len(req.Params) == 0 {
		render.Error(w, r, apperr.Validation("params", "must not be empty"))
		return
	}

	params := make([]transaction.CreateParams, len(req.Params))

	for i, p := range req.Params {
		date, err := request.ParseDate("date", p.Date)
		if err != nil {
			render.Error(w, r, apperr.Validation("params", "row %d: %v", i+1, err))
			return
		}

		params[i] = transaction.CreateParams{
			CategoryID:  p.CategoryID,
			Amount:      p.Amount,
			Description: p.Description,
			Date:        date,
		}
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), ownerID, params)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	render.JSON(w, http.StatusCreated, toSuccessResponse(txs))
}

func toSuccessResponse(txs []*transaction.Transaction) importSuccessResponse {
	return importSuccessResponse{
		Imported:     len(txs),
		Transactions: httptransaction.ToResponseList(txs),
	}
}
