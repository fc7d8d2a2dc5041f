package importer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	httpimporter "github.com/MrJamesThe3rd/pocketbook/internal/http/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

const statementCSV = `date,description,amount
2024-01-05,Salary,1500.00
2024-01-06,Groceries,-42.10
`

var (
	owner   = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	salary  = &category.Category{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000a1"), Name: "Salary", Kind: category.KindIncome}
	grocery = &category.Category{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000e1"), Name: "Groceries", Kind: category.KindExpense}
)

type mocks struct {
	repo       *transaction.MockRepository
	itx        *transaction.MockImportTx
	categories *transaction.MockCategoryLookup
	suggester  *importer.MockSuggester
}

func newRouter(t *testing.T, setupMock func(m mocks)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:       transaction.NewMockRepository(ctrl),
		itx:        transaction.NewMockImportTx(ctrl),
		categories: transaction.NewMockCategoryLookup(ctrl),
		suggester:  importer.NewMockSuggester(ctrl),
	}

	setupMock(m)

	h := httpimporter.NewHandler(
		importer.NewService(m.suggester),
		transaction.NewService(m.repo, m.categories),
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), owner)))
		})
	})
	r.Route("/import", h.Routes)

	return r
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("income_category_id", salary.ID.String()))
	require.NoError(t, mw.WriteField("expense_category_id", grocery.ID.String()))

	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func expectCategories(m mocks) {
	m.categories.EXPECT().Get(gomock.Any(), owner, salary.ID).Return(salary, nil)
	m.categories.EXPECT().Get(gomock.Any(), owner, grocery.ID).Return(grocery, nil)
}

func TestHandler_Import_Created(t *testing.T) {
	router := newRouter(t, func(m mocks) {
		m.suggester.EXPECT().Suggest(gomock.Any(), owner, gomock.Any()).Return(nil, nil).Times(2)
		expectCategories(m)

		m.repo.EXPECT().BeginImport(gomock.Any(), owner).Return(m.itx, nil)
		m.itx.EXPECT().FindDuplicates(gomock.Any(), owner, gomock.Len(2)).Return(nil, nil)
		m.itx.EXPECT().
			CreateTransactions(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
				require.Len(t, txs, 2)
				assert.Equal(t, salary.ID, txs[0].CategoryID)
				assert.Equal(t, grocery.ID, txs[1].CategoryID)
				assert.Equal(t, "42.10", txs[1].Amount.StringFixed(2))

				return nil
			})
		m.itx.EXPECT().Commit().Return(nil)
		m.itx.EXPECT().Rollback().Return(nil)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "statement.csv", statementCSV))

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		Imported int `json:"imported"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Imported)
}

func TestHandler_Import_Conflict(t *testing.T) {
	existing := &transaction.Transaction{
		ID:          uuid.New(),
		OwnerID:     owner,
		CategoryID:  salary.ID,
		Amount:      decimal.RequireFromString("1500"),
		Description: new("Salary"),
		Date:        time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC),
	}

	router := newRouter(t, func(m mocks) {
		m.suggester.EXPECT().Suggest(gomock.Any(), owner, gomock.Any()).Return(nil, nil).Times(2)
		expectCategories(m)

		m.repo.EXPECT().BeginImport(gomock.Any(), owner).Return(m.itx, nil)
		m.itx.EXPECT().FindDuplicates(gomock.Any(), owner, gomock.Any()).Return([]*transaction.Transaction{existing}, nil)
		m.itx.EXPECT().Rollback().Return(nil)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "statement.csv", statementCSV))

	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		New       []json.RawMessage `json:"new"`
		Conflicts []struct {
			Incoming struct {
				Amount string `json:"amount"`
			} `json:"incoming"`
		} `json:"conflicts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.New, 1)
	require.Len(t, body.Conflicts, 1)
	assert.Equal(t, "1500.00", body.Conflicts[0].Incoming.Amount)
}

func TestHandler_Import_UnknownFormat(t *testing.T) {
	router := newRouter(t, func(mocks) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "statement.pdf", "%PDF"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_Confirm(t *testing.T) {
	router := newRouter(t, func(m mocks) {
		m.categories.EXPECT().Get(gomock.Any(), owner, salary.ID).Return(salary, nil)
		m.repo.EXPECT().BeginImport(gomock.Any(), owner).Return(m.itx, nil)
		m.itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil)
		m.itx.EXPECT().Commit().Return(nil)
		m.itx.EXPECT().Rollback().Return(nil)
	})

	body := `{"params":[{"category_id":"` + salary.ID.String() + `","amount":"1500.00","description":"Salary","date":"2024-01-05"}]}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/import/confirm", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusCreated, rec.Code)
}
