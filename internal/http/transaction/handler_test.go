package transaction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
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
	httptransaction "github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

var (
	owner = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	food  = &category.Category{ID: uuid.MustParse("00000000-0000-0000-0000-0000000000f0"), OwnerID: owner, Name: "Food", Kind: category.KindExpense}
)

type mocks struct {
	repo       *transaction.MockRepository
	categories *transaction.MockCategoryLookup
}

func serve(t *testing.T, setupMock func(m mocks), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:       transaction.NewMockRepository(ctrl),
		categories: transaction.NewMockCategoryLookup(ctrl),
	}

	if setupMock != nil {
		setupMock(m)
	}

	r := chi.NewRouter()
	r.Route("/transactions", httptransaction.NewHandler(transaction.NewService(m.repo, m.categories)).Routes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(auth.WithOwner(req.Context(), owner)))

	return rec
}

func TestHandler_Create(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(m mocks)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Success",
			body: `{"category_id":"` + food.ID.String() + `","amount":"1200.50","description":"Lunch","date":"2024-01-15"}`,
			setupMock: func(m mocks) {
				m.categories.EXPECT().Get(gomock.Any(), owner, food.ID).Return(food, nil)
				m.repo.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.True(t, decimal.RequireFromString("1200.5").Equal(tx.Amount))
						assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), tx.Date)

						tx.ID = uuid.New()
						tx.CategoryName = food.Name
						tx.CategoryKind = food.Kind

						return nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "BadDate",
			body:       `{"category_id":"` + food.ID.String() + `","amount":"10","date":"15/01/2024"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "NegativeAmount",
			body:       `{"category_id":"` + food.ID.String() + `","amount":"-10","date":"2024-01-15"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "ForeignCategory",
			body: `{"category_id":"` + food.ID.String() + `","amount":"10","date":"2024-01-15"}`,
			setupMock: func(m mocks) {
				m.categories.EXPECT().Get(gomock.Any(), owner, food.ID).Return(nil, category.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transactions/", strings.NewReader(tt.body))
			rec := serve(t, tt.setupMock, req)

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusCreated {
				return
			}

			var body httptransaction.Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "1200.50", body.Amount)
			assert.Equal(t, "2024-01-15", body.Date)
			assert.Equal(t, "Food", body.CategoryName)
		})
	}
}

func TestHandler_List(t *testing.T) {
	type testCase struct {
		name       string
		query      string
		setupMock  func(m mocks)
		wantStatus int
	}

	tests := []testCase{
		{
			name:  "WithRange",
			query: "?start_date=2024-01-01&end_date=2024-01-31",
			setupMock: func(m mocks) {
				m.repo.EXPECT().
					ListTransactions(gomock.Any(), owner, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ uuid.UUID, f transaction.ListFilter) ([]*transaction.Transaction, error) {
						require.NotNil(t, f.StartDate)
						require.NotNil(t, f.EndDate)
						assert.Equal(t, 31, f.EndDate.Day())

						return []*transaction.Transaction{}, nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "InvertedRange",
			query:      "?start_date=2024-02-01&end_date=2024-01-01",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadDate",
			query:      "?start_date=yesterday",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "BadCategory",
			query:      "?category_id=food",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.setupMock, httptest.NewRequest(http.MethodGet, "/transactions/"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Update_Description(t *testing.T) {
	type testCase struct {
		name     string
		body     string
		wantDesc *string
	}

	tests := []testCase{
		{
			name:     "NullClears",
			body:     `{"description":null}`,
			wantDesc: nil,
		},
		{
			name:     "OmittedKeeps",
			body:     `{"amount":"7.50"}`,
			wantDesc: new("old"),
		},
		{
			name:     "ValueReplaces",
			body:     `{"description":"  new  "}`,
			wantDesc: new("new"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()

			rec := serve(t, func(m mocks) {
				m.repo.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(&transaction.Transaction{
					ID:          id,
					OwnerID:     owner,
					CategoryID:  food.ID,
					Amount:      decimal.NewFromInt(5),
					Description: new("old"),
					Date:        time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
				}, nil)
				m.repo.EXPECT().
					UpdateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, tt.wantDesc, tx.Description)
						return nil
					})
			}, httptest.NewRequest(http.MethodPatch, "/transactions/"+id.String(), strings.NewReader(tt.body)))

			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestHandler_Delete_NotFound(t *testing.T) {
	id := uuid.New()

	rec := serve(t, func(m mocks) {
		m.repo.EXPECT().DeleteTransaction(gomock.Any(), owner, id).Return(transaction.ErrNotFound)
	}, httptest.NewRequest(http.MethodDelete, "/transactions/"+id.String(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
