package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

var (
	owner = uuid.New()
	food  = &category.Category{ID: uuid.New(), OwnerID: owner, Name: "Food", Kind: category.KindExpense}
	day   = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
)

func TestService_Create(t *testing.T) {
	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository, c *transaction.MockCategoryLookup)
		wantErr   bool
		wantErrIs error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				params: transaction.CreateParams{
					CategoryID:  food.ID,
					Amount:      decimal.RequireFromString("12.50"),
					Description: "  Lunch ",
					Date:        day,
				},
			},
			setupMock: func(m *transaction.MockRepository, c *transaction.MockCategoryLookup) {
				c.EXPECT().Get(gomock.Any(), owner, food.ID).Return(food, nil)
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, owner, tx.OwnerID)
						require.NotNil(t, tx.Description)
						assert.Equal(t, "Lunch", *tx.Description)

						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						tx.CategoryName = food.Name
						tx.CategoryKind = food.Kind

						return nil
					})
			},
		},
		{
			name:      "ZeroAmount",
			args:      args{params: transaction.CreateParams{CategoryID: food.ID, Amount: decimal.Zero, Date: day}},
			wantErr:   true,
			wantErrIs: apperr.ErrValidation,
		},
		{
			name:      "NegativeAmount",
			args:      args{params: transaction.CreateParams{CategoryID: food.ID, Amount: decimal.NewFromInt(-5), Date: day}},
			wantErr:   true,
			wantErrIs: apperr.ErrValidation,
		},
		{
			name:      "TooManyDecimals",
			args:      args{params: transaction.CreateParams{CategoryID: food.ID, Amount: decimal.RequireFromString("1.005"), Date: day}},
			wantErr:   true,
			wantErrIs: apperr.ErrValidation,
		},
		{
			name:      "MissingDate",
			args:      args{params: transaction.CreateParams{CategoryID: food.ID, Amount: decimal.NewFromInt(1)}},
			wantErr:   true,
			wantErrIs: apperr.ErrValidation,
		},
		{
			name: "ForeignCategory",
			args: args{params: transaction.CreateParams{CategoryID: uuid.New(), Amount: decimal.NewFromInt(1), Date: day}},
			setupMock: func(_ *transaction.MockRepository, c *transaction.MockCategoryLookup) {
				c.EXPECT().Get(gomock.Any(), owner, gomock.Any()).Return(nil, category.ErrNotFound)
			},
			wantErr:   true,
			wantErrIs: apperr.ErrNotFound,
		},
		{
			name: "RepoError",
			args: args{params: transaction.CreateParams{CategoryID: food.ID, Amount: decimal.NewFromInt(5), Date: day}},
			setupMock: func(m *transaction.MockRepository, c *transaction.MockCategoryLookup) {
				c.EXPECT().Get(gomock.Any(), owner, food.ID).Return(food, nil)
				m.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			cats := transaction.NewMockCategoryLookup(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, cats)
			}

			svc := transaction.NewService(repo, cats)
			got, err := svc.Create(context.Background(), owner, tt.args.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, got.ID)
			assert.Equal(t, category.KindExpense, got.CategoryKind)
			assert.True(t, got.Signed().IsNegative())
		})
	}
}

func TestService_List(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	type args struct {
		filter transaction.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{filter: transaction.ListFilter{StartDate: &start, EndDate: &end}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), owner, transaction.ListFilter{StartDate: &start, EndDate: &end}).
					Return([]*transaction.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, nil)
			},
			wantLen: 2,
		},
		{
			name:    "InvertedRange",
			args:    args{filter: transaction.ListFilter{StartDate: &end, EndDate: &start}},
			wantErr: apperr.ErrInvalidRange,
		},
		{
			name: "Error",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().ListTransactions(gomock.Any(), owner, transaction.ListFilter{}).Return(nil, errors.New("list error"))
			},
			wantErr: errors.New("list error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo, transaction.NewMockCategoryLookup(ctrl))
			got, err := svc.List(context.Background(), owner, tt.args.filter)

			if tt.wantErr != nil {
				assert.Error(t, err)

				if errors.Is(tt.wantErr, apperr.ErrInvalidRange) {
					assert.ErrorIs(t, err, apperr.ErrInvalidRange)
				}

				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Recent(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{name: "Default", limit: 0, wantLimit: transaction.DefaultRecentLimit},
		{name: "Explicit", limit: 3, wantLimit: 3},
		{name: "Capped", limit: 10_000, wantLimit: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)
			repo.EXPECT().RecentTransactions(gomock.Any(), owner, tt.wantLimit).Return(nil, nil)

			_, err := transaction.NewService(repo, nil).Recent(context.Background(), owner, tt.limit)
			assert.NoError(t, err)
		})
	}
}

func TestService_Snapshot(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)

	t.Run("OneRepositoryRead", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		filter := transaction.ListFilter{StartDate: &start, EndDate: &end}
		want := &transaction.Snapshot{}

		repo.EXPECT().SnapshotTransactions(gomock.Any(), owner, filter, transaction.DefaultRecentLimit).Return(want, nil)

		got, err := transaction.NewService(repo, nil).Snapshot(context.Background(), owner, filter, 0)
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("InvertedRange", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		_, err := transaction.NewService(transaction.NewMockRepository(ctrl), nil).
			Snapshot(context.Background(), owner, transaction.ListFilter{StartDate: &end, EndDate: &start}, 5)
		assert.ErrorIs(t, err, apperr.ErrInvalidRange)
	})
}

func TestService_Update(t *testing.T) {
	id := uuid.New()
	bonus := &category.Category{ID: uuid.New(), OwnerID: owner, Name: "Bonus", Kind: category.KindIncome}

	existing := func() *transaction.Transaction {
		return &transaction.Transaction{
			ID:           id,
			OwnerID:      owner,
			CategoryID:   food.ID,
			CategoryName: food.Name,
			CategoryKind: food.Kind,
			Amount:       decimal.NewFromInt(10),
			Description:  new("Lunch"),
			Date:         day,
		}
	}

	t.Run("PartialAmount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		repo.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(existing(), nil)
		repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

		amount := decimal.RequireFromString("7.25")
		got, err := transaction.NewService(repo, transaction.NewMockCategoryLookup(ctrl)).
			Update(context.Background(), owner, id, transaction.UpdateParams{Amount: &amount})
		require.NoError(t, err)
		assert.True(t, amount.Equal(got.Amount))
		assert.Equal(t, food.ID, got.CategoryID)
		assert.Equal(t, "Lunch", *got.Description)
		assert.Equal(t, day, got.Date)
	})

	t.Run("MoveCategory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)
		cats := transaction.NewMockCategoryLookup(ctrl)

		repo.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(existing(), nil)
		cats.EXPECT().Get(gomock.Any(), owner, bonus.ID).Return(bonus, nil)
		repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)

		got, err := transaction.NewService(repo, cats).
			Update(context.Background(), owner, id, transaction.UpdateParams{CategoryID: &bonus.ID, ClearDescription: true})
		require.NoError(t, err)
		assert.Equal(t, bonus.ID, got.CategoryID)
		assert.Equal(t, category.KindIncome, got.CategoryKind)
		assert.Nil(t, got.Description)
	})

	t.Run("ForeignCategory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)
		cats := transaction.NewMockCategoryLookup(ctrl)
		other := uuid.New()

		repo.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(existing(), nil)
		cats.EXPECT().Get(gomock.Any(), owner, other).Return(nil, category.ErrNotFound)

		_, err := transaction.NewService(repo, cats).
			Update(context.Background(), owner, id, transaction.UpdateParams{CategoryID: &other})
		assert.ErrorIs(t, err, category.ErrNotFound)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		repo.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(existing(), nil)

		amount := decimal.NewFromInt(-1)
		_, err := transaction.NewService(repo, nil).
			Update(context.Background(), owner, id, transaction.UpdateParams{Amount: &amount})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("NotFound", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := transaction.NewMockRepository(ctrl)

		repo.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(nil, transaction.ErrNotFound)

		_, err := transaction.NewService(repo, nil).Update(context.Background(), owner, id, transaction.UpdateParams{})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	cats := transaction.NewMockCategoryLookup(ctrl)
	svc := transaction.NewService(repo, cats)

	params := []transaction.CreateParams{
		{CategoryID: food.ID, Amount: decimal.NewFromInt(10), Description: "COFFEE SHOP", Date: day},
		{CategoryID: food.ID, Amount: decimal.NewFromInt(20), Description: "LUNCH PLACE", Date: day},
	}

	cats.EXPECT().Get(gomock.Any(), owner, food.ID).Return(food, nil)
	repo.EXPECT().BeginImport(gomock.Any(), owner).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), owner, params).Return(nil, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), owner, params)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 2)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	cats := transaction.NewMockCategoryLookup(ctrl)
	svc := transaction.NewService(repo, cats)

	params := []transaction.CreateParams{
		{CategoryID: food.ID, Amount: decimal.RequireFromString("10"), Description: "COFFEE SHOP", Date: day},
		{CategoryID: food.ID, Amount: decimal.NewFromInt(20), Description: "LUNCH PLACE", Date: day},
	}

	existing := &transaction.Transaction{
		ID:          uuid.New(),
		OwnerID:     owner,
		CategoryID:  food.ID,
		Amount:      decimal.RequireFromString("10.00"),
		Description: new("COFFEE SHOP"),
		Date:        day,
	}

	cats.EXPECT().Get(gomock.Any(), owner, food.ID).Return(food, nil)
	repo.EXPECT().BeginImport(gomock.Any(), owner).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), owner, params).Return([]*transaction.Transaction{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.ImportBatch(context.Background(), owner, params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.New, 1)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, params[0], result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ImportBatch_InvalidRow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := transaction.NewService(transaction.NewMockRepository(ctrl), transaction.NewMockCategoryLookup(ctrl))

	_, err := svc.ImportBatch(context.Background(), owner, []transaction.CreateParams{
		{CategoryID: food.ID, Amount: decimal.NewFromInt(-3), Date: day},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.ErrorContains(t, err, "row 1")
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := transaction.NewService(transaction.NewMockRepository(ctrl), nil)

	result, err := svc.ImportBatch(context.Background(), owner, []transaction.CreateParams{})
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	cats := transaction.NewMockCategoryLookup(ctrl)
	svc := transaction.NewService(repo, cats)

	params := []transaction.CreateParams{
		{CategoryID: food.ID, Amount: decimal.NewFromInt(10), Description: "COFFEE SHOP", Date: day},
	}

	cats.EXPECT().Get(gomock.Any(), owner, food.ID).Return(food, nil)
	repo.EXPECT().BeginImport(gomock.Any(), owner).Return(itx, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	txs, err := svc.CreateBatch(context.Background(), owner, params)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, decimal.NewFromInt(10).Equal(txs[0].Amount))
	assert.Equal(t, owner, txs[0].OwnerID)
}
