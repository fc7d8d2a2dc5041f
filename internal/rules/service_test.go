package rules_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
	"github.com/MrJamesThe3rd/pocketbook/internal/rules"
)

func TestService_Learn(t *testing.T) {
	owner := uuid.New()
	groceries := &category.Category{ID: uuid.New(), OwnerID: owner, Name: "Groceries", Kind: category.KindExpense}

	type args struct {
		pattern    string
		categoryID uuid.UUID
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *rules.MockRepository, c *rules.MockCategoryLookup)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{pattern: "  PINGO DOCE ", categoryID: groceries.ID},
			setupMock: func(m *rules.MockRepository, c *rules.MockCategoryLookup) {
				c.EXPECT().Get(gomock.Any(), owner, groceries.ID).Return(groceries, nil)
				m.EXPECT().
					SaveRule(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, r *rules.Rule) error {
						assert.Equal(t, "PINGO DOCE", r.Pattern)
						r.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:    "BlankPattern",
			args:    args{pattern: "  ", categoryID: groceries.ID},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "ForeignCategory",
			args: args{pattern: "RENT", categoryID: uuid.New()},
			setupMock: func(_ *rules.MockRepository, c *rules.MockCategoryLookup) {
				c.EXPECT().Get(gomock.Any(), owner, gomock.Any()).Return(nil, category.ErrNotFound)
			},
			wantErr: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := rules.NewMockRepository(ctrl)
			cats := rules.NewMockCategoryLookup(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, cats)
			}

			got, err := rules.NewService(repo, cats).Learn(context.Background(), owner, tt.args.pattern, tt.args.categoryID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Groceries", got.CategoryName)
		})
	}
}

func TestService_Suggest(t *testing.T) {
	owner := uuid.New()

	t.Run("Match", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := rules.NewMockRepository(ctrl)
		want := &rules.Rule{ID: uuid.New(), Pattern: "netflix"}

		repo.EXPECT().FindMatch(gomock.Any(), owner, "COMPRA NETFLIX.COM").Return(want, nil)

		got, err := rules.NewService(repo, nil).Suggest(context.Background(), owner, " COMPRA NETFLIX.COM ")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("BlankDescription", func(t *testing.T) {
		ctrl := gomock.NewController(t)

		got, err := rules.NewService(rules.NewMockRepository(ctrl), nil).Suggest(context.Background(), owner, "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
