package category

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, ownerID, id uuid.UUID) (*Category, error)
	ListCategories(ctx context.Context, ownerID uuid.UUID) ([]*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error

	// DeleteUnused removes the category only if no transaction references it.
	// The check and the delete must happen atomically.
	DeleteUnused(ctx context.Context, ownerID, id uuid.UUID) error
	CountTransactions(ctx context.Context, id uuid.UUID) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name  string
	Kind  Kind
	Color *string
}

// UpdateParams changes only the supplied fields. Kind cannot be updated.
type UpdateParams struct {
	Name       *string
	Color      *string
	ClearColor bool
}

func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, params CreateParams) (*Category, error) {
	name, err := validName(params.Name)
	if err != nil {
		return nil, err
	}

	if !params.Kind.Valid() {
		return nil, apperr.Validation("kind", "must be %q or %q", KindIncome, KindExpense)
	}

	c := &Category{
		OwnerID: ownerID,
		Name:    name,
		Kind:    params.Kind,
		Color:   normalizeColor(params.Color),
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Category, error) {
	return s.repo.GetCategory(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Category, error) {
	return s.repo.ListCategories(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID, id uuid.UUID, params UpdateParams) (*Category, error) {
	c, err := s.repo.GetCategory(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name, err := validName(*params.Name)
		if err != nil {
			return nil, err
		}

		c.Name = name
	}

	switch {
	case params.ClearColor:
		c.Color = nil
	case params.Color != nil:
		c.Color = normalizeColor(params.Color)
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteUnused(ctx, ownerID, id)
}

// TransactionCount returns how many transactions reference the category.
func (s *Service) TransactionCount(ctx context.Context, ownerID, id uuid.UUID) (int, error) {
	if _, err := s.repo.GetCategory(ctx, ownerID, id); err != nil {
		return 0, err
	}

	return s.repo.CountTransactions(ctx, id)
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("name", "must not be empty")
	}

	return name, nil
}

func normalizeColor(color *string) *string {
	if color == nil {
		return nil
	}

	c := strings.TrimSpace(*color)
	if c == "" {
		return nil
	}

	return &c
}
