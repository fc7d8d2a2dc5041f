package rules

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/apperr"
	"github.com/MrJamesThe3rd/pocketbook/internal/category"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=rules
type Repository interface {
	// SaveRule inserts the rule or repoints an existing rule with the same pattern.
	SaveRule(ctx context.Context, r *Rule) error
	// FindMatch returns the longest pattern contained in description, or nil.
	FindMatch(ctx context.Context, ownerID uuid.UUID, description string) (*Rule, error)
	ListRules(ctx context.Context, ownerID uuid.UUID) ([]*Rule, error)
	DeleteRule(ctx context.Context, ownerID, id uuid.UUID) error
}

type CategoryLookup interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*category.Category, error)
}

type Service struct {
	repo       Repository
	categories CategoryLookup
}

func NewService(repo Repository, categories CategoryLookup) *Service {
	return &Service{repo: repo, categories: categories}
}

// Learn remembers that descriptions containing pattern belong to categoryID.
func (s *Service) Learn(ctx context.Context, ownerID uuid.UUID, pattern string, categoryID uuid.UUID) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, apperr.Validation("pattern", "must not be empty")
	}

	c, err := s.categories.Get(ctx, ownerID, categoryID)
	if err != nil {
		return nil, err
	}

	r := &Rule{OwnerID: ownerID, Pattern: pattern, CategoryID: c.ID, CategoryName: c.Name}
	if err := s.repo.SaveRule(ctx, r); err != nil {
		return nil, err
	}

	return r, nil
}

// Suggest returns the best rule for description. A nil rule means no match.
func (s *Service) Suggest(ctx context.Context, ownerID uuid.UUID, description string) (*Rule, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, nil
	}

	return s.repo.FindMatch(ctx, ownerID, description)
}

func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*Rule, error) {
	return s.repo.ListRules(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.DeleteRule(ctx, ownerID, id)
}
