// Package products serves the storefront catalog. The cart treats products
// as immutable and only references them by ID.
package products

import (
	"context"
	"fmt"

	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/google/uuid"
)

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

var validSorts = map[string]struct{}{
	SortNewest:    {},
	SortPriceAsc:  {},
	SortPriceDesc: {},
}

// Service exposes catalog reads to the API layer and to the cart engine.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo ProductRepository
}

// NewService builds the catalog service.
func NewService(repo ProductRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	if filter.Sort == "" {
		filter.Sort = SortNewest
	}
	if _, ok := validSorts[filter.Sort]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unknown sort %q (expected newest, price-asc or price-desc)", filter.Sort))
	}
	return s.repo.List(ctx, filter)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return s.repo.GetByID(ctx, id)
}
