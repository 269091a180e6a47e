package products

import (
	"context"
	"testing"

	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/google/uuid"
)

type stubProductRepo struct {
	listFilter ListFilter
	listOut    []models.Product
	byID       map[uuid.UUID]*models.Product
}

func (r *stubProductRepo) List(_ context.Context, filter ListFilter) ([]models.Product, error) {
	r.listFilter = filter
	return r.listOut, nil
}

func (r *stubProductRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return p, nil
}

func TestListDefaultsToNewest(t *testing.T) {
	t.Parallel()

	repo := &stubProductRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.List(context.Background(), ListFilter{Category: "lighting"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if repo.listFilter.Sort != SortNewest {
		t.Fatalf("expected default sort %q, got %q", SortNewest, repo.listFilter.Sort)
	}
	if repo.listFilter.Category != "lighting" {
		t.Fatalf("expected category filter to pass through, got %q", repo.listFilter.Category)
	}
}

func TestListRejectsUnknownSort(t *testing.T) {
	t.Parallel()

	svc, _ := NewService(&stubProductRepo{})
	if _, err := svc.List(context.Background(), ListFilter{Sort: "cheapest"}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetByIDValidatesInput(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	repo := &stubProductRepo{byID: map[uuid.UUID]*models.Product{
		id: {ID: id, Title: "Desk Lamp"},
	}}
	svc, _ := NewService(repo)

	if _, err := svc.GetByID(context.Background(), uuid.Nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for nil id, got %v", err)
	}
	product, err := svc.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if product.Title != "Desk Lamp" {
		t.Fatalf("unexpected product %+v", product)
	}
	if _, err := svc.GetByID(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
