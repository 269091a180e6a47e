package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dbpkg "github.com/avaldez-dev/storefront-core/pkg/db"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilter narrows and orders a catalog listing.
type ListFilter struct {
	Category string
	Search   string
	Sort     string
}

// ProductRepository exposes catalog reads.
type ProductRepository interface {
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type productRepo struct {
	conn *gorm.DB
}

// NewProductRepository builds a GORM-backed catalog repository.
func NewProductRepository(client *dbpkg.Client) (ProductRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &productRepo{conn: client.DB()}, nil
}

func (r *productRepo) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.conn.WithContext(ctx).Model(&models.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	switch filter.Sort {
	case SortPriceAsc:
		query = query.Order("price ASC")
	case SortPriceDesc:
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var out []models.Product
	if err := query.Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing products")
	}
	return out, nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.conn.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "fetching product")
	}
	return &product, nil
}
