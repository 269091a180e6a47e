package orders

import (
	"context"
	"errors"
	"fmt"

	dbpkg "github.com/avaldez-dev/storefront-core/pkg/db"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository exposes order persistence. Create and CreateLines are
// deliberately separate calls: the checkout orchestrator names the partial
// failure between them instead of pretending it cannot happen.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetByIDAndUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
}

type orderRepo struct {
	conn *gorm.DB
}

// NewOrderRepository builds a GORM-backed order repository.
func NewOrderRepository(client *dbpkg.Client) (OrderRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &orderRepo{conn: client.DB()}, nil
}

func (r *orderRepo) Create(ctx context.Context, order *models.Order) error {
	if err := r.conn.WithContext(ctx).Omit("Lines").Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating order")
	}
	return nil
}

func (r *orderRepo) CreateLines(ctx context.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order lines are required")
	}
	if err := r.conn.WithContext(ctx).Create(&lines).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating order lines")
	}
	return nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	err := r.conn.WithContext(ctx).
		Preload("Lines").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing orders")
	}
	return out, nil
}

func (r *orderRepo) GetByIDAndUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.conn.WithContext(ctx).
		Preload("Lines").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "fetching order")
	}
	return &order, nil
}
