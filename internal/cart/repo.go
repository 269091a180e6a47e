package cart

import (
	"context"
	"errors"
	"fmt"

	dbpkg "github.com/avaldez-dev/storefront-core/pkg/db"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemoteStore is the account-cart side of the mirror: one row per
// (user, product) in cart_items.
type RemoteStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	Upsert(ctx context.Context, line *models.CartLine) (*models.CartLine, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

type cartRepo struct {
	conn *gorm.DB
}

// NewRemoteStore builds a GORM-backed cart line repository.
func NewRemoteStore(client *dbpkg.Client) (RemoteStore, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &cartRepo{conn: client.DB()}, nil
}

func (r *cartRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.conn.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "listing cart lines")
	}
	return lines, nil
}

// Upsert inserts the line or, when the (user, product) pair already exists,
// overwrites its quantity. The returned row carries the store-assigned ID.
func (r *cartRepo) Upsert(ctx context.Context, line *models.CartLine) (*models.CartLine, error) {
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line is required")
	}

	err := r.conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": line.Quantity}),
		}).
		Create(line).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "upserting cart line")
	}

	var persisted models.CartLine
	err = r.conn.WithContext(ctx).
		Preload("Product").
		Where("user_id = ? AND product_id = ?", line.UserID, line.ProductID).
		First(&persisted).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodePersistence, "upserted cart line not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "reloading cart line")
	}
	return &persisted, nil
}

func (r *cartRepo) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	err := r.conn.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "deleting cart line")
	}
	return nil
}

func (r *cartRepo) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	err := r.conn.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "clearing cart lines")
	}
	return nil
}
