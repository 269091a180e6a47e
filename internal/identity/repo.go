package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/avaldez-dev/storefront-core/pkg/db"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository exposes the persistence surface for shopper accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type userRepo struct {
	conn *gorm.DB
}

// NewUserRepository builds a GORM-backed user repository.
func NewUserRepository(client *dbpkg.Client) (UserRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &userRepo{conn: client.DB()}, nil
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	if err := r.conn.WithContext(ctx).Create(user).Error; err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "creating user")
	}
	return nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.conn.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "fetching user by email")
	}
	return &user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.conn.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "fetching user by id")
	}
	return &user, nil
}

func (r *userRepo) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.conn.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "updating last login")
	}
	return nil
}
