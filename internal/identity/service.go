package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avaldez-dev/storefront-core/pkg/auth"
	"github.com/avaldez-dev/storefront-core/pkg/config"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/avaldez-dev/storefront-core/pkg/logger"
	"github.com/avaldez-dev/storefront-core/pkg/security"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const minPasswordLength = 8

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	AccessID  string
	ExpiresAt time.Time
	User      *models.User
}

// SignUpInput carries a registration request.
type SignUpInput struct {
	Email    string
	Password string
}

// SignInInput carries a login request. CartSessionID is the anonymous cart
// session cookie, when the shopper had one; listeners use it to merge the
// local cart into the account cart.
type SignInInput struct {
	Email         string
	Password      string
	CartSessionID string
}

// SignInListener is notified after a successful sign-in. Listener failures do
// not fail the sign-in.
type SignInListener interface {
	UserSignedIn(ctx context.Context, user *models.User, cartSessionID string) error
}

type sessionRegistry interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service exposes account lifecycle operations.
type Service interface {
	SignUp(ctx context.Context, input SignUpInput) (*models.User, error)
	SignIn(ctx context.Context, input SignInInput) (*Session, error)
	SignOut(ctx context.Context, accessID string) error
	CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type service struct {
	repo      UserRepository
	sessions  sessionRegistry
	jwtCfg    config.JWTConfig
	pwCfg     config.PasswordConfig
	logg      *logger.Logger
	listeners []SignInListener
	now       func() time.Time
}

// NewService builds the identity service.
func NewService(
	repo UserRepository,
	sessions sessionRegistry,
	jwtCfg config.JWTConfig,
	pwCfg config.PasswordConfig,
	logg *logger.Logger,
	listeners ...SignInListener,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session registry required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		sessions:  sessions,
		jwtCfg:    jwtCfg,
		pwCfg:     pwCfg,
		logg:      logg,
		listeners: listeners,
		now:       time.Now,
	}, nil
}

func (s *service) SignUp(ctx context.Context, input SignUpInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *service) SignIn(ctx context.Context, input SignInInput) (*Session, error) {
	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, err
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account is disabled")
	}

	now := s.now().UTC()
	accessID := uuid.NewString()
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	if err := s.sessions.Create(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePersistence, err, "registering session")
	}

	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "failed to record last login")
	}

	s.notifySignIn(ctx, user, input.CartSessionID)

	return &Session{
		Token:     token,
		AccessID:  accessID,
		ExpiresAt: now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		User:      user,
	}, nil
}

// notifySignIn fans the transition out to listeners. The cart merge rides on
// this hook; its failure leaves the cart out of sync, not the shopper logged
// out.
func (s *service) notifySignIn(ctx context.Context, user *models.User, cartSessionID string) {
	var errs error
	for _, l := range s.listeners {
		if err := l.UserSignedIn(ctx, user, cartSessionID); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID.String()), "sign-in listeners failed", errs)
	}
}

func (s *service) SignOut(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "revoking session")
	}
	return nil
}

func (s *service) CurrentUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.GetByID(ctx, userID)
}
