package cart

import (
	"context"
	"fmt"

	"github.com/avaldez-dev/storefront-core/internal/localcart"
	"github.com/avaldez-dev/storefront-core/pkg/db/models"
	"github.com/avaldez-dev/storefront-core/pkg/enums"
	pkgerrors "github.com/avaldez-dev/storefront-core/pkg/errors"
	"github.com/avaldez-dev/storefront-core/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// View is the cart as presented to callers: current lines, a total
// recomputed at read time, and the sync status of the last mutation.
type View struct {
	Subject    Subject          `json:"-"`
	Lines      []Line           `json:"lines"`
	Total      decimal.Decimal  `json:"total"`
	Count      int              `json:"count"`
	SyncStatus enums.SyncStatus `json:"sync_status"`
}

// Service exposes cart operations keyed by subject. Each call hydrates an
// engine for the subject, applies the mutation, and returns the resulting
// view.
type Service interface {
	View(ctx context.Context, subject Subject) (*View, error)
	AddItem(ctx context.Context, subject Subject, productID uuid.UUID, qty int) (*View, error)
	SetQuantity(ctx context.Context, subject Subject, productID uuid.UUID, qty int) (*View, error)
	RemoveItem(ctx context.Context, subject Subject, productID uuid.UUID) (*View, error)
	Clear(ctx context.Context, subject Subject) (*View, error)
	UserSignedIn(ctx context.Context, user *models.User, cartSessionID string) error
}

type service struct {
	local    localcart.Store
	remote   RemoteStore
	products productLoader
	logg     *logger.Logger
}

// NewService builds the cart service.
func NewService(local localcart.Store, remote RemoteStore, products productLoader, logg *logger.Logger) (Service, error) {
	if local == nil {
		return nil, fmt.Errorf("local cart store required")
	}
	if remote == nil {
		return nil, fmt.Errorf("remote cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		local:    local,
		remote:   remote,
		products: products,
		logg:     logg,
	}, nil
}

func (s *service) engineFor(ctx context.Context, subject Subject) (*Engine, error) {
	engine, err := NewEngine(subject, s.local, s.remote, s.products, s.logg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "building cart engine")
	}
	if err := engine.Hydrate(ctx); err != nil {
		return nil, err
	}
	return engine, nil
}

func viewOf(engine *Engine) *View {
	return &View{
		Subject:    engine.Subject(),
		Lines:      engine.Lines(),
		Total:      engine.Total(),
		Count:      engine.Count(),
		SyncStatus: engine.SyncStatus(),
	}
}

func (s *service) View(ctx context.Context, subject Subject) (*View, error) {
	engine, err := s.engineFor(ctx, subject)
	if err != nil {
		return nil, err
	}
	return viewOf(engine), nil
}

func (s *service) AddItem(ctx context.Context, subject Subject, productID uuid.UUID, qty int) (*View, error) {
	engine, err := s.engineFor(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := engine.AddItem(ctx, productID, qty); err != nil {
		return nil, err
	}
	return viewOf(engine), nil
}

func (s *service) SetQuantity(ctx context.Context, subject Subject, productID uuid.UUID, qty int) (*View, error) {
	engine, err := s.engineFor(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := engine.SetQuantity(ctx, productID, qty); err != nil {
		return nil, err
	}
	return viewOf(engine), nil
}

func (s *service) RemoveItem(ctx context.Context, subject Subject, productID uuid.UUID) (*View, error) {
	engine, err := s.engineFor(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := engine.RemoveItem(ctx, productID); err != nil {
		return nil, err
	}
	return viewOf(engine), nil
}

func (s *service) Clear(ctx context.Context, subject Subject) (*View, error) {
	engine, err := s.engineFor(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := engine.Clear(ctx); err != nil {
		return nil, err
	}
	return viewOf(engine), nil
}

// UserSignedIn merges the anonymous snapshot into the account cart. It runs
// as a sign-in listener, once per Anonymous to Authenticated transition; with
// no cart session there is nothing to merge.
func (s *service) UserSignedIn(ctx context.Context, user *models.User, cartSessionID string) error {
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user is required")
	}
	if cartSessionID == "" {
		return nil
	}

	engine, err := s.engineFor(ctx, Subject{SessionID: cartSessionID})
	if err != nil {
		return err
	}
	if len(engine.Lines()) == 0 {
		return nil
	}
	return engine.SignIn(ctx, user.ID)
}
