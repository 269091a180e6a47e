// Package localcart persists per-session cart snapshots for anonymous
// shoppers. A snapshot is the device-local side of the cart mirror: it is
// what survives a browser restart before the shopper ever signs in, and it
// is the source merged into the account cart at sign-in.
package localcart

import (
	"context"
	"fmt"
	"time"

	"github.com/avaldez-dev/storefront-core/pkg/config"
	redisclient "github.com/avaldez-dev/storefront-core/pkg/redis"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product entry in a snapshot. Product fields are denormalized
// so an anonymous cart can render without a catalog round trip.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
}

// Snapshot is the full local cart state for one session slot.
type Snapshot struct {
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Empty reports whether the snapshot holds no lines.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Lines) == 0
}

// Store reads and writes snapshots keyed by cart session ID. Loading a slot
// that was never written (or was cleared) returns an empty snapshot, not an
// error.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Save(ctx context.Context, sessionID string, snap *Snapshot) error
	Clear(ctx context.Context, sessionID string) error
}

// New selects the snapshot backend from configuration.
func New(cfg config.LocalCartConfig, client *redisclient.Client) (Store, error) {
	switch cfg.Backend {
	case "", "redis":
		return NewRedisStore(client, cfg.SnapshotTTL)
	case "file":
		return NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unsupported local cart backend %q", cfg.Backend)
	}
}

func validateSessionID(sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return fmt.Errorf("invalid cart session id %q: %w", sessionID, err)
	}
	return nil
}
