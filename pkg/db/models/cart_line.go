package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLine persists one (owner, product) entry of an authenticated cart.
// Anonymous lines live in the local cart store, not in this table; a line
// crosses over during the sign-in merge. The unique index on
// (user_id, product_id) backs the no-duplication invariant.
type CartLine struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_items_owner_product,priority:1" json:"user_id"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_owner_product,priority:2" json:"product_id"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName pins the cart_items collection name.
func (CartLine) TableName() string {
	return "cart_items"
}
