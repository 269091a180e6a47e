package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avaldez-dev/storefront-core/pkg/enums"
)

// Order is created once by checkout and never mutated by the client after.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'" json:"status"`
	Total           decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	ShippingAddress string            `gorm:"column:shipping_address;not null" json:"shipping_address"`
	Lines           []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// TableName pins the orders collection name.
func (Order) TableName() string {
	return "orders"
}
