package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine freezes quantity and unit price at order time. Price is a value
// copy: later catalog price changes must not reach past orders.
type OrderLine struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Quantity  int             `gorm:"column:quantity;not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
}

// TableName pins the order_items collection name.
func (OrderLine) TableName() string {
	return "order_items"
}
