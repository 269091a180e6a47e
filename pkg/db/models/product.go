package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing. The cart treats it as immutable
// and only ever caches a denormalized copy for display.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL    string          `gorm:"column:image_url;not null;default:''"`
	GalleryURLs pq.StringArray  `gorm:"column:gallery_urls;type:text[];not null;default:ARRAY[]::text[]"`
	Category    string          `gorm:"column:category;not null;default:''"`
	Stock       *int            `gorm:"column:stock"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the products collection name.
func (Product) TableName() string {
	return "products"
}
