package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents the canonical catalog listing. Descriptive attributes
// are owned by catalog management; pricing never mutates a product.
type Product struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Category  string         `gorm:"column:category;not null"`
	Unit      string         `gorm:"column:unit;not null"`
	ImageURLs pq.StringArray `gorm:"column:image_urls;type:text[];not null;default:ARRAY[]::text[]"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default GORM naming.
func (Product) TableName() string {
	return "products"
}
