package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/pkg/enums"
)

// VariationOption is a product option (size, scent, packaging, ...) carrying
// a signed price delta added to the regionally adjusted supplier price.
type VariationOption struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID           `gorm:"column:product_id;type:uuid;not null;index"`
	VariationType   enums.VariationType `gorm:"column:variation_type;not null"`
	Value           string              `gorm:"column:value;not null"`
	PriceAdjustment decimal.Decimal     `gorm:"column:price_adjustment;type:numeric(12,2);not null;default:0"`
	DisplayOrder    int                 `gorm:"column:display_order;not null;default:0"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default GORM naming.
func (VariationOption) TableName() string {
	return "variation_options"
}
