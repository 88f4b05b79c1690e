package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/pkg/enums"
)

// SupplierOffer is one supplier's active ask for one product within one
// delivery region. Only rows with IsActive=true participate in pricing and
// comparison; a product with no offer rows in a region is not sold there.
type SupplierOffer struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID   uuid.UUID `gorm:"column:supplier_id;type:uuid;not null"`
	SupplierName string    `gorm:"column:supplier_name;not null"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null;index:idx_supplier_offers_product_region"`
	RegionID     uuid.UUID `gorm:"column:region_id;type:uuid;not null;index:idx_supplier_offers_product_region"`

	Price         decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	PreviousPrice *decimal.Decimal  `gorm:"column:previous_price;type:numeric(12,2)"`
	PriceChange   enums.PriceChange `gorm:"column:price_change;not null;default:'stable'"`

	StockQuantity int                `gorm:"column:stock_quantity;not null;default:0"`
	Availability  enums.Availability `gorm:"column:availability;not null;default:'plenty'"`

	MinOrderQuantity int `gorm:"column:min_order_quantity;not null;default:1"`
	DeliveryDays     int `gorm:"column:delivery_days;not null;default:0"`

	IsActive   bool `gorm:"column:is_active;not null;default:true"`
	IsFeatured bool `gorm:"column:is_featured;not null;default:false"`

	Quality enums.OfferQuality `gorm:"column:quality;not null;default:'standard'"`
	Origin  string             `gorm:"column:origin"`

	LastPriceUpdate *time.Time `gorm:"column:last_price_update"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default GORM naming.
func (SupplierOffer) TableName() string {
	return "supplier_offers"
}
