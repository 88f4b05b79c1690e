package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderSnapshot is the immutable record of a placed order, kept only as far
// as repeat-order revalidation needs it.
type OrderSnapshot struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegionID  uuid.UUID           `gorm:"column:region_id;type:uuid;not null"`
	Lines     []OrderLineSnapshot `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default GORM naming.
func (OrderSnapshot) TableName() string {
	return "order_snapshots"
}

// OrderLineSnapshot freezes one line of a placed order. Unit price is the
// buyer-facing price at order time, never recomputed.
type OrderLineSnapshot struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	SupplierID  *uuid.UUID      `gorm:"column:supplier_id;type:uuid"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
}

// TableName overrides the default GORM naming.
func (OrderLineSnapshot) TableName() string {
	return "order_line_snapshots"
}
