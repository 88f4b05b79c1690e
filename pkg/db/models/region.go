package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Region is a delivery region with its pricing multiplier. The multiplier is
// validated non-negative only; whether it stays >= 1.0 is a data decision.
type Region struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string          `gorm:"column:name;not null;uniqueIndex"`
	RegionalMultiplier decimal.Decimal `gorm:"column:regional_multiplier;type:numeric(6,3);not null;default:1.0"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default GORM naming.
func (Region) TableName() string {
	return "regions"
}
