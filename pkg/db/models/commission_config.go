package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/pkg/enums"
)

// CommissionConfig persists the administratively managed markup rate per
// customer class. Exactly two rows exist (b2b, b2c). The pricing policy is
// still constructed from injected configuration; this table is the admin
// source the configuration is provisioned from.
type CommissionConfig struct {
	CustomerType enums.CustomerType `gorm:"column:customer_type;primaryKey"`
	Rate         decimal.Decimal    `gorm:"column:rate;type:numeric(5,4);not null"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName overrides the default GORM naming.
func (CommissionConfig) TableName() string {
	return "commission_configs"
}
