package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
)

// Breakdown is the full decomposition of one computed price. BasePrice and
// CommissionAmount keep full precision; FinalPrice is rounded half-up to two
// decimal places.
type Breakdown struct {
	SupplierPrice       decimal.Decimal
	RegionalMultiplier  decimal.Decimal
	VariationAdjustment decimal.Decimal
	BasePrice           decimal.Decimal
	CommissionRate      decimal.Decimal
	CommissionAmount    decimal.Decimal
	FinalPrice          decimal.Decimal
	// Clamped is set when the variation adjustment drove the base price
	// below zero and it was clamped to zero.
	Clamped bool
}

// Calculate composes a final customer price:
//
//	base  = supplierPrice * regionalMultiplier + variationAdjustment (>= 0)
//	final = round2(base * (1 + commissionRate))
//
// The function is pure; identical inputs always yield identical output.
func Calculate(supplierPrice, regionalMultiplier, variationAdjustment, commissionRate decimal.Decimal) (Breakdown, error) {
	if supplierPrice.IsNegative() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("supplier price must be >= 0, got %s", supplierPrice))
	}
	if regionalMultiplier.IsNegative() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("regional multiplier must be >= 0, got %s", regionalMultiplier))
	}
	if commissionRate.IsNegative() || commissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("commission rate must be in [0,1), got %s", commissionRate))
	}

	base := supplierPrice.Mul(regionalMultiplier).Add(variationAdjustment)
	clamped := false
	if base.IsNegative() {
		base = decimal.Zero
		clamped = true
	}

	commission := base.Mul(commissionRate)
	final := base.Add(commission).Round(2)

	return Breakdown{
		SupplierPrice:       supplierPrice,
		RegionalMultiplier:  regionalMultiplier,
		VariationAdjustment: variationAdjustment,
		BasePrice:           base,
		CommissionRate:      commissionRate,
		CommissionAmount:    commission,
		FinalPrice:          final,
		Clamped:             clamped,
	}, nil
}
