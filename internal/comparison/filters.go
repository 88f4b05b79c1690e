package comparison

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
)

// Filters narrows a comparison result. Every field is optional and explicit;
// validation happens once here, not scattered through the engine.
type Filters struct {
	Category        string
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Availability    *enums.Availability
	Quality         *enums.OfferQuality
	Search          string
	OnlyLowestPrice bool
	OnlyFeatured    bool
	MinSuppliers    int
	VariationID     *uuid.UUID
}

// Validate checks the filter combination once at the boundary.
func (f Filters) Validate() error {
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "min price must be >= 0")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "max price must be >= 0")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return pkgerrors.New(pkgerrors.CodeValidation, "min price cannot exceed max price")
	}
	if f.Availability != nil && !f.Availability.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown availability %q", *f.Availability))
	}
	if f.Quality != nil && !f.Quality.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown quality %q", *f.Quality))
	}
	if f.MinSuppliers < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min suppliers must be >= 0")
	}
	return nil
}

// matchRow is the per-row predicate composition. Category and MinSuppliers
// are product-level and handled by the engine, not here.
func (f Filters) matchRow(row Row) bool {
	if f.MinPrice != nil && row.FinalPrice.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && row.FinalPrice.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Availability != nil && row.Availability != *f.Availability {
		return false
	}
	if f.Quality != nil && row.Quality != *f.Quality {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(row.SupplierName), needle) &&
			!strings.Contains(strings.ToLower(row.ProductName), needle) {
			return false
		}
	}
	if f.OnlyLowestPrice && !row.IsLowestPrice {
		return false
	}
	if f.OnlyFeatured && !row.IsFeatured {
		return false
	}
	return true
}
