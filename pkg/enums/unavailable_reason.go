package enums

import "fmt"

// UnavailableReason explains why a historical order line cannot be repeated.
// The set is closed: any condition that does not map cleanly onto one of
// these values is classified conservatively as unavailable rather than
// guessed to be repeatable.
type UnavailableReason string

const (
	UnavailableReasonProductNotFound       UnavailableReason = "product_not_found"
	UnavailableReasonProductInactive       UnavailableReason = "product_inactive"
	UnavailableReasonNotInRegion           UnavailableReason = "not_in_region"
	UnavailableReasonOutOfStock            UnavailableReason = "out_of_stock"
	UnavailableReasonBelowMinOrderQuantity UnavailableReason = "below_min_order_quantity"
	UnavailableReasonSupplierDiscontinued  UnavailableReason = "supplier_discontinued"
	UnavailableReasonRegionChanged         UnavailableReason = "region_changed"
)

var validUnavailableReasons = []UnavailableReason{
	UnavailableReasonProductNotFound,
	UnavailableReasonProductInactive,
	UnavailableReasonNotInRegion,
	UnavailableReasonOutOfStock,
	UnavailableReasonBelowMinOrderQuantity,
	UnavailableReasonSupplierDiscontinued,
	UnavailableReasonRegionChanged,
}

var unavailableReasonMessages = map[UnavailableReason]string{
	UnavailableReasonProductNotFound:       "this product is no longer sold",
	UnavailableReasonProductInactive:       "this product is temporarily disabled",
	UnavailableReasonNotInRegion:           "this product is not available in your region",
	UnavailableReasonOutOfStock:            "this product is currently out of stock",
	UnavailableReasonBelowMinOrderQuantity: "the ordered quantity is below the supplier minimum",
	UnavailableReasonSupplierDiscontinued:  "the previous supplier no longer offers this product",
	UnavailableReasonRegionChanged:         "this product is unavailable because your region changed",
}

// String implements fmt.Stringer.
func (r UnavailableReason) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UnavailableReason.
func (r UnavailableReason) IsValid() bool {
	for _, candidate := range validUnavailableReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// Message returns the buyer-facing explanation for the reason.
func (r UnavailableReason) Message() string {
	if msg, ok := unavailableReasonMessages[r]; ok {
		return msg
	}
	return "this product is currently unavailable"
}

// ParseUnavailableReason converts raw input into an UnavailableReason.
func ParseUnavailableReason(value string) (UnavailableReason, error) {
	for _, candidate := range validUnavailableReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unavailable reason %q", value)
}
