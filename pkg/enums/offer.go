package enums

import "fmt"

// Availability describes how much stock a supplier reports for an offer.
type Availability string

const (
	AvailabilityPlenty  Availability = "plenty"
	AvailabilityLimited Availability = "limited"
	AvailabilityLast    Availability = "last"
)

var validAvailabilities = []Availability{
	AvailabilityPlenty,
	AvailabilityLimited,
	AvailabilityLast,
}

// String implements fmt.Stringer.
func (a Availability) String() string {
	return string(a)
}

// IsValid reports whether the value is a known Availability.
func (a Availability) IsValid() bool {
	for _, candidate := range validAvailabilities {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAvailability converts raw input into an Availability.
func ParseAvailability(value string) (Availability, error) {
	for _, candidate := range validAvailabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid availability %q", value)
}

// OfferQuality is the supplier-declared quality grade of an offer.
type OfferQuality string

const (
	OfferQualityPremium  OfferQuality = "premium"
	OfferQualityStandard OfferQuality = "standard"
	OfferQualityEconomy  OfferQuality = "economy"
)

var validOfferQualities = []OfferQuality{
	OfferQualityPremium,
	OfferQualityStandard,
	OfferQualityEconomy,
}

// String implements fmt.Stringer.
func (q OfferQuality) String() string {
	return string(q)
}

// IsValid reports whether the value is a known OfferQuality.
func (q OfferQuality) IsValid() bool {
	for _, candidate := range validOfferQualities {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseOfferQuality converts raw input into an OfferQuality.
func ParseOfferQuality(value string) (OfferQuality, error) {
	for _, candidate := range validOfferQualities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer quality %q", value)
}

// PriceChange captures the direction of the last price move on an offer.
type PriceChange string

const (
	PriceChangeIncreased PriceChange = "increased"
	PriceChangeDecreased PriceChange = "decreased"
	PriceChangeStable    PriceChange = "stable"
)

var validPriceChanges = []PriceChange{
	PriceChangeIncreased,
	PriceChangeDecreased,
	PriceChangeStable,
}

// String implements fmt.Stringer.
func (p PriceChange) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PriceChange.
func (p PriceChange) IsValid() bool {
	for _, candidate := range validPriceChanges {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePriceChange converts raw input into a PriceChange.
func ParsePriceChange(value string) (PriceChange, error) {
	for _, candidate := range validPriceChanges {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price change %q", value)
}
