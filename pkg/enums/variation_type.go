package enums

import "fmt"

// VariationType groups product variation options (size, scent, packaging, ...).
type VariationType string

const (
	VariationTypeSize      VariationType = "size"
	VariationTypeType      VariationType = "type"
	VariationTypeScent     VariationType = "scent"
	VariationTypePackaging VariationType = "packaging"
	VariationTypeMaterial  VariationType = "material"
	VariationTypeFlavor    VariationType = "flavor"
	VariationTypeOther     VariationType = "other"
)

var validVariationTypes = []VariationType{
	VariationTypeSize,
	VariationTypeType,
	VariationTypeScent,
	VariationTypePackaging,
	VariationTypeMaterial,
	VariationTypeFlavor,
	VariationTypeOther,
}

// String implements fmt.Stringer.
func (v VariationType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VariationType.
func (v VariationType) IsValid() bool {
	for _, candidate := range validVariationTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVariationType converts raw input into a VariationType.
func ParseVariationType(value string) (VariationType, error) {
	for _, candidate := range validVariationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variation type %q", value)
}
