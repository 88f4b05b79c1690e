package enums

import "fmt"

// CustomerType identifies the buyer class used for commission lookup.
type CustomerType string

const (
	CustomerTypeB2B CustomerType = "b2b"
	CustomerTypeB2C CustomerType = "b2c"
)

var validCustomerTypes = []CustomerType{
	CustomerTypeB2B,
	CustomerTypeB2C,
}

// String implements fmt.Stringer.
func (c CustomerType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CustomerType.
func (c CustomerType) IsValid() bool {
	for _, candidate := range validCustomerTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCustomerType converts raw input into a CustomerType.
func ParseCustomerType(value string) (CustomerType, error) {
	for _, candidate := range validCustomerTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid customer type %q", value)
}
