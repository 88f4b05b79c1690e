package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/pkg/config"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
)

// Policy maps a customer class to its commission rate. Rates are injected at
// construction from configuration and never read from globals, so tests can
// substitute them deterministically.
type Policy struct {
	rates map[enums.CustomerType]decimal.Decimal
}

// NewPolicy builds a commission policy from the configured rates.
func NewPolicy(cfg config.CommissionConfig) (*Policy, error) {
	b2b := decimal.NewFromFloat(cfg.B2BRate)
	b2c := decimal.NewFromFloat(cfg.B2CRate)
	for name, rate := range map[string]decimal.Decimal{"b2b": b2b, "b2c": b2c} {
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("commission rate %s must be in [0,1), got %s", name, rate)
		}
	}
	return &Policy{
		rates: map[enums.CustomerType]decimal.Decimal{
			enums.CustomerTypeB2B: b2b,
			enums.CustomerTypeB2C: b2c,
		},
	}, nil
}

// RateFor returns the commission rate for the given customer class. Unknown
// classes are rejected, never defaulted.
func (p *Policy) RateFor(customerType enums.CustomerType) (decimal.Decimal, error) {
	rate, ok := p.rates[customerType]
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown customer type %q", customerType))
	}
	return rate, nil
}
