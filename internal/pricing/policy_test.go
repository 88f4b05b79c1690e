package pricing

import (
	"testing"

	"github.com/halmarket/halmarket-backend/pkg/config"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
)

func TestPolicyRateFor(t *testing.T) {
	policy, err := NewPolicy(config.CommissionConfig{B2BRate: 0.30, B2CRate: 0.50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b2b, err := policy.RateFor(enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b2b.Equal(d("0.30")) {
		t.Fatalf("b2b rate = %s, want 0.30", b2b)
	}

	b2c, err := policy.RateFor(enums.CustomerTypeB2C)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b2c.Equal(d("0.50")) {
		t.Fatalf("b2c rate = %s, want 0.50", b2c)
	}
}

func TestPolicyRejectsUnknownCustomerType(t *testing.T) {
	policy, err := NewPolicy(config.CommissionConfig{B2BRate: 0.30, B2CRate: 0.50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := policy.RateFor(enums.CustomerType("wholesale")); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewPolicyRejectsInvalidRates(t *testing.T) {
	if _, err := NewPolicy(config.CommissionConfig{B2BRate: -0.1, B2CRate: 0.50}); err == nil {
		t.Fatalf("expected error for negative rate")
	}
	if _, err := NewPolicy(config.CommissionConfig{B2BRate: 0.30, B2CRate: 1.0}); err == nil {
		t.Fatalf("expected error for rate of one")
	}
}
