package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/pkg/db/models"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
	"github.com/halmarket/halmarket-backend/pkg/logger"
)

// Service exposes single price calculations.
type Service interface {
	CalculatePrice(ctx context.Context, input CalculatePriceInput) (*Result, error)
}

// CalculatePriceInput addresses one offer through required and optional
// narrowing filters. Omitting SupplierID is an error when more than one
// active supplier matches.
type CalculatePriceInput struct {
	ProductID    uuid.UUID
	RegionID     uuid.UUID
	CustomerType enums.CustomerType
	VariationID  *uuid.UUID
	SupplierID   *uuid.UUID
}

// Result is the ephemeral outcome of one price calculation. It is never
// persisted. B2BPrice and B2CPrice carry both customer classes so callers can
// display either without recomputing; FinalPrice is the class-selected one.
type Result struct {
	ProductID    uuid.UUID `json:"product_id"`
	ProductName  string    `json:"product_name"`
	SupplierID   uuid.UUID `json:"supplier_id"`
	SupplierName string    `json:"supplier_name"`
	RegionID     uuid.UUID `json:"region_id"`
	RegionName   string    `json:"region_name"`

	SupplierPrice       decimal.Decimal `json:"supplier_price"`
	RegionalMultiplier  decimal.Decimal `json:"regional_multiplier"`
	VariationAdjustment decimal.Decimal `json:"variation_adjustment"`
	BasePrice           decimal.Decimal `json:"base_price"`
	CommissionRate      decimal.Decimal `json:"commission_rate"`
	CommissionAmount    decimal.Decimal `json:"commission_amount"`
	FinalPrice          decimal.Decimal `json:"final_price"`
	B2BPrice            decimal.Decimal `json:"b2b_price"`
	B2CPrice            decimal.Decimal `json:"b2c_price"`
	Clamped             bool            `json:"clamped,omitempty"`

	StockQuantity    int                `json:"stock_quantity"`
	Availability     enums.Availability `json:"availability"`
	IsAvailable      bool               `json:"is_available"`
	MinOrderQuantity int                `json:"min_order_quantity"`
	PriceChange      enums.PriceChange  `json:"price_change"`
	IsFeatured       bool               `json:"is_featured"`
	Quality          enums.OfferQuality `json:"quality"`
	CalculatedAt     time.Time          `json:"calculated_at"`
}

type offerStore interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetRegion(ctx context.Context, regionID uuid.UUID) (*models.Region, error)
	GetVariation(ctx context.Context, variationID uuid.UUID) (*models.VariationOption, error)
	ListActiveOffers(ctx context.Context, productID, regionID uuid.UUID) ([]models.SupplierOffer, error)
	GetOffer(ctx context.Context, productID, regionID, supplierID uuid.UUID) (*models.SupplierOffer, error)
}

type service struct {
	store  offerStore
	policy *Policy
	logg   *logger.Logger
}

// NewService constructs a pricing service instance.
func NewService(store offerStore, policy *Policy, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("offer store required")
	}
	if policy == nil {
		return nil, fmt.Errorf("commission policy required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, policy: policy, logg: logg}, nil
}

// CalculatePrice resolves the single offer addressed by the input filters and
// prices it. Zero matching offers is the typed unavailable outcome, not an
// internal error.
func (s *service) CalculatePrice(ctx context.Context, input CalculatePriceInput) (*Result, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.RegionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "region id required")
	}
	if _, err := s.policy.RateFor(input.CustomerType); err != nil {
		return nil, err
	}

	product, err := s.store.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "product is not active")
	}

	region, err := s.store.GetRegion(ctx, input.RegionID)
	if err != nil {
		return nil, err
	}

	adjustment := decimal.Zero
	if input.VariationID != nil {
		variation, err := s.store.GetVariation(ctx, *input.VariationID)
		if err != nil {
			return nil, err
		}
		if variation.ProductID != product.ID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation does not belong to product")
		}
		adjustment = variation.PriceAdjustment
	}

	offer, err := s.resolveOffer(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := BuildResult(product, region, offer, adjustment, input.CustomerType, s.policy)
	if err != nil {
		return nil, err
	}
	if result.Clamped {
		ctx = s.logg.WithProductID(ctx, product.ID.String())
		s.logg.Warn(ctx, "negative base price clamped to zero")
	}
	return result, nil
}

func (s *service) resolveOffer(ctx context.Context, input CalculatePriceInput) (*models.SupplierOffer, error) {
	if input.SupplierID != nil {
		offer, err := s.store.GetOffer(ctx, input.ProductID, input.RegionID, *input.SupplierID)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "supplier has no active offer for this product in this region")
			}
			return nil, err
		}
		return offer, nil
	}

	offers, err := s.store.ListActiveOffers(ctx, input.ProductID, input.RegionID)
	if err != nil {
		return nil, err
	}
	switch len(offers) {
	case 0:
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "product has no active offers in this region")
	case 1:
		return &offers[0], nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("ambiguous: %d active suppliers match, pass supplier_id", len(offers)))
	}
}

// BuildResult prices one offer for one customer class and fills in the
// fulfillment facts carried by the offer row.
func BuildResult(product *models.Product, region *models.Region, offer *models.SupplierOffer, adjustment decimal.Decimal, customerType enums.CustomerType, policy *Policy) (*Result, error) {
	rate, err := policy.RateFor(customerType)
	if err != nil {
		return nil, err
	}
	breakdown, err := Calculate(offer.Price, region.RegionalMultiplier, adjustment, rate)
	if err != nil {
		return nil, err
	}

	b2bRate, err := policy.RateFor(enums.CustomerTypeB2B)
	if err != nil {
		return nil, err
	}
	b2cRate, err := policy.RateFor(enums.CustomerTypeB2C)
	if err != nil {
		return nil, err
	}
	one := decimal.NewFromInt(1)
	b2bPrice := breakdown.BasePrice.Mul(one.Add(b2bRate)).Round(2)
	b2cPrice := breakdown.BasePrice.Mul(one.Add(b2cRate)).Round(2)

	return &Result{
		ProductID:    product.ID,
		ProductName:  product.Name,
		SupplierID:   offer.SupplierID,
		SupplierName: offer.SupplierName,
		RegionID:     region.ID,
		RegionName:   region.Name,

		SupplierPrice:       breakdown.SupplierPrice,
		RegionalMultiplier:  breakdown.RegionalMultiplier,
		VariationAdjustment: breakdown.VariationAdjustment,
		BasePrice:           breakdown.BasePrice,
		CommissionRate:      breakdown.CommissionRate,
		CommissionAmount:    breakdown.CommissionAmount,
		FinalPrice:          breakdown.FinalPrice,
		B2BPrice:            b2bPrice,
		B2CPrice:            b2cPrice,
		Clamped:             breakdown.Clamped,

		StockQuantity:    offer.StockQuantity,
		Availability:     offer.Availability,
		IsAvailable:      offer.IsActive && offer.StockQuantity > 0,
		MinOrderQuantity: offer.MinOrderQuantity,
		PriceChange:      offer.PriceChange,
		IsFeatured:       offer.IsFeatured,
		Quality:          offer.Quality,
		CalculatedAt:     time.Now().UTC(),
	}, nil
}
