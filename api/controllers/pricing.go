package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/halmarket/halmarket-backend/api/responses"
	"github.com/halmarket/halmarket-backend/api/validators"
	"github.com/halmarket/halmarket-backend/internal/batch"
	"github.com/halmarket/halmarket-backend/internal/pricing"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
	"github.com/halmarket/halmarket-backend/pkg/logger"
)

// CalculatePrice handles single price calculations.
func CalculatePrice(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload calculatePriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithProductID(r.Context(), input.ProductID.String())
		ctx = logg.WithRegionID(ctx, input.RegionID.String())
		ctx = logg.WithCustomerType(ctx, input.CustomerType.String())

		result, err := svc.CalculatePrice(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// BatchResolve prices many products in one request. Partial failures come
// back in the outcome body, not as an HTTP error.
func BatchResolve(resolver batch.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batch resolver unavailable"))
			return
		}

		var payload batchResolveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		regionID, customerType, err := payload.scope()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]batch.Item, 0, len(payload.Items))
		for _, item := range payload.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			items = append(items, batch.Item{ProductID: productID, Quantity: item.Quantity})
		}

		ctx := logg.WithRegionID(r.Context(), regionID.String())
		ctx = logg.WithCustomerType(ctx, customerType.String())

		outcome, err := resolver.ResolveMany(ctx, items, regionID, customerType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, outcome)
	}
}

// CheapestOffer resolves the lowest-priced active offer for cart add.
func CheapestOffer(resolver batch.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "batch resolver unavailable"))
			return
		}

		productID, err := parsePathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		regionID, err := validators.ParseQueryUUID(r, "region_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerType, err := queryCustomerType(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := resolver.ResolveCheapest(r.Context(), productID, regionID, customerType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type calculatePriceRequest struct {
	ProductID    string  `json:"product_id" validate:"required,uuid"`
	RegionID     string  `json:"region_id" validate:"required,uuid"`
	CustomerType string  `json:"customer_type" validate:"required,oneof=b2b b2c"`
	VariationID  *string `json:"variation_id,omitempty" validate:"omitempty,uuid"`
	SupplierID   *string `json:"supplier_id,omitempty" validate:"omitempty,uuid"`
}

func (req calculatePriceRequest) toInput() (pricing.CalculatePriceInput, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return pricing.CalculatePriceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	regionID, err := uuid.Parse(req.RegionID)
	if err != nil {
		return pricing.CalculatePriceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid region id")
	}
	customerType, err := enums.ParseCustomerType(req.CustomerType)
	if err != nil {
		return pricing.CalculatePriceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer type")
	}

	input := pricing.CalculatePriceInput{
		ProductID:    productID,
		RegionID:     regionID,
		CustomerType: customerType,
	}
	if req.VariationID != nil {
		variationID, err := uuid.Parse(*req.VariationID)
		if err != nil {
			return pricing.CalculatePriceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variation id")
		}
		input.VariationID = &variationID
	}
	if req.SupplierID != nil {
		supplierID, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return pricing.CalculatePriceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
		}
		input.SupplierID = &supplierID
	}
	return input, nil
}

type batchResolveRequest struct {
	RegionID     string             `json:"region_id" validate:"required,uuid"`
	CustomerType string             `json:"customer_type" validate:"required,oneof=b2b b2c"`
	Items        []batchItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

type batchItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
}

func (req batchResolveRequest) scope() (uuid.UUID, enums.CustomerType, error) {
	regionID, err := uuid.Parse(req.RegionID)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid region id")
	}
	customerType, err := enums.ParseCustomerType(req.CustomerType)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer type")
	}
	return regionID, customerType, nil
}
