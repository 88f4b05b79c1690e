package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/halmarket/halmarket-backend/api/responses"
	"github.com/halmarket/halmarket-backend/api/validators"
	"github.com/halmarket/halmarket-backend/internal/repeatorder"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
	"github.com/halmarket/halmarket-backend/pkg/logger"
)

// ValidateRepeatOrder revalidates a past order's lines against current
// offers and prices.
func ValidateRepeatOrder(svc repeatorder.Validator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "repeat order validator unavailable"))
			return
		}

		var payload validateRepeatOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}
		regionID, err := uuid.Parse(payload.RegionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid region id"))
			return
		}
		customerType, err := enums.ParseCustomerType(payload.CustomerType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer type"))
			return
		}

		ctx := logg.WithRegionID(r.Context(), regionID.String())
		ctx = logg.WithCustomerType(ctx, customerType.String())

		result, err := svc.ValidateOrder(ctx, orderID, regionID, customerType)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type validateRepeatOrderRequest struct {
	OrderID      string `json:"order_id" validate:"required,uuid"`
	RegionID     string `json:"region_id" validate:"required,uuid"`
	CustomerType string `json:"customer_type" validate:"required,oneof=b2b b2c"`
}
