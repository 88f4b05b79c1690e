package controllers

import (
	"net/http"

	"github.com/halmarket/halmarket-backend/api/responses"
	"github.com/halmarket/halmarket-backend/api/validators"
	"github.com/halmarket/halmarket-backend/internal/offers"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
	"github.com/halmarket/halmarket-backend/pkg/logger"
	"github.com/halmarket/halmarket-backend/pkg/pagination"
)

// ListSupplierOffers returns the unpriced offers for one product in a region.
func ListSupplierOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
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

		summaries, err := svc.GetSupplierOffers(r.Context(), productID, regionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"offers": summaries})
	}
}

// BrowseCatalog pages through products that have at least one active offer in
// the region.
func BrowseCatalog(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		regionID, err := validators.ParseQueryUUID(r, "region_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.BrowseCatalog(r.Context(), regionID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
