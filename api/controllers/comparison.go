package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/halmarket/halmarket-backend/api/responses"
	"github.com/halmarket/halmarket-backend/api/validators"
	"github.com/halmarket/halmarket-backend/internal/comparison"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
	"github.com/halmarket/halmarket-backend/pkg/logger"
	"github.com/halmarket/halmarket-backend/pkg/pagination"
)

// CompareOffers ranks every active offer for one product, or grouped across
// the catalog when grouped=true.
func CompareOffers(engine comparison.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comparison engine unavailable"))
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
		filters, err := filtersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		grouped, err := validators.ParseQueryBool(r, "grouped")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithRegionID(r.Context(), regionID.String())
		ctx = logg.WithCustomerType(ctx, customerType.String())

		if grouped {
			limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			result, err := engine.CompareGrouped(ctx, regionID, customerType, filters, pagination.Params{
				Limit:  limit,
				Cursor: r.URL.Query().Get("cursor"),
			})
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteSuccess(w, result)
			return
		}

		productID, err := validators.ParseQueryUUID(r, "product_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, stats, err := engine.Compare(ctx, productID, regionID, customerType, filters)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"offers": rows,
			"stats":  stats,
		})
	}
}

// PriceStats returns the cached min/max/avg snapshot for one product.
func PriceStats(engine comparison.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "comparison engine unavailable"))
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

		stats, err := engine.PriceStats(r.Context(), productID, regionID, customerType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

func filtersFromQuery(r *http.Request) (comparison.Filters, error) {
	var filters comparison.Filters

	filters.Category = strings.TrimSpace(r.URL.Query().Get("category"))
	filters.Search = strings.TrimSpace(r.URL.Query().Get("search"))

	minPrice, err := validators.ParseQueryOptionalDecimal(r, "min_price")
	if err != nil {
		return filters, err
	}
	filters.MinPrice = minPrice

	maxPrice, err := validators.ParseQueryOptionalDecimal(r, "max_price")
	if err != nil {
		return filters, err
	}
	filters.MaxPrice = maxPrice

	if raw := strings.TrimSpace(r.URL.Query().Get("availability")); raw != "" {
		availability, err := enums.ParseAvailability(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid availability")
		}
		filters.Availability = &availability
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("quality")); raw != "" {
		quality, err := enums.ParseOfferQuality(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quality")
		}
		filters.Quality = &quality
	}

	lowest, err := validators.ParseQueryBool(r, "only_lowest_price")
	if err != nil {
		return filters, err
	}
	filters.OnlyLowestPrice = lowest

	featured, err := validators.ParseQueryBool(r, "only_featured")
	if err != nil {
		return filters, err
	}
	filters.OnlyFeatured = featured

	if raw := strings.TrimSpace(r.URL.Query().Get("min_suppliers")); raw != "" {
		minSuppliers, err := strconv.Atoi(raw)
		if err != nil || minSuppliers < 0 {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "min_suppliers must be a non-negative integer")
		}
		filters.MinSuppliers = minSuppliers
	}

	variationID, err := validators.ParseQueryOptionalUUID(r, "variation_id")
	if err != nil {
		return filters, err
	}
	filters.VariationID = variationID

	if err := filters.Validate(); err != nil {
		return filters, err
	}
	return filters, nil
}
