package comparison

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/internal/pricing"
	"github.com/halmarket/halmarket-backend/pkg/db/models"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
	"github.com/halmarket/halmarket-backend/pkg/logger"
	"github.com/halmarket/halmarket-backend/pkg/metrics"
	"github.com/halmarket/halmarket-backend/pkg/pagination"
	"github.com/halmarket/halmarket-backend/pkg/redis"
)

// Row is one supplier's priced offer inside a comparison. Market carries the
// same product-level statistics on every row so a row is self-describing in
// list views.
type Row struct {
	pricing.Result
	IsLowestPrice bool  `json:"is_lowest_price"`
	Market        Stats `json:"market"`
}

// Stats summarizes the final prices across one product's active suppliers.
// The average is unweighted, one value per supplier.
type Stats struct {
	MinPrice      decimal.Decimal `json:"min_price"`
	MaxPrice      decimal.Decimal `json:"max_price"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
	SupplierCount int             `json:"supplier_count"`
}

// ProductGroup is the "one product, many offers" browse view.
type ProductGroup struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category"`
	Unit        string    `json:"unit"`
	Rows        []Row     `json:"rows"`
	Market      Stats     `json:"market"`
}

// GroupedResult is a cursor-paginated slice of product groups.
type GroupedResult struct {
	Groups     []ProductGroup `json:"groups"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// Engine ranks competing supplier offers for a product.
type Engine interface {
	Compare(ctx context.Context, productID, regionID uuid.UUID, customerType enums.CustomerType, filters Filters) ([]Row, *Stats, error)
	CompareGrouped(ctx context.Context, regionID uuid.UUID, customerType enums.CustomerType, filters Filters, params pagination.Params) (*GroupedResult, error)
	PriceStats(ctx context.Context, productID, regionID uuid.UUID, customerType enums.CustomerType) (*Stats, error)
}

type offerStore interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetRegion(ctx context.Context, regionID uuid.UUID) (*models.Region, error)
	GetVariation(ctx context.Context, variationID uuid.UUID) (*models.VariationOption, error)
	ListActiveOffers(ctx context.Context, productID, regionID uuid.UUID) ([]models.SupplierOffer, error)
	ListCatalog(ctx context.Context, regionID uuid.UUID, params pagination.Params) ([]models.Product, string, error)
}

type engine struct {
	store    offerStore
	policy   *pricing.Policy
	cache    redis.StatsCache
	metrics  *metrics.PricingMetrics
	logg     *logger.Logger
	cacheTTL time.Duration
}

// NewEngine constructs a comparison engine. The stats cache is optional; a
// nil cache disables caching without changing results.
func NewEngine(store offerStore, policy *pricing.Policy, cache redis.StatsCache, pricingMetrics *metrics.PricingMetrics, logg *logger.Logger, cacheTTL time.Duration) (Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("offer store required")
	}
	if policy == nil {
		return nil, fmt.Errorf("commission policy required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &engine{
		store:    store,
		policy:   policy,
		cache:    cache,
		metrics:  pricingMetrics,
		logg:     logg,
		cacheTTL: cacheTTL,
	}, nil
}

// Compare prices every active offer for the product from a single snapshot
// fetch and flags all exact minimum-price ties as lowest. Zero active offers
// yields an empty set, not an error.
func (e *engine) Compare(ctx context.Context, productID, regionID uuid.UUID, customerType enums.CustomerType, filters Filters) ([]Row, *Stats, error) {
	if err := filters.Validate(); err != nil {
		return nil, nil, err
	}

	product, err := e.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	region, err := e.store.GetRegion(ctx, regionID)
	if err != nil {
		return nil, nil, err
	}

	rows, stats, err := e.compareProduct(ctx, product, region, customerType, filters)
	if err != nil {
		return nil, nil, err
	}

	e.metrics.ObserveComparisonRows("compare", len(rows))
	return rows, stats, nil
}

func (e *engine) compareProduct(ctx context.Context, product *models.Product, region *models.Region, customerType enums.CustomerType, filters Filters) ([]Row, *Stats, error) {
	if !product.IsActive {
		return []Row{}, &Stats{}, nil
	}
	if filters.Category != "" && product.Category != filters.Category {
		return []Row{}, &Stats{}, nil
	}

	adjustment := decimal.Zero
	if filters.VariationID != nil {
		variation, err := e.store.GetVariation(ctx, *filters.VariationID)
		if err != nil {
			return nil, nil, err
		}
		if variation.ProductID != product.ID {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "variation does not belong to product")
		}
		adjustment = variation.PriceAdjustment
	}

	// single snapshot fetch; statistics and flags all derive from it
	offers, err := e.store.ListActiveOffers(ctx, product.ID, region.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(offers) == 0 || len(offers) < filters.MinSuppliers {
		return []Row{}, &Stats{}, nil
	}

	rows := make([]Row, 0, len(offers))
	for i := range offers {
		result, err := pricing.BuildResult(product, region, &offers[i], adjustment, customerType, e.policy)
		if err != nil {
			return nil, nil, err
		}
		if result.Clamped {
			warnCtx := e.logg.WithProductID(ctx, product.ID.String())
			e.logg.Warn(warnCtx, "negative base price clamped to zero")
		}
		rows = append(rows, Row{Result: *result})
	}

	stats := computeStats(rows)
	for i := range rows {
		rows[i].IsLowestPrice = rows[i].FinalPrice.Equal(stats.MinPrice)
		rows[i].Market = stats
	}

	filtered := rows[:0]
	for _, row := range rows {
		if filters.matchRow(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered, &stats, nil
}

// CompareGrouped runs the comparison across the region catalog, one group
// per product. Group membership never changes per-row statistics.
func (e *engine) CompareGrouped(ctx context.Context, regionID uuid.UUID, customerType enums.CustomerType, filters Filters, params pagination.Params) (*GroupedResult, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	region, err := e.store.GetRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}

	products, next, err := e.store.ListCatalog(ctx, regionID, params)
	if err != nil {
		return nil, err
	}

	groups := make([]ProductGroup, 0, len(products))
	total := 0
	for i := range products {
		rows, stats, err := e.compareProduct(ctx, &products[i], region, customerType, filters)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}
		total += len(rows)
		groups = append(groups, ProductGroup{
			ProductID:   products[i].ID,
			ProductName: products[i].Name,
			Category:    products[i].Category,
			Unit:        products[i].Unit,
			Rows:        rows,
			Market:      *stats,
		})
	}

	e.metrics.ObserveComparisonRows("compare_grouped", total)
	return &GroupedResult{Groups: groups, NextCursor: next}, nil
}

// PriceStats returns the product's market statistics, cached for a short TTL
// when a cache is configured.
func (e *engine) PriceStats(ctx context.Context, productID, regionID uuid.UUID, customerType enums.CustomerType) (*Stats, error) {
	var key string
	if e.cache != nil {
		key = e.cache.PriceStatsKey(productID.String(), regionID.String(), customerType.String())
		if raw, err := e.cache.Get(ctx, key); err == nil {
			var cached Stats
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			e.logg.Warn(ctx, "price stats cache read failed")
		}
	}

	_, stats, err := e.Compare(ctx, productID, regionID, customerType, Filters{})
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := e.cache.Set(ctx, key, payload, e.cacheTTL); err != nil {
				e.logg.Warn(ctx, "price stats cache write failed")
			}
		}
	}
	return stats, nil
}

func computeStats(rows []Row) Stats {
	if len(rows) == 0 {
		return Stats{}
	}

	min := rows[0].FinalPrice
	max := rows[0].FinalPrice
	sum := decimal.Zero
	for _, row := range rows {
		if row.FinalPrice.LessThan(min) {
			min = row.FinalPrice
		}
		if row.FinalPrice.GreaterThan(max) {
			max = row.FinalPrice
		}
		sum = sum.Add(row.FinalPrice)
	}
	return Stats{
		MinPrice:      min,
		MaxPrice:      max,
		AvgPrice:      sum.Div(decimal.NewFromInt(int64(len(rows)))).Round(2),
		SupplierCount: len(rows),
	}
}
