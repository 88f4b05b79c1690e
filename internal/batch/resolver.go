package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/internal/pricing"
	"github.com/halmarket/halmarket-backend/pkg/db/models"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
	"github.com/halmarket/halmarket-backend/pkg/logger"
	"github.com/halmarket/halmarket-backend/pkg/metrics"
)

// Item is one batch input: a product and an optional quantity. A zero
// quantity means "price only", no line total.
type Item struct {
	ProductID uuid.UUID
	Quantity  int
}

// LineResult pairs the resolved price with the requested quantity and its
// line total.
type LineResult struct {
	pricing.Result
	Quantity  int              `json:"quantity,omitempty"`
	LineTotal *decimal.Decimal `json:"line_total,omitempty"`
}

// Outcome reports the partial-success shape of one batch run. Failed items
// are absent from Results and listed in Failures with their reason.
type Outcome struct {
	Results   map[uuid.UUID]*LineResult `json:"results"`
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
	Failures  map[uuid.UUID]string      `json:"failures,omitempty"`
}

// CheapestResult is the winning offer and its price for cart add.
type CheapestResult struct {
	Offer  models.SupplierOffer `json:"offer"`
	Result pricing.Result       `json:"result"`
}

// Resolver prices many products at once and picks cheapest offers for carts.
type Resolver interface {
	ResolveMany(ctx context.Context, items []Item, regionID uuid.UUID, customerType enums.CustomerType) (*Outcome, error)
	ResolveCheapest(ctx context.Context, productID, regionID uuid.UUID, customerType enums.CustomerType) (*CheapestResult, error)
}

type offerStore interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	GetRegion(ctx context.Context, regionID uuid.UUID) (*models.Region, error)
	ListActiveOffers(ctx context.Context, productID, regionID uuid.UUID) ([]models.SupplierOffer, error)
}

type resolver struct {
	store       offerStore
	policy      *pricing.Policy
	metrics     *metrics.PricingMetrics
	logg        *logger.Logger
	concurrency int
	itemTimeout time.Duration
}

// NewResolver constructs a batch price resolver. Concurrency bounds the
// fan-out against the offer store; itemTimeout caps each per-item read.
func NewResolver(store offerStore, policy *pricing.Policy, pricingMetrics *metrics.PricingMetrics, logg *logger.Logger, concurrency int, itemTimeout time.Duration) (Resolver, error) {
	if store == nil {
		return nil, fmt.Errorf("offer store required")
	}
	if policy == nil {
		return nil, fmt.Errorf("commission policy required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be > 0, got %d", concurrency)
	}
	if itemTimeout <= 0 {
		return nil, fmt.Errorf("item timeout must be > 0, got %s", itemTimeout)
	}
	return &resolver{
		store:       store,
		policy:      policy,
		metrics:     pricingMetrics,
		logg:        logg,
		concurrency: concurrency,
		itemTimeout: itemTimeout,
	}, nil
}

// ResolveMany prices each item independently with a bounded worker fan-out.
// One item failing, timing out, or having no offers never aborts the batch;
// the item is recorded in Failures and omitted from Results.
func (r *resolver) ResolveMany(ctx context.Context, items []Item, regionID uuid.UUID, customerType enums.CustomerType) (*Outcome, error) {
	if _, err := r.policy.RateFor(customerType); err != nil {
		return nil, err
	}
	region, err := r.store.GetRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	outcome := &Outcome{
		Results:  make(map[uuid.UUID]*LineResult, len(items)),
		Failures: make(map[uuid.UUID]string),
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, r.concurrency)
	)

	for _, item := range items {
		wg.Add(1)
		go func(item Item) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := r.resolveOne(ctx, item, region, customerType)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcome.Failed++
				outcome.Failures[item.ProductID] = failureReason(err)
				itemCtx := r.logg.WithProductID(ctx, item.ProductID.String())
				r.logg.Warn(itemCtx, "batch item not priced")
				return
			}
			outcome.Succeeded++
			outcome.Results[item.ProductID] = result
		}(item)
	}
	wg.Wait()

	r.metrics.ObserveBatchDuration("resolve_many", time.Since(started))
	r.metrics.AddItemSuccess("resolve_many", outcome.Succeeded)
	r.metrics.AddItemFailure("resolve_many", outcome.Failed)
	return outcome, nil
}

func (r *resolver) resolveOne(ctx context.Context, item Item, region *models.Region, customerType enums.CustomerType) (*LineResult, error) {
	itemCtx, cancel := context.WithTimeout(ctx, r.itemTimeout)
	defer cancel()

	cheapest, err := r.cheapestFor(itemCtx, item.ProductID, region, customerType)
	if err != nil {
		return nil, err
	}

	line := &LineResult{Result: cheapest.Result, Quantity: item.Quantity}
	if item.Quantity > 0 {
		total := cheapest.Result.FinalPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		line.LineTotal = &total
	}
	return line, nil
}

// ResolveCheapest returns the minimum final price across the product's
// active offers. On an exact tie the first offer in store enumeration order
// wins; the store guarantees a stable order.
func (r *resolver) ResolveCheapest(ctx context.Context, productID, regionID uuid.UUID, customerType enums.CustomerType) (*CheapestResult, error) {
	if _, err := r.policy.RateFor(customerType); err != nil {
		return nil, err
	}
	region, err := r.store.GetRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}
	return r.cheapestFor(ctx, productID, region, customerType)
}

func (r *resolver) cheapestFor(ctx context.Context, productID uuid.UUID, region *models.Region, customerType enums.CustomerType) (*CheapestResult, error) {
	product, err := r.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "product is not active")
	}

	offers, err := r.store.ListActiveOffers(ctx, productID, region.ID)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "product has no active offers in this region")
	}

	var best *CheapestResult
	for i := range offers {
		result, err := pricing.BuildResult(product, region, &offers[i], decimal.Zero, customerType, r.policy)
		if err != nil {
			return nil, err
		}
		// strict less-than keeps the first offer on exact ties
		if best == nil || result.FinalPrice.LessThan(best.Result.FinalPrice) {
			best = &CheapestResult{Offer: offers[i], Result: *result}
		}
	}
	return best, nil
}

func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return err.Error()
}
