package batch

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/internal/pricing"
	"github.com/halmarket/halmarket-backend/pkg/config"
	"github.com/halmarket/halmarket-backend/pkg/db/models"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
	"github.com/halmarket/halmarket-backend/pkg/logger"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

type stubStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
	region   *models.Region
	offers   map[uuid.UUID][]models.SupplierOffer

	inFlight    int32
	maxInFlight int32
	delay       time.Duration
	slowProduct uuid.UUID
}

func (s *stubStore) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	product, ok := s.products[productID]
	s.mu.Unlock()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *stubStore) GetRegion(ctx context.Context, regionID uuid.UUID) (*models.Region, error) {
	if s.region == nil || s.region.ID != regionID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
	}
	return s.region, nil
}

func (s *stubStore) ListActiveOffers(ctx context.Context, productID, regionID uuid.UUID) ([]models.SupplierOffer, error) {
	current := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		max := atomic.LoadInt32(&s.maxInFlight)
		if current <= max || atomic.CompareAndSwapInt32(&s.maxInFlight, max, current) {
			break
		}
	}

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if productID == s.slowProduct {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offers[productID], nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
}

func testPolicy(t *testing.T) *pricing.Policy {
	t.Helper()
	policy, err := pricing.NewPolicy(config.CommissionConfig{B2BRate: 0.30, B2CRate: 0.50})
	if err != nil {
		t.Fatalf("build policy: %v", err)
	}
	return policy
}

func newFixture(productCount int) (*stubStore, []uuid.UUID) {
	region := &models.Region{ID: uuid.New(), Name: "Kadikoy", RegionalMultiplier: d("1.0")}
	store := &stubStore{
		products: map[uuid.UUID]*models.Product{},
		offers:   map[uuid.UUID][]models.SupplierOffer{},
		region:   region,
	}

	ids := make([]uuid.UUID, 0, productCount)
	for i := 0; i < productCount; i++ {
		product := &models.Product{ID: uuid.New(), Name: "Urun", IsActive: true}
		store.products[product.ID] = product
		store.offers[product.ID] = []models.SupplierOffer{{
			ID:               uuid.New(),
			SupplierID:       uuid.New(),
			SupplierName:     "Tedarikci",
			ProductID:        product.ID,
			RegionID:         region.ID,
			Price:            d("100"),
			StockQuantity:    10,
			Availability:     enums.AvailabilityPlenty,
			MinOrderQuantity: 1,
			IsActive:         true,
			Quality:          enums.OfferQualityStandard,
			PriceChange:      enums.PriceChangeStable,
		}}
		ids = append(ids, product.ID)
	}
	return store, ids
}

func newResolver(t *testing.T, store *stubStore, concurrency int, timeout time.Duration) Resolver {
	t.Helper()
	resolver, err := NewResolver(store, testPolicy(t), nil, testLogger(), concurrency, timeout)
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}
	return resolver
}

func TestResolveManyPartialSuccess(t *testing.T) {
	store, ids := newFixture(3)
	// one product with zero offers
	store.offers[ids[1]] = nil
	resolver := newResolver(t, store, 4, time.Second)

	items := []Item{{ProductID: ids[0]}, {ProductID: ids[1]}, {ProductID: ids[2]}}
	outcome, err := resolver.ResolveMany(context.Background(), items, store.region.ID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outcome.Succeeded != 2 || outcome.Failed != 1 {
		t.Fatalf("succeeded/failed = %d/%d, want 2/1", outcome.Succeeded, outcome.Failed)
	}
	if _, ok := outcome.Results[ids[1]]; ok {
		t.Fatalf("failed item must be absent from results")
	}
	if reason, ok := outcome.Failures[ids[1]]; !ok || reason != string(pkgerrors.CodeUnavailable) {
		t.Fatalf("failure reason = %q", reason)
	}
	for _, id := range []uuid.UUID{ids[0], ids[2]} {
		result, ok := outcome.Results[id]
		if !ok {
			t.Fatalf("missing result for %s", id)
		}
		if !result.FinalPrice.Equal(d("130.00")) {
			t.Fatalf("final price = %s", result.FinalPrice)
		}
	}
}

func TestResolveManyQuantitiesProduceLineTotals(t *testing.T) {
	store, ids := newFixture(1)
	resolver := newResolver(t, store, 2, time.Second)

	outcome, err := resolver.ResolveMany(context.Background(), []Item{{ProductID: ids[0], Quantity: 3}}, store.region.ID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := outcome.Results[ids[0]]
	if result == nil || result.LineTotal == nil {
		t.Fatalf("expected line total")
	}
	if !result.LineTotal.Equal(d("390.00")) {
		t.Fatalf("line total = %s, want 390.00", result.LineTotal)
	}
}

func TestResolveManyBoundsConcurrency(t *testing.T) {
	store, ids := newFixture(12)
	store.delay = 10 * time.Millisecond
	resolver := newResolver(t, store, 3, time.Second)

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, Item{ProductID: id})
	}
	outcome, err := resolver.ResolveMany(context.Background(), items, store.region.ID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Succeeded != 12 {
		t.Fatalf("succeeded = %d, want 12", outcome.Succeeded)
	}
	if max := atomic.LoadInt32(&store.maxInFlight); max > 3 {
		t.Fatalf("observed %d concurrent store reads, limit is 3", max)
	}
}

func TestResolveManyItemTimeoutIsIsolated(t *testing.T) {
	store, ids := newFixture(3)
	store.slowProduct = ids[1]
	resolver := newResolver(t, store, 4, 30*time.Millisecond)

	items := []Item{{ProductID: ids[0]}, {ProductID: ids[1]}, {ProductID: ids[2]}}
	outcome, err := resolver.ResolveMany(context.Background(), items, store.region.ID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Succeeded != 2 || outcome.Failed != 1 {
		t.Fatalf("succeeded/failed = %d/%d, want 2/1", outcome.Succeeded, outcome.Failed)
	}
	if _, ok := outcome.Failures[ids[1]]; !ok {
		t.Fatalf("timed out item missing from failures")
	}
}

func TestResolveManyUnknownCustomerType(t *testing.T) {
	store, ids := newFixture(1)
	resolver := newResolver(t, store, 2, time.Second)

	_, err := resolver.ResolveMany(context.Background(), []Item{{ProductID: ids[0]}}, store.region.ID, enums.CustomerType("guest"))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveCheapestFirstEncounteredWinsTies(t *testing.T) {
	store, ids := newFixture(1)
	productID := ids[0]
	region := store.region

	tied := store.offers[productID][0]
	second := tied
	second.ID = uuid.New()
	second.SupplierID = uuid.New()
	second.SupplierName = "Ikinci"
	expensive := tied
	expensive.ID = uuid.New()
	expensive.SupplierID = uuid.New()
	expensive.SupplierName = "Pahali"
	expensive.Price = d("120")
	store.offers[productID] = []models.SupplierOffer{tied, second, expensive}

	resolver := newResolver(t, store, 2, time.Second)
	result, err := resolver.ResolveCheapest(context.Background(), productID, region.ID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Offer.ID != tied.ID {
		t.Fatalf("expected first tied offer to win, got %s", result.Offer.SupplierName)
	}
	if !result.Result.FinalPrice.Equal(d("130.00")) {
		t.Fatalf("final price = %s", result.Result.FinalPrice)
	}
}

func TestResolveCheapestNoOffersIsUnavailable(t *testing.T) {
	store, ids := newFixture(1)
	store.offers[ids[0]] = nil
	resolver := newResolver(t, store, 2, time.Second)

	_, err := resolver.ResolveCheapest(context.Background(), ids[0], store.region.ID, enums.CustomerTypeB2B)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
