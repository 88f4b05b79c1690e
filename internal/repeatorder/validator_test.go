package repeatorder

import (
	"context"
	"io"
	"testing"

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

type stubOrderStore struct {
	orders map[uuid.UUID]*models.OrderSnapshot
}

func (s *stubOrderStore) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderSnapshot, error) {
	if order, ok := s.orders[orderID]; ok {
		return order, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

type stubOfferStore struct {
	region   *models.Region
	products map[uuid.UUID]*models.Product
	offers   map[uuid.UUID][]models.SupplierOffer
}

func (s *stubOfferStore) GetRegion(ctx context.Context, regionID uuid.UUID) (*models.Region, error) {
	if s.region == nil || s.region.ID != regionID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
	}
	return s.region, nil
}

func (s *stubOfferStore) ListProductsByIDs(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, id := range productIDs {
		if product, ok := s.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (s *stubOfferStore) ListActiveOffersByProductIDs(ctx context.Context, productIDs []uuid.UUID, regionID uuid.UUID) ([]models.SupplierOffer, error) {
	var out []models.SupplierOffer
	for _, id := range productIDs {
		for _, offer := range s.offers[id] {
			if offer.RegionID == regionID && offer.IsActive {
				out = append(out, offer)
			}
		}
	}
	return out, nil
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

type fixture struct {
	orders *stubOrderStore
	store  *stubOfferStore
	order  *models.OrderSnapshot
}

// two-line order: Domates at 130.00/unit, Salatalik at 65.00/unit
func newFixture() *fixture {
	region := &models.Region{ID: uuid.New(), Name: "Kadikoy", RegionalMultiplier: d("1.0")}
	tomato := &models.Product{ID: uuid.New(), Name: "Domates", IsActive: true}
	cucumber := &models.Product{ID: uuid.New(), Name: "Salatalik", IsActive: true}

	offerFor := func(product *models.Product, price string, stock int) models.SupplierOffer {
		return models.SupplierOffer{
			ID:               uuid.New(),
			SupplierID:       uuid.New(),
			SupplierName:     "Yesil Tarim",
			ProductID:        product.ID,
			RegionID:         region.ID,
			Price:            d(price),
			StockQuantity:    stock,
			Availability:     enums.AvailabilityPlenty,
			MinOrderQuantity: 1,
			IsActive:         true,
			Quality:          enums.OfferQualityStandard,
			PriceChange:      enums.PriceChangeStable,
		}
	}

	store := &stubOfferStore{
		region: region,
		products: map[uuid.UUID]*models.Product{
			tomato.ID:   tomato,
			cucumber.ID: cucumber,
		},
		offers: map[uuid.UUID][]models.SupplierOffer{
			tomato.ID:   {offerFor(tomato, "100", 50)},
			cucumber.ID: {offerFor(cucumber, "50", 50)},
		},
	}

	order := &models.OrderSnapshot{
		ID:       uuid.New(),
		RegionID: region.ID,
		Lines: []models.OrderLineSnapshot{
			{ID: uuid.New(), ProductID: tomato.ID, ProductName: "Domates", Quantity: 2, UnitPrice: d("130.00")},
			{ID: uuid.New(), ProductID: cucumber.ID, ProductName: "Salatalik", Quantity: 4, UnitPrice: d("65.00")},
		},
	}

	return &fixture{
		orders: &stubOrderStore{orders: map[uuid.UUID]*models.OrderSnapshot{order.ID: order}},
		store:  store,
		order:  order,
	}
}

func newValidator(t *testing.T, f *fixture) Validator {
	t.Helper()
	v, err := NewValidator(f.orders, f.store, testPolicy(t), testLogger(), 0.20)
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}
	return v
}

func TestValidateAllLinesAvailable(t *testing.T) {
	f := newFixture()
	v := newValidator(t, f)

	result, err := v.ValidateOrder(context.Background(), f.order.ID, f.order.RegionID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.CanRepeat {
		t.Fatalf("expected repeatable order")
	}
	if len(result.AvailableLines) != 2 || len(result.UnavailableLines) != 0 {
		t.Fatalf("available/unavailable = %d/%d", len(result.AvailableLines), len(result.UnavailableLines))
	}
	// old: 2*130 + 4*65 = 520; new: 2*130 + 4*65 = 520
	if !result.TotalOldPrice.Equal(d("520.00")) || !result.TotalNewPrice.Equal(d("520.00")) {
		t.Fatalf("totals = %s / %s", result.TotalOldPrice, result.TotalNewPrice)
	}
	if result.PriceIncreased || result.SignificantPriceChange {
		t.Fatalf("no price movement expected")
	}
	for _, line := range result.AvailableLines {
		if line.PriceChanged {
			t.Fatalf("line %s flagged as changed", line.ProductName)
		}
	}
}

func TestValidateOneLineOutOfStock(t *testing.T) {
	f := newFixture()
	cucumberID := f.order.Lines[1].ProductID
	offers := f.store.offers[cucumberID]
	offers[0].StockQuantity = 0
	f.store.offers[cucumberID] = offers
	v := newValidator(t, f)

	result, err := v.ValidateOrder(context.Background(), f.order.ID, f.order.RegionID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.AvailableLines) != 1 || len(result.UnavailableLines) != 1 {
		t.Fatalf("available/unavailable = %d/%d, want 1/1", len(result.AvailableLines), len(result.UnavailableLines))
	}
	if !result.CanRepeat {
		t.Fatalf("one available line still allows repeating")
	}
	if result.UnavailableLines[0].Reason != enums.UnavailableReasonOutOfStock {
		t.Fatalf("reason = %s", result.UnavailableLines[0].Reason)
	}
	if result.UnavailableLines[0].Message == "" {
		t.Fatalf("expected a buyer-facing message")
	}
	// old spans both lines, new only the tomato line
	if !result.TotalOldPrice.Equal(d("520.00")) {
		t.Fatalf("old total = %s, want 520.00", result.TotalOldPrice)
	}
	if !result.TotalNewPrice.Equal(d("260.00")) {
		t.Fatalf("new total = %s, want 260.00", result.TotalNewPrice)
	}
	if result.PriceIncreased {
		t.Fatalf("price went down, not up")
	}
	if !result.SignificantPriceChange {
		t.Fatalf("a 50%% drop crosses the significant threshold")
	}
}

func TestValidateZeroAvailableStillReturnsResult(t *testing.T) {
	f := newFixture()
	for id := range f.store.offers {
		f.store.offers[id] = nil
	}
	v := newValidator(t, f)

	result, err := v.ValidateOrder(context.Background(), f.order.ID, f.order.RegionID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CanRepeat {
		t.Fatalf("expected can_repeat=false")
	}
	if len(result.UnavailableLines) != 2 {
		t.Fatalf("unavailable = %d, want 2", len(result.UnavailableLines))
	}
	for _, line := range result.UnavailableLines {
		if line.Reason != enums.UnavailableReasonNotInRegion {
			t.Fatalf("reason = %s", line.Reason)
		}
	}
}

func TestValidateReasonClassification(t *testing.T) {
	t.Run("productDeleted", func(t *testing.T) {
		f := newFixture()
		delete(f.store.products, f.order.Lines[0].ProductID)
		v := newValidator(t, f)

		result, err := v.ValidateOrder(context.Background(), f.order.ID, f.order.RegionID, enums.CustomerTypeB2B)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.UnavailableLines[0].Reason != enums.UnavailableReasonProductNotFound {
			t.Fatalf("reason = %s", result.UnavailableLines[0].Reason)
		}
	})

	t.Run("productInactive", func(t *testing.T) {
		f := newFixture()
		f.store.products[f.order.Lines[0].ProductID].IsActive = false
		v := newValidator(t, f)

		result, err := v.ValidateOrder(context.Background(), f.order.ID, f.order.RegionID, enums.CustomerTypeB2B)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.UnavailableLines[0].Reason != enums.UnavailableReasonProductInactive {
			t.Fatalf("reason = %s", result.UnavailableLines[0].Reason)
		}
	})

	t.Run("belowMinOrderQuantity", func(t *testing.T) {
		f := newFixture()
		tomatoID := f.order.Lines[0].ProductID
		offers := f.store.offers[tomatoID]
		offers[0].MinOrderQuantity = 10
		f.store.offers[tomatoID] = offers
		v := newValidator(t, f)

		result, err := v.ValidateOrder(context.Background(), f.order.ID, f.order.RegionID, enums.CustomerTypeB2B)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.UnavailableLines[0].Reason != enums.UnavailableReasonBelowMinOrderQuantity {
			t.Fatalf("reason = %s", result.UnavailableLines[0].Reason)
		}
	})

	t.Run("supplierDiscontinued", func(t *testing.T) {
		f := newFixture()
		goneSupplier := uuid.New()
		f.order.Lines[0].SupplierID = &goneSupplier
		v := newValidator(t, f)

		result, err := v.ValidateOrder(context.Background(), f.order.ID, f.order.RegionID, enums.CustomerTypeB2B)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.UnavailableLines[0].Reason != enums.UnavailableReasonSupplierDiscontinued {
			t.Fatalf("reason = %s", result.UnavailableLines[0].Reason)
		}
	})

	t.Run("insufficientStock", func(t *testing.T) {
		f := newFixture()
		tomatoID := f.order.Lines[0].ProductID
		offers := f.store.offers[tomatoID]
		offers[0].StockQuantity = 1
		f.store.offers[tomatoID] = offers
		v := newValidator(t, f)

		result, err := v.ValidateOrder(context.Background(), f.order.ID, f.order.RegionID, enums.CustomerTypeB2B)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.UnavailableLines[0].Reason != enums.UnavailableReasonOutOfStock {
			t.Fatalf("reason = %s", result.UnavailableLines[0].Reason)
		}
	})
}

func TestValidateRegionChanged(t *testing.T) {
	f := newFixture()
	other := &models.Region{ID: uuid.New(), Name: "Uskudar", RegionalMultiplier: d("1.2")}
	f.store.region = other
	v := newValidator(t, f)

	result, err := v.ValidateOrder(context.Background(), f.order.ID, other.ID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CanRepeat {
		t.Fatalf("expected can_repeat=false after region switch")
	}
	if len(result.UnavailableLines) != 2 {
		t.Fatalf("unavailable = %d, want 2", len(result.UnavailableLines))
	}
	for _, line := range result.UnavailableLines {
		if line.Reason != enums.UnavailableReasonRegionChanged {
			t.Fatalf("reason = %s", line.Reason)
		}
	}
	if !result.TotalOldPrice.IsZero() || !result.TotalNewPrice.IsZero() {
		t.Fatalf("region switch reports zero totals")
	}
}

func TestValidatePriceChangedFlag(t *testing.T) {
	f := newFixture()
	tomatoID := f.order.Lines[0].ProductID
	offers := f.store.offers[tomatoID]
	offers[0].Price = d("110")
	f.store.offers[tomatoID] = offers
	v := newValidator(t, f)

	result, err := v.ValidateOrder(context.Background(), f.order.ID, f.order.RegionID, enums.CustomerTypeB2B)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var tomato *AvailableLine
	for i := range result.AvailableLines {
		if result.AvailableLines[i].ProductID == tomatoID {
			tomato = &result.AvailableLines[i]
		}
	}
	if tomato == nil {
		t.Fatalf("tomato line missing")
	}
	if !tomato.PriceChanged {
		t.Fatalf("expected price_changed flag")
	}
	if !tomato.CurrentUnitPrice.Equal(d("143.00")) {
		t.Fatalf("current price = %s, want 143.00", tomato.CurrentUnitPrice)
	}
	if !result.PriceIncreased {
		t.Fatalf("expected price increase")
	}
}

func TestValidateUnknownOrder(t *testing.T) {
	f := newFixture()
	v := newValidator(t, f)

	_, err := v.ValidateOrder(context.Background(), uuid.New(), f.order.RegionID, enums.CustomerTypeB2B)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
