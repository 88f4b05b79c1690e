package repeatorder

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/internal/pricing"
	"github.com/halmarket/halmarket-backend/pkg/db/models"
	"github.com/halmarket/halmarket-backend/pkg/enums"
	"github.com/halmarket/halmarket-backend/pkg/logger"
)

// AvailableLine is a historical order line that can still be fulfilled. It
// carries everything a cart re-add needs.
type AvailableLine struct {
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	SupplierName     string          `json:"supplier_name"`
	Quantity         int             `json:"quantity"`
	OldUnitPrice     decimal.Decimal `json:"old_unit_price"`
	CurrentUnitPrice decimal.Decimal `json:"current_unit_price"`
	PriceChanged     bool            `json:"price_changed"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// UnavailableLine is a historical order line that cannot be fulfilled today.
type UnavailableLine struct {
	ProductID   uuid.UUID               `json:"product_id"`
	ProductName string                  `json:"product_name"`
	Reason      enums.UnavailableReason `json:"reason"`
	Message     string                  `json:"message"`
}

// Result is the terminal outcome of revalidating one order. Zero repeatable
// lines is still a result, never an error, so callers can present a
// "nothing available" message.
type Result struct {
	CanRepeat              bool              `json:"can_repeat"`
	AvailableLines         []AvailableLine   `json:"available_items"`
	UnavailableLines       []UnavailableLine `json:"unavailable_items"`
	TotalOldPrice          decimal.Decimal   `json:"total_old_price"`
	TotalNewPrice          decimal.Decimal   `json:"total_new_price"`
	PriceDifference        decimal.Decimal   `json:"price_difference"`
	PriceIncreased         bool              `json:"price_increased"`
	SignificantPriceChange bool              `json:"significant_price_change"`
}

// Validator revalidates a historical order against current offers.
type Validator interface {
	Validate(ctx context.Context, order *models.OrderSnapshot, regionID uuid.UUID, customerType enums.CustomerType) (*Result, error)
	ValidateOrder(ctx context.Context, orderID, regionID uuid.UUID, customerType enums.CustomerType) (*Result, error)
}

type orderStore interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderSnapshot, error)
}

type offerStore interface {
	GetRegion(ctx context.Context, regionID uuid.UUID) (*models.Region, error)
	ListProductsByIDs(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error)
	ListActiveOffersByProductIDs(ctx context.Context, productIDs []uuid.UUID, regionID uuid.UUID) ([]models.SupplierOffer, error)
}

type validator struct {
	orders      orderStore
	store       offerStore
	policy      *pricing.Policy
	logg        *logger.Logger
	significant decimal.Decimal
}

// NewValidator constructs a repeat order validator. significantChangePct is
// the presentation threshold for the loud price warning, as a fraction of
// the old total.
func NewValidator(orders orderStore, store offerStore, policy *pricing.Policy, logg *logger.Logger, significantChangePct float64) (Validator, error) {
	if orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if store == nil {
		return nil, fmt.Errorf("offer store required")
	}
	if policy == nil {
		return nil, fmt.Errorf("commission policy required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if significantChangePct < 0 {
		return nil, fmt.Errorf("significant change threshold must be >= 0, got %v", significantChangePct)
	}
	return &validator{
		orders:      orders,
		store:       store,
		policy:      policy,
		logg:        logg,
		significant: decimal.NewFromFloat(significantChangePct),
	}, nil
}

// ValidateOrder loads the snapshot and validates it.
func (v *validator) ValidateOrder(ctx context.Context, orderID, regionID uuid.UUID, customerType enums.CustomerType) (*Result, error) {
	order, err := v.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, order, regionID, customerType)
}

// Validate classifies every line of the order as available or unavailable in
// one pass and aggregates the price delta. Unhandled cases classify as
// unavailable rather than guessing available.
func (v *validator) Validate(ctx context.Context, order *models.OrderSnapshot, regionID uuid.UUID, customerType enums.CustomerType) (*Result, error) {
	if _, err := v.policy.RateFor(customerType); err != nil {
		return nil, err
	}
	region, err := v.store.GetRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}

	// a region switch invalidates the whole order up front
	if order.RegionID != regionID {
		result := &Result{
			AvailableLines:   []AvailableLine{},
			UnavailableLines: make([]UnavailableLine, 0, len(order.Lines)),
		}
		for _, line := range order.Lines {
			result.UnavailableLines = append(result.UnavailableLines, unavailable(line, enums.UnavailableReasonRegionChanged))
		}
		return result, nil
	}

	productIDs := make([]uuid.UUID, 0, len(order.Lines))
	for _, line := range order.Lines {
		productIDs = append(productIDs, line.ProductID)
	}

	products, err := v.store.ListProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		productByID[products[i].ID] = &products[i]
	}

	offers, err := v.store.ListActiveOffersByProductIDs(ctx, productIDs, regionID)
	if err != nil {
		return nil, err
	}
	offersByProduct := make(map[uuid.UUID][]models.SupplierOffer)
	for _, offer := range offers {
		offersByProduct[offer.ProductID] = append(offersByProduct[offer.ProductID], offer)
	}

	result := &Result{
		AvailableLines:   []AvailableLine{},
		UnavailableLines: []UnavailableLine{},
	}

	for _, line := range order.Lines {
		v.classifyLine(ctx, line, productByID[line.ProductID], offersByProduct[line.ProductID], region, customerType, result)
	}

	// old total spans every original line; new total only the available ones
	for _, line := range order.Lines {
		result.TotalOldPrice = result.TotalOldPrice.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	for _, line := range result.AvailableLines {
		result.TotalNewPrice = result.TotalNewPrice.Add(line.LineTotal)
	}
	result.PriceDifference = result.TotalNewPrice.Sub(result.TotalOldPrice)
	result.PriceIncreased = result.PriceDifference.IsPositive()
	result.CanRepeat = len(result.AvailableLines) > 0

	if result.TotalOldPrice.IsPositive() {
		threshold := result.TotalOldPrice.Mul(v.significant)
		result.SignificantPriceChange = result.PriceDifference.Abs().GreaterThan(threshold)
	}
	return result, nil
}

func (v *validator) classifyLine(ctx context.Context, line models.OrderLineSnapshot, product *models.Product, offers []models.SupplierOffer, region *models.Region, customerType enums.CustomerType, result *Result) {
	if product == nil {
		result.UnavailableLines = append(result.UnavailableLines, unavailable(line, enums.UnavailableReasonProductNotFound))
		return
	}
	if !product.IsActive {
		result.UnavailableLines = append(result.UnavailableLines, unavailable(line, enums.UnavailableReasonProductInactive))
		return
	}
	if len(offers) == 0 {
		result.UnavailableLines = append(result.UnavailableLines, unavailable(line, enums.UnavailableReasonNotInRegion))
		return
	}

	offer := selectOffer(line, offers)
	if offer == nil {
		result.UnavailableLines = append(result.UnavailableLines, unavailable(line, enums.UnavailableReasonSupplierDiscontinued))
		return
	}
	if offer.StockQuantity < line.Quantity || offer.StockQuantity <= 0 {
		result.UnavailableLines = append(result.UnavailableLines, unavailable(line, enums.UnavailableReasonOutOfStock))
		return
	}
	if line.Quantity < offer.MinOrderQuantity {
		result.UnavailableLines = append(result.UnavailableLines, unavailable(line, enums.UnavailableReasonBelowMinOrderQuantity))
		return
	}

	priced, err := pricing.BuildResult(product, region, offer, decimal.Zero, customerType, v.policy)
	if err != nil {
		// conservative: an unpriceable line is unavailable, not a guess
		lineCtx := v.logg.WithProductID(ctx, line.ProductID.String())
		v.logg.Warn(lineCtx, "repeat order line could not be priced")
		result.UnavailableLines = append(result.UnavailableLines, unavailable(line, enums.UnavailableReasonOutOfStock))
		return
	}

	current := priced.FinalPrice
	result.AvailableLines = append(result.AvailableLines, AvailableLine{
		ProductID:        line.ProductID,
		ProductName:      line.ProductName,
		SupplierID:       offer.SupplierID,
		SupplierName:     offer.SupplierName,
		Quantity:         line.Quantity,
		OldUnitPrice:     line.UnitPrice,
		CurrentUnitPrice: current,
		PriceChanged:     !current.Equal(line.UnitPrice),
		LineTotal:        current.Mul(decimal.NewFromInt(int64(line.Quantity))),
	})
}

// selectOffer keeps the previously used supplier when the line recorded one;
// otherwise the first offer in store enumeration order wins.
func selectOffer(line models.OrderLineSnapshot, offers []models.SupplierOffer) *models.SupplierOffer {
	if line.SupplierID == nil {
		return &offers[0]
	}
	for i := range offers {
		if offers[i].SupplierID == *line.SupplierID {
			return &offers[i]
		}
	}
	return nil
}

func unavailable(line models.OrderLineSnapshot, reason enums.UnavailableReason) UnavailableLine {
	return UnavailableLine{
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		Reason:      reason,
		Message:     reason.Message(),
	}
}
