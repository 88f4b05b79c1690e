package offers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halmarket/halmarket-backend/pkg/db/models"
	"github.com/halmarket/halmarket-backend/pkg/enums"
)

// OfferSummary is the unpriced view of one supplier offer, used to enumerate
// candidates before any price composition happens.
type OfferSummary struct {
	OfferID          uuid.UUID          `json:"offer_id"`
	SupplierID       uuid.UUID          `json:"supplier_id"`
	SupplierName     string             `json:"supplier_name"`
	Price            decimal.Decimal    `json:"price"`
	PreviousPrice    *decimal.Decimal   `json:"previous_price,omitempty"`
	PriceChange      enums.PriceChange  `json:"price_change"`
	StockQuantity    int                `json:"stock_quantity"`
	Availability     enums.Availability `json:"availability"`
	MinOrderQuantity int                `json:"min_order_quantity"`
	DeliveryDays     int                `json:"delivery_days"`
	IsFeatured       bool               `json:"is_featured"`
	Quality          enums.OfferQuality `json:"quality"`
	Origin           string             `json:"origin,omitempty"`
	LastPriceUpdate  *time.Time         `json:"last_price_update,omitempty"`
}

// CatalogProduct is one row of the region catalog browse.
type CatalogProduct struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit"`
	ImageURLs []string  `json:"image_urls"`
}

// CatalogPage is a cursor-paginated catalog slice.
type CatalogPage struct {
	Products   []CatalogProduct `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func summaryFromModel(offer models.SupplierOffer) OfferSummary {
	return OfferSummary{
		OfferID:          offer.ID,
		SupplierID:       offer.SupplierID,
		SupplierName:     offer.SupplierName,
		Price:            offer.Price,
		PreviousPrice:    offer.PreviousPrice,
		PriceChange:      offer.PriceChange,
		StockQuantity:    offer.StockQuantity,
		Availability:     offer.Availability,
		MinOrderQuantity: offer.MinOrderQuantity,
		DeliveryDays:     offer.DeliveryDays,
		IsFeatured:       offer.IsFeatured,
		Quality:          offer.Quality,
		Origin:           offer.Origin,
		LastPriceUpdate:  offer.LastPriceUpdate,
	}
}

func catalogProductFromModel(product models.Product) CatalogProduct {
	return CatalogProduct{
		ProductID: product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Unit:      product.Unit,
		ImageURLs: product.ImageURLs,
	}
}
