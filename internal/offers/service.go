package offers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/halmarket/halmarket-backend/pkg/pagination"
)

// Service exposes unpriced offer enumeration and catalog browsing.
type Service interface {
	GetSupplierOffers(ctx context.Context, productID, regionID uuid.UUID) ([]OfferSummary, error)
	BrowseCatalog(ctx context.Context, regionID uuid.UUID, params pagination.Params) (*CatalogPage, error)
}

type service struct {
	repo *Repository
}

// NewService constructs an offers service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	return &service{repo: repo}, nil
}

// GetSupplierOffers enumerates the active offers for a product in a region.
// Zero offers is an empty slice, not an error.
func (s *service) GetSupplierOffers(ctx context.Context, productID, regionID uuid.UUID) ([]OfferSummary, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetRegion(ctx, regionID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListActiveOffers(ctx, productID, regionID)
	if err != nil {
		return nil, err
	}

	summaries := make([]OfferSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, summaryFromModel(row))
	}
	return summaries, nil
}

// BrowseCatalog pages through the products purchasable in a region.
func (s *service) BrowseCatalog(ctx context.Context, regionID uuid.UUID, params pagination.Params) (*CatalogPage, error) {
	if _, err := s.repo.GetRegion(ctx, regionID); err != nil {
		return nil, err
	}

	rows, next, err := s.repo.ListCatalog(ctx, regionID, params)
	if err != nil {
		return nil, err
	}

	products := make([]CatalogProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, catalogProductFromModel(row))
	}
	return &CatalogPage{Products: products, NextCursor: next}, nil
}
