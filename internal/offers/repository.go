package offers

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halmarket/halmarket-backend/pkg/db/models"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
	"github.com/halmarket/halmarket-backend/pkg/pagination"
)

// Repository is the durable read side of pricing: products, regions,
// variations, and supplier offers. All reads within one call see one
// consistent snapshot only if the caller fetches once; the repository never
// re-fetches on behalf of a caller.
//
// Enumeration order for offers is stable (created_at, id) so that callers
// that pick "first encountered" behave deterministically.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetProduct loads one product by id.
func (r *Repository) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return &product, nil
}

// GetRegion loads one region by id.
func (r *Repository) GetRegion(ctx context.Context, regionID uuid.UUID) (*models.Region, error) {
	var region models.Region
	if err := r.db.WithContext(ctx).First(&region, "id = ?", regionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "region not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load region")
	}
	return &region, nil
}

// GetVariation loads one variation option by id.
func (r *Repository) GetVariation(ctx context.Context, variationID uuid.UUID) (*models.VariationOption, error) {
	var variation models.VariationOption
	if err := r.db.WithContext(ctx).First(&variation, "id = ?", variationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load variation")
	}
	return &variation, nil
}

// ListVariations returns the product's variation options in display order.
func (r *Repository) ListVariations(ctx context.Context, productID uuid.UUID) ([]models.VariationOption, error) {
	var rows []models.VariationOption
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("display_order ASC, created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list variations")
	}
	return rows, nil
}

// ListActiveOffers returns the active offers for a product in a region.
func (r *Repository) ListActiveOffers(ctx context.Context, productID, regionID uuid.UUID) ([]models.SupplierOffer, error) {
	var rows []models.SupplierOffer
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND region_id = ? AND is_active = ?", productID, regionID, true).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list active offers")
	}
	return rows, nil
}

// ListActiveOffersByProductIDs returns active offers for a set of products in
// one region, for bulk revalidation reads.
func (r *Repository) ListActiveOffersByProductIDs(ctx context.Context, productIDs []uuid.UUID, regionID uuid.UUID) ([]models.SupplierOffer, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []models.SupplierOffer
	err := r.db.WithContext(ctx).
		Where("product_id IN ? AND region_id = ? AND is_active = ?", productIDs, regionID, true).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list offers by product ids")
	}
	return rows, nil
}

// GetOffer returns one supplier's active offer for a product in a region.
func (r *Repository) GetOffer(ctx context.Context, productID, regionID, supplierID uuid.UUID) (*models.SupplierOffer, error) {
	var offer models.SupplierOffer
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND region_id = ? AND supplier_id = ? AND is_active = ?", productID, regionID, supplierID, true).
		First(&offer).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load offer")
	}
	return &offer, nil
}

// ListProductsByIDs loads products by id set, active or not. Missing ids are
// simply absent from the result.
func (r *Repository) ListProductsByIDs(ctx context.Context, productIDs []uuid.UUID) ([]models.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products by ids")
	}
	return rows, nil
}

// ListCatalog pages through the active products that have at least one active
// offer in the region, newest first, using keyset pagination.
func (r *Repository) ListCatalog(ctx context.Context, regionID uuid.UUID, params pagination.Params) ([]models.Product, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Where("EXISTS (SELECT 1 FROM supplier_offers o WHERE o.product_id = products.id AND o.region_id = ? AND o.is_active = ?)", regionID, true).
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list catalog")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
