package repeatorder

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halmarket/halmarket-backend/pkg/db"
	"github.com/halmarket/halmarket-backend/pkg/db/models"
	pkgerrors "github.com/halmarket/halmarket-backend/pkg/errors"
)

// Repository reads immutable order snapshots.
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

// GetOrder loads an order snapshot with its lines.
func (r *Repository) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderSnapshot, error) {
	var order models.OrderSnapshot
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", orderID).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order snapshot")
	}
	return &order, nil
}

// CreateOrder persists an order snapshot with its lines.
func (r *Repository) CreateOrder(ctx context.Context, order *models.OrderSnapshot) (*models.OrderSnapshot, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order snapshot already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order snapshot")
	}
	return order, nil
}
