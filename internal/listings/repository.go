package listings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/pagination"
)

// Repository reads listings from the catalog tables.
type Repository interface {
	ListActive(ctx context.Context, excludeUserID *uuid.UUID, limit int) ([]models.Listing, error)
	ListBySeller(ctx context.Context, userID uuid.UUID, limit int) ([]models.Listing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a listing repository to the provided connection.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ListActive returns active listings newest first, skipping the viewer's own.
func (r *repository) ListActive(ctx context.Context, excludeUserID *uuid.UUID, limit int) ([]models.Listing, error) {
	query := r.db.WithContext(ctx).
		Preload("Seller").
		Where("LOWER(status) = LOWER(?)", enums.ListingStatusActive.String())
	if excludeUserID != nil {
		query = query.Where("user_id <> ?", *excludeUserID)
	}

	var rows []models.Listing
	if err := query.
		Order("created_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active listings")
	}
	return rows, nil
}

// ListBySeller returns every listing owned by userID regardless of status.
func (r *repository) ListBySeller(ctx context.Context, userID uuid.UUID, limit int) ([]models.Listing, error) {
	var rows []models.Listing
	if err := r.db.WithContext(ctx).
		Preload("Seller").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller listings")
	}
	return rows, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).Preload("Seller").Where("id = ?", id).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get listing")
	}
	return &listing, nil
}
