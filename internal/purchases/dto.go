package purchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/listings"
	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
)

// PurchaseDTO is one row of the buyer's purchase history.
type PurchaseDTO struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        string          `json:"order_id"`
	ListingID      uuid.UUID       `json:"listing_id"`
	ListingName    string          `json:"listing_name"`
	Category       string          `json:"category"`
	ImageURL       string          `json:"image_url"`
	Seller         string          `json:"seller"`
	Price          decimal.Decimal `json:"price"`
	Status         string          `json:"status"`
	TrackingNumber *string         `json:"tracking_number,omitempty"`
	HasReview      bool            `json:"has_review"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PurchasePage is one filtered view of the purchase history.
type PurchasePage struct {
	Items      []PurchaseDTO `json:"items"`
	Count      int           `json:"count"`
	Total      int           `json:"total"`
	Categories []string      `json:"categories"`
	Statuses   []string      `json:"statuses"`
}

func toDTO(p models.Purchase) PurchaseDTO {
	dto := PurchaseDTO{
		ID:             p.ID,
		OrderID:        p.OrderID,
		ListingID:      p.ListingID,
		ImageURL:       cart.PlaceholderImage,
		Seller:         listings.SellerName(p.Seller),
		Price:          p.Price,
		Status:         p.Status.String(),
		TrackingNumber: p.TrackingNumber,
		HasReview:      p.HasReview,
		CreatedAt:      p.CreatedAt,
	}
	if p.Listing != nil {
		dto.ListingName = p.Listing.Name
		dto.Category = p.Listing.Category
		if p.Listing.ImageURL != nil && *p.Listing.ImageURL != "" {
			dto.ImageURL = *p.Listing.ImageURL
		}
	}
	return dto
}

// SearchFields covers the listing name and the seller name.
func (d PurchaseDTO) SearchFields() []string {
	return []string{d.ListingName, d.Seller}
}

func (d PurchaseDTO) FilterCategory() string { return d.Category }

func (d PurchaseDTO) FilterStatus() string { return d.Status }

func (d PurchaseDTO) SortPrice() decimal.Decimal { return d.Price }

func (d PurchaseDTO) SortCreatedAt() time.Time { return d.CreatedAt }

// SortViews is constant; purchases have no view counter.
func (d PurchaseDTO) SortViews() int { return 0 }
