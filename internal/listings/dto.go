package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
)

// UnknownSeller is shown when a listing has no seller profile.
const UnknownSeller = "Unknown Seller"

// ListingDTO is the catalog payload returned to clients.
type ListingDTO struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uuid.UUID        `json:"user_id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	ImageURL      string           `json:"image_url"`
	Category      string           `json:"category"`
	Condition     string           `json:"condition"`
	Status        string           `json:"status"`
	Views         int              `json:"views"`
	Seller        string           `json:"seller"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ListingPage is one filtered view of a listing collection.
type ListingPage struct {
	Items      []ListingDTO `json:"items"`
	Count      int          `json:"count"`
	Total      int          `json:"total"`
	Categories []string     `json:"categories"`
}

// SellerName renders the seller display name the way the cart captures it.
func SellerName(profile *models.Profile) string {
	if profile == nil {
		return UnknownSeller
	}
	if name := profile.DisplayName(); name != "" {
		return name
	}
	return UnknownSeller
}

func toDTO(l models.Listing) ListingDTO {
	image := cart.PlaceholderImage
	if l.ImageURL != nil && *l.ImageURL != "" {
		image = *l.ImageURL
	}
	return ListingDTO{
		ID:            l.ID,
		UserID:        l.UserID,
		Name:          l.Name,
		Description:   l.Description,
		Price:         l.Price,
		OriginalPrice: l.OriginalPrice,
		ImageURL:      image,
		Category:      l.Category,
		Condition:     l.Condition,
		Status:        l.Status.String(),
		Views:         l.Views,
		Seller:        SellerName(l.Seller),
		CreatedAt:     l.CreatedAt,
	}
}

// CartItem builds the line-item snapshot captured when the listing is added to a cart.
func (d ListingDTO) CartItem() cart.ItemInput {
	return cart.ItemInput{
		ID:     d.ID.String(),
		Name:   d.Name,
		Price:  d.Price,
		Image:  d.ImageURL,
		Seller: d.Seller,
	}
}

func (d ListingDTO) FilterCategory() string { return d.Category }
func (d ListingDTO) FilterStatus() string { return d.Status }
func (d ListingDTO) SortPrice() decimal.Decimal { return d.Price }
func (d ListingDTO) SortCreatedAt() time.Time { return d.CreatedAt }
func (d ListingDTO) SortViews() int { return d.Views }

// SearchFields covers name and description, as on the shop page.
func (d ListingDTO) SearchFields() []string {
	if d.Description == nil {
		return []string{d.Name}
	}
	return []string{d.Name, *d.Description}
}

// ownListing narrows search to the name, as on the seller's listings page.
type ownListing struct {
	ListingDTO
}

func (o ownListing) SearchFields() []string {
	return []string{o.Name}
}
