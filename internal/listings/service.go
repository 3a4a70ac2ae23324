package listings

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/pagination"
)

// Service exposes the catalog views and the add-to-cart lookup.
type Service interface {
	Shop(ctx context.Context, viewerID *uuid.UUID, q Query) (*ListingPage, error)
	Mine(ctx context.Context, userID uuid.UUID, q Query) (*ListingPage, error)
	CartItem(ctx context.Context, viewerID *uuid.UUID, listingID uuid.UUID) (cart.ItemInput, error)
}

type service struct {
	repo Repository
}

// NewService builds the listing service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("listing repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Shop(ctx context.Context, viewerID *uuid.UUID, q Query) (*ListingPage, error) {
	rows, err := s.repo.ListActive(ctx, viewerID, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}
	records := make([]ListingDTO, 0, len(rows))
	for _, row := range rows {
		records = append(records, toDTO(row))
	}
	if q.Sort == "" {
		q.Sort = enums.SortFeatured
	}
	items := Apply(records, q)
	return &ListingPage{
		Items:      Paginate(items, q.Page),
		Count:      len(items),
		Total:      len(records),
		Categories: Categories(records),
	}, nil
}

func (s *service) Mine(ctx context.Context, userID uuid.UUID, q Query) (*ListingPage, error) {
	rows, err := s.repo.ListBySeller(ctx, userID, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}
	records := make([]ownListing, 0, len(rows))
	for _, row := range rows {
		records = append(records, ownListing{toDTO(row)})
	}
	if q.Sort == "" {
		q.Sort = enums.SortNewest
	}
	filtered := Apply(records, q)
	items := make([]ListingDTO, 0, len(filtered))
	for _, record := range Paginate(filtered, q.Page) {
		items = append(items, record.ListingDTO)
	}
	return &ListingPage{
		Items:      items,
		Count:      len(filtered),
		Total:      len(records),
		Categories: Categories(records),
	}, nil
}

// CartItem resolves an active listing into the snapshot the cart stores.
func (s *service) CartItem(ctx context.Context, viewerID *uuid.UUID, listingID uuid.UUID) (cart.ItemInput, error) {
	listing, err := s.repo.GetByID(ctx, listingID)
	if err != nil {
		return cart.ItemInput{}, err
	}
	if !strings.EqualFold(listing.Status.String(), enums.ListingStatusActive.String()) {
		return cart.ItemInput{}, pkgerrors.New(pkgerrors.CodeConflict, "listing is not available")
	}
	if viewerID != nil && listing.UserID == *viewerID {
		return cart.ItemInput{}, pkgerrors.New(pkgerrors.CodeValidation, "cannot add your own listing to the cart")
	}
	return toDTO(*listing).CartItem(), nil
}
