package listings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/pkg/db/models"
	"github.com/angelmondragon/ecofinds-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
)

type stubRepo struct {
	active   []models.Listing
	bySeller []models.Listing
	byID     map[uuid.UUID]models.Listing
	excluded *uuid.UUID
}

func (s *stubRepo) ListActive(ctx context.Context, excludeUserID *uuid.UUID, limit int) ([]models.Listing, error) {
	s.excluded = excludeUserID
	return s.active, nil
}

func (s *stubRepo) ListBySeller(ctx context.Context, userID uuid.UUID, limit int) ([]models.Listing, error) {
	return s.bySeller, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, ok := s.byID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	return &listing, nil
}

func TestNewServiceRequiresRepo(t *testing.T) {
	t.Parallel()

	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
}

func TestServiceShopFiltersAndCountsTotals(t *testing.T) {
	t.Parallel()

	viewer := uuid.New()
	repo := &stubRepo{active: []models.Listing{
		{ID: uuid.New(), Name: "Eco Mug", Category: "Kitchen", Status: enums.ListingStatusActive, Price: decimal.NewFromInt(8)},
		{ID: uuid.New(), Name: "Bag", Category: "Bags", Status: enums.ListingStatusActive, Price: decimal.NewFromInt(20)},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	page, err := svc.Shop(context.Background(), &viewer, Query{Search: "mug", Category: "all"})
	if err != nil {
		t.Fatalf("shop: %v", err)
	}
	if repo.excluded == nil || *repo.excluded != viewer {
		t.Fatalf("expected viewer listings to be excluded")
	}
	if page.Count != 1 || page.Total != 2 || len(page.Items) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Items[0].Seller != UnknownSeller || page.Items[0].ImageURL != cart.PlaceholderImage {
		t.Fatalf("expected fallbacks for seller and image, got %+v", page.Items[0])
	}
	if len(page.Categories) != 3 || page.Categories[0] != AllValues {
		t.Fatalf("unexpected categories %v", page.Categories)
	}
}

func TestServiceMineSearchesNameOnly(t *testing.T) {
	t.Parallel()

	desc := "mug shaped"
	repo := &stubRepo{bySeller: []models.Listing{
		{ID: uuid.New(), Name: "Vase", Description: &desc, Category: "Decor", Status: enums.ListingStatusDraft},
		{ID: uuid.New(), Name: "Mug", Category: "Kitchen", Status: enums.ListingStatusSold},
	}}
	svc, _ := NewService(repo)

	page, err := svc.Mine(context.Background(), uuid.New(), Query{Search: "mug", Status: "sold"})
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if page.Count != 1 || page.Items[0].Name != "Mug" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestServiceCartItemSnapshot(t *testing.T) {
	t.Parallel()

	seller := uuid.New()
	image := "/uploads/mug.png"
	active := models.Listing{
		ID:       uuid.New(),
		UserID:   seller,
		Name:     "Mug",
		Price:    decimal.RequireFromString("12.50"),
		ImageURL: &image,
		Status:   enums.ListingStatusActive,
		Seller:   &models.Profile{ID: seller, FirstName: "Alice", LastName: ""},
	}
	sold := active
	sold.ID = uuid.New()
	sold.Status = enums.ListingStatusSold

	repo := &stubRepo{byID: map[uuid.UUID]models.Listing{active.ID: active, sold.ID: sold}}
	svc, _ := NewService(repo)
	ctx := context.Background()

	item, err := svc.CartItem(ctx, nil, active.ID)
	if err != nil {
		t.Fatalf("cart item: %v", err)
	}
	if item.ID != active.ID.String() || item.Seller != "Alice" || item.Image != image || !item.Price.Equal(active.Price) {
		t.Fatalf("unexpected snapshot %+v", item)
	}

	if _, err := svc.CartItem(ctx, nil, sold.ID); !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for sold listing, got %v", err)
	}
	if _, err := svc.CartItem(ctx, &seller, active.ID); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for own listing, got %v", err)
	}
	if _, err := svc.CartItem(ctx, nil, uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
