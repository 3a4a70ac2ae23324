package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/ecofinds-backend/api/middleware"
	"github.com/angelmondragon/ecofinds-backend/api/responses"
	"github.com/angelmondragon/ecofinds-backend/api/validators"
	"github.com/angelmondragon/ecofinds-backend/internal/cart"
	"github.com/angelmondragon/ecofinds-backend/internal/checkout"
	"github.com/angelmondragon/ecofinds-backend/internal/listings"
	pkgerrors "github.com/angelmondragon/ecofinds-backend/pkg/errors"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// CartSource resolves the live cart of an owner. *cart.Registry satisfies it.
type CartSource interface {
	Get(ctx context.Context, owner string) (*cart.Store, error)
}

// CartSessions ends a cart session at logout.
type CartSessions interface {
	End(ctx context.Context, owner string) error
}

type cartView struct {
	Items         []cart.LineItem  `json:"items"`
	TotalItems    int              `json:"total_items"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Summary       checkout.Summary `json:"summary"`
	PersistenceOK bool             `json:"persistence_ok"`
	Warning       string           `json:"warning,omitempty"`
}

// itemsSnapshot lets the view derive every figure from a single read.
type itemsSnapshot []cart.LineItem

func (s itemsSnapshot) Items() []cart.LineItem { return s }

func newCartView(store *cart.Store, fee decimal.Decimal) cartView {
	items := itemsSnapshot(store.Items())
	summary := checkout.Summarize(items, fee)
	view := cartView{
		Items:         items,
		TotalItems:    summary.ItemCount,
		Subtotal:      summary.Subtotal,
		Summary:       summary,
		PersistenceOK: store.PersistenceHealthy(),
	}
	if !view.PersistenceOK {
		view.Warning = pkgerrors.MetadataFor(pkgerrors.CodePersistence).PublicMessage
	}
	return view
}

func resolveCart(r *http.Request, carts CartSource) (*cart.Store, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable")
	}
	owner := middleware.CartOwnerFromContext(r.Context())
	if owner == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "cart owner missing")
	}
	return carts.Get(r.Context(), owner)
}

func viewerID(r *http.Request) (*uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return &id, nil
}

// CartFetch returns the caller's cart with derived totals.
func CartFetch(carts CartSource, fee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := resolveCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store, fee))
	}
}

type addCartItemRequest struct {
	ListingID string           `json:"listing_id" validate:"omitempty,uuid"`
	Item      *cartItemPayload `json:"item"`
	Quantity  *int             `json:"quantity" validate:"omitempty,min=1,max=9999"`
}

type cartItemPayload struct {
	ID     string          `json:"id" validate:"required,max=128"`
	Name   string          `json:"name" validate:"required,max=200"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image" validate:"max=2048"`
	Seller string          `json:"seller" validate:"max=200"`
}

func (p addCartItemRequest) quantity() int {
	if p.Quantity == nil {
		return 1
	}
	return *p.Quantity
}

// CartAddItem adds a catalog listing, or a client-supplied snapshot, to the cart.
func CartAddItem(carts CartSource, catalog listings.Service, fee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		switch {
		case payload.ListingID == "" && payload.Item == nil:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "listing_id or item is required"))
			return
		case payload.ListingID != "" && payload.Item != nil:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "listing_id and item are mutually exclusive"))
			return
		}

		var input cart.ItemInput
		if payload.ListingID != "" {
			if catalog == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "catalog unavailable"))
				return
			}
			listingID, err := validators.ParseUUID(payload.ListingID, "listing_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			viewer, err := viewerID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input, err = catalog.CartItem(r.Context(), viewer, listingID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		} else {
			input = cart.ItemInput{
				ID:     payload.Item.ID,
				Name:   payload.Item.Name,
				Price:  payload.Item.Price,
				Image:  payload.Item.Image,
				Seller: payload.Item.Seller,
			}
		}

		if err := cart.Validate(input, payload.quantity()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := resolveCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.AddItem(input, payload.quantity())
		responses.WriteSuccess(w, newCartView(store, fee))
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartSetQuantity replaces the quantity of an existing line.
func CartSetQuantity(carts CartSource, fee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.PathParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := cart.ValidateQuantity(payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := resolveCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !hasLine(store, itemID) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found"))
			return
		}
		store.SetQuantity(itemID, payload.Quantity)
		responses.WriteSuccess(w, newCartView(store, fee))
	}
}

func hasLine(store *cart.Store, id string) bool {
	for _, item := range store.Items() {
		if item.ID == id {
			return true
		}
	}
	return false
}

// CartRemoveItem deletes a line. Removing an absent line succeeds.
func CartRemoveItem(carts CartSource, fee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.PathParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := resolveCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.RemoveItem(itemID)
		responses.WriteSuccess(w, newCartView(store, fee))
	}
}

func CartClear(carts CartSource, fee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := resolveCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.Clear()
		responses.WriteSuccess(w, newCartView(store, fee))
	}
}

// CartSummary returns the figures handed to the payment step.
func CartSummary(carts CartSource, fee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := resolveCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkout.Summarize(store, fee))
	}
}

type checkoutConfirmResponse struct {
	Summary checkout.Summary `json:"summary"`
	Cart    cartView         `json:"cart"`
}

// CartCheckoutConfirm is called once payment succeeded. It returns the
// summary that was paid and clears the cart.
func CartCheckoutConfirm(carts CartSource, fee decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := resolveCart(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paid := checkout.Confirm(store, fee)
		if err := store.Flush(r.Context()); err != nil && logg != nil {
			logg.Warn(logg.WithField(r.Context(), "error", err.Error()), "cart clear not yet durable")
		}
		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"lines": paid.LineCount,
				"total": paid.Total.StringFixed(2),
			})
			logg.Info(ctx, "checkout.confirmed")
		}
		responses.WriteSuccess(w, checkoutConfirmResponse{Summary: paid, Cart: newCartView(store, fee)})
	}
}

// CartSessionEnd flushes and releases the caller's cart at logout.
func CartSessionEnd(sessions CartSessions, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable"))
			return
		}
		owner := middleware.CartOwnerFromContext(r.Context())
		if err := sessions.End(r.Context(), owner); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ended"})
	}
}
