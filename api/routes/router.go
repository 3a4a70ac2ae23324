package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/ecofinds-backend/api/controllers"
	"github.com/angelmondragon/ecofinds-backend/api/middleware"
	"github.com/angelmondragon/ecofinds-backend/internal/listings"
	"github.com/angelmondragon/ecofinds-backend/internal/purchases"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/db"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
)

// CartRegistry is the cart lifecycle surface the HTTP layer needs.
type CartRegistry interface {
	controllers.CartSource
	controllers.CartSessions
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	readiness map[string]db.Pinger,
	carts CartRegistry,
	listingService listings.Service,
	purchaseService purchases.Service,
) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	fee := cfg.Cart.ShippingFeeAmount()

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.JWT, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.RequireCartOwner(logg))
			r.Get("/", controllers.CartFetch(carts, fee, logg))
			r.Delete("/", controllers.CartClear(carts, fee, logg))
			r.Get("/summary", controllers.CartSummary(carts, fee, logg))
			r.Get("/events", controllers.CartEvents(carts, fee, 0, logg))
			r.Post("/items", controllers.CartAddItem(carts, listingService, fee, logg))
			r.Patch("/items/{itemId}", controllers.CartSetQuantity(carts, fee, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(carts, fee, logg))
			r.Post("/checkout/confirm", controllers.CartCheckoutConfirm(carts, fee, logg))
			r.Post("/session/end", controllers.CartSessionEnd(carts, logg))
		})

		r.Get("/listings", controllers.ListingsShop(listingService, logg))

		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.RequireUser(logg))
			r.Get("/listings", controllers.ListingsMine(listingService, logg))
			r.Get("/purchases", controllers.PurchasesMine(purchaseService, logg))
		})
	})

	return r
}
