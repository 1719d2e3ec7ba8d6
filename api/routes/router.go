package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/angelmondragon/marketplace-backend/api/controllers"
	"github.com/angelmondragon/marketplace-backend/api/middleware"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/redis"
)

// Cache is the optional redis surface behind replay protection, mutation
// throttling and readiness. Pass a nil interface when redis is not configured.
type Cache interface {
	redis.IdempotencyStore
	redis.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	svc controllers.Marketplace,
	cache Cache,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, cache))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	mutationPolicy := middleware.NewRateLimitPolicy("mutations", cfg.HTTP.MutationWindow, cfg.HTTP.MutationLimit)

	r.Route("/api/v1", func(r chi.Router) {
		// At most MaxInFlight handlers run at once; the rest wait in the backlog.
		r.Use(
			chimiddleware.ThrottleBacklog(cfg.HTTP.MaxInFlight, cfg.HTTP.Backlog, cfg.HTTP.BacklogTimeout),
			middleware.RateLimitMutations(mutationPolicy, cache, logg),
			middleware.Idempotency(cache, cfg.Idempotency.TTL, logg),
		)

		r.Route("/sellers", func(r chi.Router) {
			r.Post("/", controllers.RegisterSeller(svc, logg))
			r.Route("/{sellerId}/items", func(r chi.Router) {
				r.Get("/", controllers.SellerItems(svc, logg))
				r.Post("/", controllers.AddItem(svc, logg))
				r.Patch("/{itemId}", controllers.UpdateItem(svc, logg))
				r.Delete("/{itemId}", controllers.DeleteItem(svc, logg))
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.SearchItems(svc, logg))
			r.Post("/{itemId}/purchases", controllers.BuyItem(svc, logg))
			r.Post("/{itemId}/watchers", controllers.AddToWishlist(svc, logg))
			r.Post("/{itemId}/ratings", controllers.RateItem(svc, logg))
		})

		r.Get("/buyers/{buyerId}/wishlist", controllers.BuyerWishlist(svc, logg))
		r.Post("/notifications/{recipient}/fetch", controllers.FetchNotifications(svc, logg))
	})

	return r
}
