package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inventagious/funding-gateway/internal/handlers"
)

// Deps carries the wired handler dependencies.
type Deps struct {
	BackendURL string
	BotAPIURL  string
	Session    *handlers.SessionHandler
	LiveFeed   *handlers.LiveFeed
	Feed       *handlers.FeedHandler
	Price      http.HandlerFunc
}

func SetupRoutes(r *chi.Mux, deps Deps) {
	proxy := handlers.NewBackendProxy(deps.BackendURL)

	// Wallet auth (proxied to the funding backend, Authorization passthrough)
	r.Post("/api/auth/wallet/connect", proxy)
	r.Post("/api/auth/wallet/complete-profile", proxy)
	r.Get("/api/auth/profile", proxy)

	// Project CRUD / listing / detail
	r.Route("/api/projects", func(r chi.Router) {
		r.Handle("/*", http.HandlerFunc(proxy))
		r.Handle("/", http.HandlerFunc(proxy))
	})

	// Project interest toggling
	r.Post("/api/interests", proxy)
	r.Delete("/api/interests", proxy)

	// SOL/USD price quote (cached gateway-side)
	r.Get("/api/price/sol", deps.Price)

	// Merged donations/contributions feed (cached gateway-side)
	r.Get("/api/feed/{projectID}", deps.Feed.Get)
	r.Post("/api/live/contribution", deps.Feed.NotifyContribution)

	// Support tickets (thin CRUD, entirely backend-driven)
	r.Route("/api/support/tickets", func(r chi.Router) {
		r.Handle("/*", http.HandlerFunc(proxy))
		r.Handle("/", http.HandlerFunc(proxy))
	})

	// Browser session + redirect path
	r.Post("/api/session", deps.Session.Create)
	r.Post("/api/session/redirect", deps.Session.SetRedirect)
	r.Get("/api/session/redirect", deps.Session.ConsumeRedirect)

	// Onboarding funnel events (admin)
	r.Get("/api/admin/onboarding/events", handlers.GetOnboardingEvents)

	// External bot health probe
	r.Get("/api/bot/health", handlers.NewBotHealthCheck(deps.BotAPIURL))

	// WebSocket endpoint for live project funding updates
	r.Get("/ws/projects", deps.LiveFeed.ServeWS)
}
