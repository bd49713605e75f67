package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/inventagious/funding-gateway/internal/backendapi"
	"github.com/inventagious/funding-gateway/internal/config"
	"github.com/inventagious/funding-gateway/internal/database"
	"github.com/inventagious/funding-gateway/internal/donations"
	"github.com/inventagious/funding-gateway/internal/handlers"
	"github.com/inventagious/funding-gateway/internal/middleware"
	"github.com/inventagious/funding-gateway/internal/pricing"
	"github.com/inventagious/funding-gateway/internal/routes"
	"github.com/inventagious/funding-gateway/internal/services"
	"github.com/inventagious/funding-gateway/internal/session"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	if cfg.WalletAppID == "" {
		log.Println("⚠️  WARNING: WALLET_APP_ID not set. Wallet sign-in challenges will not identify the app.")
	}

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (analytics sink)
	log.Printf("Connecting to MongoDB...")
	if err := database.ConnectMongo(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.DisconnectMongo()

	// Ensure MongoDB indexes for onboarding analytics
	if err := services.EnsureAnalyticsIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB analytics indexes: %v", err)
	} else {
		log.Println("✅ MongoDB analytics indexes ensured")
	}

	// Backend client + live feed wiring
	backend := backendapi.New(cfg.BackendURL)
	hub := services.NewProjectHub()
	liveFeed := handlers.NewLiveFeed(hub, backend, cfg.PollInterval, cfg.PlatformFeeRate)
	feedHandler := handlers.NewFeedHandler(donations.NewAggregator(backend, donations.NewFeedCache(0)), liveFeed)
	priceQuote := handlers.NewPriceQuote(pricing.NewService(backend, 0))
	sessionHandler := handlers.NewSessionHandler(session.NewRedisRedirectStore(database.RedisClient))

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → AuthRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + auth rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r, routes.Deps{
		BackendURL: cfg.BackendURL,
		BotAPIURL:  cfg.BotAPIURL,
		Session:    sessionHandler,
		LiveFeed:   liveFeed,
		Feed:       feedHandler,
		Price:      priceQuote,
	})

	log.Println("📋 Registered routes:")
	log.Println("  GET  /health")
	log.Println("  POST /api/auth/wallet/connect")
	log.Println("  POST /api/auth/wallet/complete-profile")
	log.Println("  GET  /api/auth/profile")
	log.Println("  *    /api/projects")
	log.Println("  GET  /api/price/sol")
	log.Println("  GET  /api/feed/{projectID}")
	log.Println("  POST /api/live/contribution")
	log.Println("  *    /api/support/tickets")
	log.Println("  POST /api/session")
	log.Println("  POST /api/session/redirect")
	log.Println("  GET  /api/session/redirect")
	log.Println("  GET  /api/bot/health")
	log.Println("  GET  /ws/projects")

	log.Printf("🚀 Inventagious gateway running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
