package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/stockdeck/marketplace-system/docs"
	"github.com/stockdeck/marketplace-system/internal/api/handler"
	"github.com/stockdeck/marketplace-system/internal/api/middleware"
	"github.com/stockdeck/marketplace-system/internal/core/domain"
	"github.com/stockdeck/marketplace-system/internal/core/ports"
)

// Dependencies carries everything the router needs, constructed once at
// startup and passed by reference — no ambient service state.
type Dependencies struct {
	Log zerolog.Logger

	Mongo *mongo.Database
	Redis *redis.Client

	Verifier handler.PayloadVerifier
	Sync     ports.SyncService
	Auth     ports.AuthService
	Accounts ports.AccountService
	Catalog  ports.CatalogService
	Users    ports.UserRepository

	JWTSecret string
	// ProviderSessionKey is the PEM public key for provider session
	// tokens; when empty the provider-session routes are not mounted.
	ProviderSessionKey string
	// ResetBaseURL prefixes password-reset links in outbound mail.
	ResetBaseURL string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("marketplace"))

	authRequired := middleware.Auth(deps.JWTSecret)
	adminOnly := middleware.RBAC(string(domain.RoleAdmin))

	// --- Webhooks (provider-signed, no JWT) ---
	webhookHandler := handler.NewWebhookHandler(deps.Verifier, deps.Sync)
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.Auth, deps.Users)

	webhooks := e.Group("/api/webhooks")
	webhooks.POST("/provider", webhookHandler.Receive)
	webhooks.GET("/user-status", accountHandler.UserStatus)
	webhooks.POST("/send-magic-link", accountHandler.SendMagicLink)

	// --- Password auth ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.ResetBaseURL)

	auth := e.Group("/api/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/token", authHandler.Login)
	auth.GET("/me", authHandler.Me, authRequired)
	auth.POST("/reset-password", authHandler.RequestPasswordReset)
	auth.POST("/update-password", authHandler.UpdatePassword)

	// --- Provider sessions ---
	if deps.ProviderSessionKey != "" {
		providerAuth, err := middleware.ProviderAuth(deps.ProviderSessionKey)
		if err != nil {
			return nil, err
		}
		e.GET("/api/session/me", accountHandler.SessionMe, providerAuth)
	}

	// --- Catalog ---
	productHandler := handler.NewProductHandler(deps.Catalog)
	tradeHandler := handler.NewTradeHandler(deps.Catalog)

	e.GET("/products/trending", productHandler.Trending)
	e.GET("/products/popular-brands", productHandler.PopularBrands)
	e.GET("/products/new-arrivals", productHandler.NewArrivals)
	e.POST("/products", productHandler.Create, authRequired, adminOnly)

	e.POST("/bids", tradeHandler.PlaceBid, authRequired)
	e.GET("/variants/:id/bids", tradeHandler.ListBids)
	e.POST("/asks", tradeHandler.PlaceAsk, authRequired)
	e.GET("/variants/:id/asks", tradeHandler.ListAsks)

	e.POST("/sales", tradeHandler.RecordSale, authRequired, adminOnly)
	e.GET("/products/:id/sales", tradeHandler.ListSales)

	e.POST("/watchlist", tradeHandler.Watch, authRequired)
	e.DELETE("/watchlist/:variantId", tradeHandler.Unwatch, authRequired)
	e.GET("/watchlist", tradeHandler.Watchlist, authRequired)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	return e, nil
}
