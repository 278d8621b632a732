package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/ecomhub/storefront-api/internal/api/handler"
	"github.com/ecomhub/storefront-api/internal/api/middleware"
	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

const defaultImageMaxSize = "5M"

// Dependencies is everything the HTTP layer needs. Services are built by the
// caller so the router can be exercised with in-memory implementations.
type Dependencies struct {
	Auth      ports.AuthService
	Transport ports.CredentialTransport
	Catalog   ports.CatalogService
	Cart      ports.CartService

	Limiter      ports.RateLimiter
	SigninLimit  int
	SigninWindow time.Duration

	// ImageDir is served read-only under /images. Empty disables it.
	ImageDir string
	// ImageMaxSize bounds image upload bodies, e.g. "5M".
	ImageMaxSize string
	Health       map[string]handler.Pinger

	// Registerer and Gatherer default to the prometheus globals.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	registerer, gatherer := deps.Registerer, deps.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health" || c.Path() == "/health/ready"
		},
	}))
	e.Use(middleware.Authenticate(deps.Auth, deps.Transport, deps.Logger))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(deps.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if deps.ImageDir != "" {
		e.Static("/images", deps.ImageDir)
	}

	authH := handler.NewAuthHandler(deps.Auth, deps.Transport)
	catalogH := handler.NewCatalogHandler(deps.Catalog)
	cartH := handler.NewCartHandler(deps.Cart)

	imageMaxSize := deps.ImageMaxSize
	if imageMaxSize == "" {
		imageMaxSize = defaultImageMaxSize
	}

	requireAuth := middleware.RequireAuth()
	requireAdmin := middleware.RequireRole(domain.RoleAdmin)

	api := e.Group("/api")

	// --- Auth ---
	auth := api.Group("/auth")
	auth.POST("/signup", authH.Signup)
	if deps.Limiter != nil {
		auth.POST("/signin", authH.Signin, middleware.RateLimit(deps.Limiter, "signin", deps.SigninLimit, deps.SigninWindow, deps.Logger))
	} else {
		auth.POST("/signin", authH.Signin)
	}
	auth.GET("/username", authH.Username)
	auth.GET("/user", authH.User, requireAuth)
	auth.POST("/signout", authH.Signout)

	// --- Public catalog ---
	public := api.Group("/public")
	public.GET("/categories", catalogH.ListCategories)
	public.GET("/categories/:categoryId/products", catalogH.ListProductsByCategory)
	public.GET("/products", catalogH.ListProducts)
	public.GET("/products/keyword/:keyword", catalogH.SearchProducts)

	// --- Admin ---
	admin := api.Group("/admin", requireAuth, requireAdmin)
	admin.PUT("/users/:userId/roles", authH.AssignRoles)
	admin.POST("/categories", catalogH.CreateCategory)
	admin.PUT("/categories/:categoryId", catalogH.UpdateCategory)
	admin.DELETE("/categories/:categoryId", catalogH.DeleteCategory)
	admin.POST("/categories/:categoryId/product", catalogH.AddProduct)
	admin.PUT("/products/:productId", catalogH.UpdateProduct)
	admin.DELETE("/products/:productId", catalogH.DeleteProduct)
	admin.PUT("/products/:productId/image", catalogH.UpdateProductImage, echomiddleware.BodyLimit(imageMaxSize))

	// --- Carts ---
	carts := api.Group("/carts", requireAuth)
	carts.GET("", cartH.ListCarts, requireAdmin)
	carts.POST("/products/:productId/quantity/:quantity", cartH.AddProduct)
	carts.GET("/users/cart", cartH.GetCart)
	carts.DELETE("/:cartId/product/:productId", cartH.RemoveProduct)
	api.PUT("/cart/products/:productId/quantity/:operation", cartH.UpdateQuantity, requireAuth)

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
