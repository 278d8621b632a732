package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	_ "github.com/ecomhub/storefront-api/docs"
	"github.com/ecomhub/storefront-api/internal/api"
	"github.com/ecomhub/storefront-api/internal/api/handler"
	"github.com/ecomhub/storefront-api/internal/core/service"
	mongostore "github.com/ecomhub/storefront-api/internal/infrastructure/db/mongo"
	"github.com/ecomhub/storefront-api/internal/infrastructure/db/postgres"
	redisstore "github.com/ecomhub/storefront-api/internal/infrastructure/db/redis"
	"github.com/ecomhub/storefront-api/internal/infrastructure/queue"
	"github.com/ecomhub/storefront-api/internal/infrastructure/storage/filesystem"
	"github.com/ecomhub/storefront-api/internal/pkg/config"
	"github.com/ecomhub/storefront-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title                      Storefront API
// @version                    1.0
// @description                E-commerce backend: cookie-based JWT auth, role-based access, catalog and carts.
// @BasePath                   /
// @securityDefinitions.apikey CookieAuth
// @in                         cookie
// @name                       ecomJwt
func main() {
	cfg := config.Load()
	log := logger.Init(logger.OptionsFor(cfg.Env, cfg.LogLevel, "storefront-api"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Token service: a bad secret is a startup failure ---
	secret, err := service.DecodeSigningSecret(cfg.JWT.Secret)
	if err != nil {
		return err
	}
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:   secret,
		Lifetime: cfg.JWT.Lifetime(),
		Cookie: service.CookieConfig{
			Name:     cfg.JWT.CookieName,
			Path:     cfg.JWT.CookiePath,
			Domain:   cfg.JWT.CookieDomain,
			Secure:   cfg.JWT.CookieSecure,
			HTTPOnly: cfg.JWT.HTTPOnly,
		},
	})
	if err != nil {
		return err
	}

	// --- Infrastructure ---
	store, err := postgres.NewStore(ctx, cfg.Postgres.DSN, cfg.Postgres.Timeout)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	if err := store.SeedRoles(ctx); err != nil {
		return err
	}

	mongoClient, mongoDB, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "storefront-api",
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	auditRepo := mongostore.NewAuditRepository(mongoDB)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("audit indexes not ensured")
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	images, err := filesystem.NewImageStore(cfg.ImageDir, log)
	if err != nil {
		return err
	}

	// --- Audit dispatcher: drained after the HTTP server stops ---
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, log)
	dispatcher.Start(workerCtx)
	defer func() {
		stopWorkers()
		dispatcher.Wait()
	}()

	// --- Repositories & services ---
	users := postgres.NewUserRepository(store.DB)
	roles := postgres.NewRoleRepository(store.DB)
	categories := postgres.NewCategoryRepository(store.DB)
	products := postgres.NewProductRepository(store.DB)
	carts := postgres.NewCartRepository(store.DB)

	authSvc := service.NewAuthService(users, roles, tokens, tokens, dispatcher, log)
	authSvc.AllowPrivilegedSignup(cfg.Signup.AllowPrivilegedRoles)
	if cfg.Signup.AllowPrivilegedRoles && cfg.Env == "production" {
		log.Warn().Msg("SIGNUP_ALLOW_PRIVILEGED_ROLES is enabled: anonymous signups can request admin and seller roles")
	}
	cartSvc := service.NewCartService(carts, products, log)
	catalogSvc := service.NewCatalogService(categories, products, images, cartSvc, log)

	e := api.NewRouter(api.Dependencies{
		Auth:         authSvc,
		Transport:    tokens,
		Catalog:      catalogSvc,
		Cart:         cartSvc,
		Limiter:      redisstore.NewRateLimiter(rdb),
		SigninLimit:  cfg.Signin.RateLimit,
		SigninWindow: cfg.Signin.RateWindow,
		ImageMaxSize: cfg.ImageMaxSize,
		ImageDir:     images.Dir(),
		Health: map[string]handler.Pinger{
			"postgres": store,
			"mongodb":  mongostore.Pinger{Client: mongoClient},
			"redis":    redisstore.Pinger{Client: rdb},
		},
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
		Logger:     log,
	})

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
		close(srvErr)
	}()

	select {
	case err := <-srvErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
