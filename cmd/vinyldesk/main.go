package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/vinyldesk/vinyldesk/internal/app"
	"github.com/vinyldesk/vinyldesk/internal/auth"
	"github.com/vinyldesk/vinyldesk/internal/catalog/artists"
	"github.com/vinyldesk/vinyldesk/internal/catalog/collections"
	"github.com/vinyldesk/vinyldesk/internal/catalog/images"
	"github.com/vinyldesk/vinyldesk/internal/catalog/products"
	"github.com/vinyldesk/vinyldesk/internal/catalog/tags"
	"github.com/vinyldesk/vinyldesk/internal/catalog/variants"
	"github.com/vinyldesk/vinyldesk/internal/observability"
	"github.com/vinyldesk/vinyldesk/internal/platform/cache"
	"github.com/vinyldesk/vinyldesk/internal/platform/db"
	"github.com/vinyldesk/vinyldesk/internal/rbac"
	"github.com/vinyldesk/vinyldesk/internal/registry"
	"github.com/vinyldesk/vinyldesk/internal/seed"
	"github.com/vinyldesk/vinyldesk/internal/users"
	"github.com/vinyldesk/vinyldesk/migrations"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(cfg.PGDSN, migrations.FS, "."); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		// Role caching degrades to store reads; boot anyway.
		logger.Warn("redis unavailable", slog.Any("error", err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	tokens := auth.NewTokenIssuer(cfg.DesktopJWTSecret, cfg.AdminJWTSecret, auth.TokenExpiresIn)
	verifier := auth.BcryptVerifier{}

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, verifier, tokens).WithMetrics(metrics)
	authHandler := auth.NewHandler(logger, authService)

	rbacStore := rbac.NewPGStore(pool)
	roleCache := rbac.NewRoleCache(redisClient, cfg.RoleCacheTTL)
	rbacService := rbac.NewService(rbacStore, roleCache)
	guard := &rbac.Guard{
		Logger:   logger,
		Tokens:   tokens,
		Users:    authService,
		Bindings: rbacService,
		Metrics:  metrics,
	}

	usersHandler := users.NewHandler(logger, users.NewService(users.NewRepository(pool), verifier))
	artistsHandler := artists.NewHandler(logger, artists.NewService(artists.NewRepository(pool)))
	tagsHandler := tags.NewHandler(logger, tags.NewService(tags.NewRepository(pool)))
	collectionsHandler := collections.NewHandler(logger, collections.NewService(collections.NewRepository(pool)))
	productsHandler := products.NewHandler(logger, products.NewService(products.NewRepository(pool)))
	variantsHandler := variants.NewHandler(logger, variants.NewService(variants.NewRepository(pool)))
	imagesHandler := images.NewHandler(logger, images.NewService(images.NewRepository(pool)))

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Metrics:            metrics,
		Guard:              guard,
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		ArtistsHandler:     artistsHandler,
		TagsHandler:        tagsHandler,
		CollectionsHandler: collectionsHandler,
		ProductsHandler:    productsHandler,
		VariantsHandler:    variantsHandler,
		ImagesHandler:      imagesHandler,
	})

	entries, err := registry.New(app.PublicPrefixes()...).FromRouter(router)
	if err != nil {
		logger.Error("enumerate routes", slog.Any("error", err))
		os.Exit(1)
	}
	seeder := seed.New(logger, authRepo, verifier, rbacStore)
	if err := seeder.Run(ctx, entries, cfg.SeedUsers()); err != nil {
		logger.Error("seed access control graph", slog.Any("error", err))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppRequestTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
