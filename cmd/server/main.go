package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stockdeck/marketplace-system/internal/api"
	"github.com/stockdeck/marketplace-system/internal/core/service"
	"github.com/stockdeck/marketplace-system/internal/infrastructure/config"
	"github.com/stockdeck/marketplace-system/internal/infrastructure/db/mongo"
	"github.com/stockdeck/marketplace-system/internal/infrastructure/db/redis"
	"github.com/stockdeck/marketplace-system/internal/infrastructure/email"
	"github.com/stockdeck/marketplace-system/internal/infrastructure/provider"
	"github.com/stockdeck/marketplace-system/internal/infrastructure/queue"
	"github.com/stockdeck/marketplace-system/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	accessTokenTTL  = 24 * time.Hour
)

// @title Marketplace System API
// @version 1.0
// @description Marketplace backend with identity-provider synchronization.
// @BasePath /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "marketplace-api",
		Pretty:  cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Persistence ---
	userRepo := mongo.NewUserRepository(db)
	roleRepo := mongo.NewRoleRepository(db)
	productRepo := mongo.NewProductRepository(db)
	bidRepo := mongo.NewBidRepository(db)
	askRepo := mongo.NewAskRepository(db)
	saleRepo := mongo.NewSaleRepository(db)
	watchRepo := mongo.NewWatchlistRepository(db)
	txManager := mongo.NewTxManager(mongoClient)

	for _, idx := range []interface {
		EnsureIndexes(context.Context) error
	}{userRepo, roleRepo, productRepo, watchRepo} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	userCache := redis.NewUserCache(rdb)
	dedup := redis.NewMessageDedup(rdb)

	// --- Outbound mail ---
	mailer := email.NewMailer(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		AppName:  cfg.SMTP.AppName,
	})
	dispatcher := queue.NewDispatcher(0, mailer, log)
	dispatcher.Start(ctx)

	// --- Identity provider ---
	verifier, err := provider.NewSignatureVerifier(cfg.Provider.WebhookSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("webhook verifier setup failed")
	}
	providerClient := provider.NewClient(cfg.Provider.APIURL, cfg.Provider.APIKey, log)

	// --- Services ---
	syncService := service.NewSyncService(userRepo, roleRepo, txManager, userCache, dedup, log)
	authService := service.NewAuthService(userRepo, roleRepo, dispatcher, cfg.JWTSecret, accessTokenTTL, log)
	accountService := service.NewAccountService(userRepo, providerClient, log)
	catalogService := service.NewCatalogService(
		productRepo, bidRepo, askRepo, saleRepo, watchRepo, userRepo, dispatcher, log,
	)

	e, err := api.NewRouter(api.Dependencies{
		Log:                log,
		Mongo:              db,
		Redis:              rdb,
		Verifier:           verifier,
		Sync:               syncService,
		Auth:               authService,
		Accounts:           accountService,
		Catalog:            catalogService,
		Users:              userRepo,
		JWTSecret:          cfg.JWTSecret,
		ProviderSessionKey: cfg.Provider.SessionPublicKey,
		ResetBaseURL:       cfg.BaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
