package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"

	"github.com/ivanzorin/wedding-backend/internal/config"
	"github.com/ivanzorin/wedding-backend/internal/db"
	httpHandlers "github.com/ivanzorin/wedding-backend/internal/http/handlers"
	httpRouter "github.com/ivanzorin/wedding-backend/internal/http/router"
	"github.com/ivanzorin/wedding-backend/internal/kv"
	"github.com/ivanzorin/wedding-backend/internal/logger"
	"github.com/ivanzorin/wedding-backend/internal/repository"
	"github.com/ivanzorin/wedding-backend/internal/service"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// KV хранилище кодов, блокировок и refresh токенов.
	store, err := kv.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("main: ошибка подключения к redis: %v", err)
	}
	defer store.Close()

	// Диспетчер звонков: NATS в production, dev-режим без провайдера.
	var dispatcher service.Dispatcher
	if cfg.Env == "development" && cfg.ZvonokAPIKey == "" {
		dispatcher = service.NewDevDispatcher(cfg.CodeLength)
	} else {
		natsConn, err := nats.Connect(cfg.NatsURL, nats.Name("wedding-server"))
		if err != nil {
			log.Fatalf("main: ошибка подключения к nats: %v", err)
		}
		defer natsConn.Drain()
		dispatcher = service.NewNatsDispatcher(natsConn, cfg.CallSubject, cfg.DispatchTimeout)
	}

	// Репозитории.
	guestRepo := repository.NewGuestRepository(dbConn)
	wishlistRepo := repository.NewWishlistRepository(dbConn)
	preferencesRepo := repository.NewPreferencesRepository(dbConn)

	// Сервисы.
	tokenManager := service.NewTokenManager(store, cfg.JWTSecret, cfg.RefreshSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.MediaTokenTTL)
	verificationService := service.NewVerificationService(store, service.VerificationConfig{
		CodeTTL:     cfg.CodeTTL,
		Cooldown:    cfg.RequestCooldown,
		MaxAttempts: cfg.MaxAttempts,
		LockTTL:     cfg.LockTTL,
	})
	oauthFactory := service.NewOAuthFactory(cfg.VKClientID, cfg.VKClientSecret,
		cfg.YandexClientID, cfg.YandexClientSecret)
	sessionService := service.NewSessionService(guestRepo, verificationService, dispatcher, tokenManager, oauthFactory)
	wishlistService := service.NewWishlistService(wishlistRepo)
	preferencesService := service.NewPreferencesService(preferencesRepo)
	galleryService := service.NewGalleryService(tokenManager,
		cfg.FileStorageMediaBase, cfg.FileStorageInternalURL, cfg.GalleryContentEnabled)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(sessionService)
	guestHandler := httpHandlers.NewGuestHandler(guestRepo)
	wishlistHandler := httpHandlers.NewWishlistHandler(wishlistService)
	preferencesHandler := httpHandlers.NewPreferencesHandler(preferencesService)
	galleryHandler := httpHandlers.NewGalleryHandler(galleryService)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, store)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, guestHandler, wishlistHandler,
		preferencesHandler, galleryHandler, healthHandler, tokenManager, guestRepo)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
