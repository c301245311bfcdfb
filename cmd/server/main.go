// @title Esports Arena real-time API
// @version 1.0
// @description Chat, WebRTC signaling relay and game-stat lookups.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/esports-arena/cache"
	"github.com/Dosada05/esports-arena/config"
	"github.com/Dosada05/esports-arena/db"
	"github.com/Dosada05/esports-arena/gamestats"
	"github.com/Dosada05/esports-arena/handlers"
	"github.com/Dosada05/esports-arena/repositories"
	api "github.com/Dosada05/esports-arena/routes"
	"github.com/Dosada05/esports-arena/services"
	"github.com/Dosada05/esports-arena/signaling"
	"github.com/Dosada05/esports-arena/storage"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Уровень логгера берём из конфигурации, до её загрузки пишем на Info
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("log_level", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to apply database schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database connection established")

	// Архив чата (Cloudflare R2) опционален
	var uploader storage.FileUploader
	if cfg.ArchiveEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
			Endpoint:        cfg.R2Endpoint,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	} else {
		logger.Warn("R2 is not configured, chat archiving disabled")
	}

	var statsCache cache.Cache = cache.NopCache{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisCache.Close()
		statsCache = redisCache
		logger.Info("redis stats cache enabled", slog.Duration("ttl", cfg.StatsCacheTTL))
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	henrikClient := gamestats.NewHenrikClient(cfg.HenrikBaseURL, cfg.HenrikAPIKey, httpClient)
	var riotClient services.RiotAPI
	if cfg.RiotAPIKey != "" {
		riotClient = gamestats.NewRiotClient(cfg.RiotRegion, cfg.RiotAPIKey, cfg.RiotRatePerSec, "", httpClient)
	}

	messageRepo := repositories.NewPostgresMessageRepository(dbConn)

	chatService := services.NewChatService(messageRepo, uploader, logger)
	statsService := services.NewStatsService(henrikClient, riotClient, statsCache, cfg.StatsCacheTTL, logger)
	iceService := services.NewICEService(services.ICEServiceConfig{
		STUNURLs:      cfg.STUNURLs,
		TURNURLs:      cfg.TURNURLs,
		TURNSecret:    cfg.TURNSecret,
		CredentialTTL: cfg.TURNCredentialTTL,
	})

	hub := signaling.NewHub(logger, chatService)
	hubDone := make(chan struct{})
	hubCtx, stopHub := context.WithCancel(context.Background())
	go func() {
		defer close(hubDone)
		hub.Run(hubCtx)
	}()
	logger.Info("signaling hub started")

	dashboardService := services.NewDashboardService(hub, messageRepo)

	if cfg.ChatRetention > 0 {
		go runRetention(ctx, logger, chatService, cfg.ChatRetention)
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, api.Handlers{
		Health:    handlers.NewHealthHandler(dbConn),
		WebSocket: handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins, cfg.WSSendBuffer),
		Chat:      handlers.NewChatHandler(chatService, hub),
		Relay:     handlers.NewRelayHandler(hub),
		ICE:       handlers.NewICEHandler(iceService),
		Stats:     handlers.NewStatsHandler(statsService),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
	})
	logger.Info("routes configured")

	// WriteTimeout не задаём: он оборвал бы долгоживущие WebSocket-соединения.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	exitCode := 0
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		// Hijacked-сокеты Shutdown не ждёт, их закрывает остановка хаба ниже.
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			exitCode = 1
		} else {
			logger.Info("server shutdown complete")
		}
	}

	stopHub()
	<-hubDone

	logger.Info("application exited")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// runRetention удаляет сообщения старше retention: сразу при старте, затем раз в час.
func runRetention(ctx context.Context, logger *slog.Logger, chat services.ChatService, retention time.Duration) {
	const interval = time.Hour
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("chat retention scheduler started", slog.Duration("retention", retention), slog.Duration("interval", interval))

	for {
		if n, err := chat.PurgeExpired(ctx, retention); err != nil {
			logger.Error("retention: purge failed", slog.Any("error", err))
		} else if n > 0 {
			logger.Info("retention: expired messages deleted", slog.Int64("deleted", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
