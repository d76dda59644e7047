package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/auth"
	"github.com/kuyajp123/Rescuenect-sub003/internal/config"
	"github.com/kuyajp123/Rescuenect-sub003/internal/database"
	httpapi "github.com/kuyajp123/Rescuenect-sub003/internal/http"
	"github.com/kuyajp123/Rescuenect-sub003/internal/logger"
	"github.com/kuyajp123/Rescuenect-sub003/internal/repository"
	"github.com/kuyajp123/Rescuenect-sub003/internal/service"
	"github.com/kuyajp123/Rescuenect-sub003/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "rescuenect-api")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	kv := store.NewRedisKV(redisClient)

	statusRepo := repository.NewPostgresStatusRepository(db, log)
	notifRepo := repository.NewPostgresNotificationsRepository(db)
	tokenRepo := repository.NewPostgresDeviceTokensRepository(db)

	var sender service.PushSender = service.NopSender{}
	if cfg.FCM.Enabled && cfg.FCM.ServerKey != "" {
		sender = service.NewFCMSender(&cfg.FCM, log)
	} else {
		log.Warn("FCM disabled, notifications will not be pushed")
	}

	statusSvc := service.NewStatusService(statusRepo, log)
	notifSvc := service.NewNotificationService(notifRepo, tokenRepo, sender, log)
	weatherSvc := service.NewWeatherService(&cfg.Weather, kv, log)

	verifier := auth.NewKVVerifier(kv)

	router := httpapi.NewRouter(verifier, log, cfg.HTTP.RequestTimeout)
	router.RegisterStatusRoutes(httpapi.NewStatusHandler(statusSvc, log))
	router.RegisterAdminStatusRoutes(httpapi.NewAdminStatusHandler(statusSvc, log))
	router.RegisterNotificationRoutes(httpapi.NewNotificationHandler(notifSvc, log))
	router.RegisterWeatherRoutes(httpapi.NewWeatherHandler(weatherSvc, log))
	router.RegisterHealthRoute()

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("HTTP server exited", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
