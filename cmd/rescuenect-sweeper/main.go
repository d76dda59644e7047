package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kuyajp123/Rescuenect-sub003/internal/config"
	"github.com/kuyajp123/Rescuenect-sub003/internal/database"
	"github.com/kuyajp123/Rescuenect-sub003/internal/logger"
	"github.com/kuyajp123/Rescuenect-sub003/internal/repository"
	"github.com/kuyajp123/Rescuenect-sub003/internal/sweeper"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "rescuenect-sweeper")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	statusRepo := repository.NewPostgresStatusRepository(db, log)
	notifRepo := repository.NewPostgresNotificationsRepository(db)

	s := sweeper.New(statusRepo, notifRepo, cfg.Sweep.Interval, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := s.Run(ctx); err != nil {
		log.Error("Sweeper exited with error", zap.Error(err))
	}
}
