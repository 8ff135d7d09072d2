package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/invoicely/config"
	"github.com/yourusername/invoicely/jobs"
	"github.com/yourusername/invoicely/logger"
	"github.com/yourusername/invoicely/repository"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.InitDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := config.SeedAdmin(db, cfg); err != nil {
		zlog.Fatal("failed to seed admin user", zap.Error(err))
	}

	overdue := jobs.NewOverdueJob(repository.NewInvoiceRepository(db), zlog, cfg.OverdueAfterDays)
	scheduler, err := jobs.StartScheduler(overdue, cfg.OverdueCronSpec, zlog)
	if err != nil {
		zlog.Fatal("failed to start cron scheduler", zap.Error(err))
	}

	router := buildRouter(db, cfg, zlog)
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
