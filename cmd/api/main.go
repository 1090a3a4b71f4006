package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"afterlife/internal/core/config"
	"afterlife/internal/core/logger"
	"afterlife/internal/core/metrics"
	"afterlife/internal/core/server"
	"afterlife/internal/core/storage"
	cartadapter "afterlife/internal/features/cart/adapters"
	carthandler "afterlife/internal/features/cart/handler"
	cartservice "afterlife/internal/features/cart/service"
	orderadapter "afterlife/internal/features/orders/adapters"
	orderhandler "afterlife/internal/features/orders/handler"
	"afterlife/internal/features/orders/ports"
	orderservice "afterlife/internal/features/orders/service"
	trackinghandler "afterlife/internal/features/tracking/handler"
	trackingservice "afterlife/internal/features/tracking/service"
	"afterlife/internal/jobs"

	"go.uber.org/zap"
)

// @title Afterlife API
// @version 1.0
// @description Orders, delivery journeys and cart checkout for pre-loved goods.
// @contact.name API Support
// @contact.email support@afterlife.shop
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("storage_backend", cfg.Storage.Backend),
	)

	ctx := context.Background()

	// Initialize Storage and run Health Check
	kv, err := storage.Open(cfg.Storage)
	if err != nil {
		l.Fatal("Failed to open storage", zap.Error(err))
	}
	defer kv.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = kv.Ping(pingCtx)
	cancel()
	if err != nil {
		l.Fatal("Storage Health Check Failed", zap.Error(err))
	}
	l.Info("Storage connection verified")

	reg := metrics.NewRegistry()

	// Initialize Order Store & Handler
	var ids ports.IDGenerator = orderadapter.NewTimestampIDGenerator()
	if cfg.Orders.IDStrategy == config.IDStrategyUUID {
		ids = orderadapter.UUIDIDGenerator{}
	}

	store, err := orderservice.NewOrderStore(ctx,
		orderadapter.NewKVOrderRepository(kv, cfg.Storage.OrdersKey),
		orderservice.WithIDGenerator(ids),
		orderservice.WithStrictTransitions(cfg.Orders.StrictTransitions),
		orderservice.WithMetrics(reg),
	)
	if err != nil {
		l.Fatal("Failed to load orders", zap.Error(err))
	}
	orderHdl := orderhandler.NewOrderHandler(store)

	// Initialize Tracking Service & Handler
	trackingSvc := trackingservice.NewTrackingService(store)
	trackingHdl := trackinghandler.NewTrackingHandler(trackingSvc)

	// Initialize Cart Service & Handler
	cartSvc := cartservice.NewCartService(cartadapter.NewKVCartRepository(kv, cfg.Storage.CartKey), store, nil, reg)
	cartHdl := carthandler.NewCartHandler(cartSvc)

	srv := server.New(cfg, kv, reg)

	// Register Routes
	orderHdl.Register(srv.App)
	srv.App.Get("/tracking/:orderId", trackingHdl.GetJourney)
	cartHdl.Register(srv.App)

	if cfg.Demo.JourneySchedule != "" {
		sim := jobs.NewJourneySimulator(store, cfg.Demo.JourneySchedule, reg)
		if err := sim.Start(); err != nil {
			l.Fatal("Failed to start journey simulator", zap.Error(err))
		}
		defer sim.Stop()
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		l.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
