package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aurelia-atelier/aurelia-backend/config"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/controller"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/repository"
	"github.com/aurelia-atelier/aurelia-backend/internal/app/service"
	"github.com/aurelia-atelier/aurelia-backend/internal/cartstore"
	"github.com/aurelia-atelier/aurelia-backend/internal/db"
	"github.com/aurelia-atelier/aurelia-backend/internal/durable"
	"github.com/aurelia-atelier/aurelia-backend/internal/router"
	"github.com/aurelia-atelier/aurelia-backend/internal/scheduler"
	ws "github.com/aurelia-atelier/aurelia-backend/internal/websocket"
	"github.com/aurelia-atelier/aurelia-backend/pkg/logger"
	"github.com/aurelia-atelier/aurelia-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting AURELIA Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Cart persistence and cross-context change feed
	carts := durable.NewRedis(redis.GetClient())
	manager := cartstore.NewManager(carts)
	defer manager.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())

	// Initialize services
	catalogService := service.NewCatalogService(productRepo)
	orderService := service.NewOrderService(
		orderRepo,
		productRepo,
		db.GetDB(),
		cfg.Cart.TaxRate,
		cfg.Cart.Currency,
	)

	// Cart sync hub
	hub := ws.NewHub(manager)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	// Initialize controllers
	productController := controller.NewProductController(catalogService)
	cartController := controller.NewCartController(
		manager,
		catalogService,
		cfg.Cart.TaxRate,
		cfg.Cart.Currency,
	)
	orderController := controller.NewOrderController(orderService, manager)
	syncController := controller.NewSyncController(hub, cfg.CORS.AllowedOrigins)

	// Stale cart sweeper
	sweeper := scheduler.NewCartSweeper(redis.GetClient(), cfg.Cart.SweepSchedule, cfg.Cart.MaxIdleAge)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start cart sweeper", err)
	}
	defer sweeper.Stop()

	// Setup router
	r := router.NewRouter(
		productController,
		cartController,
		orderController,
		syncController,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
