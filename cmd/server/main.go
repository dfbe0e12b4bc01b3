package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ruralpay/ledger/docs"
	"github.com/ruralpay/ledger/internal/config"
	"github.com/ruralpay/ledger/internal/database"
	"github.com/ruralpay/ledger/internal/handlers"
	"github.com/ruralpay/ledger/internal/logger"
	"github.com/ruralpay/ledger/internal/services"
	"go.uber.org/zap"
)

// @title Ledger API
// @version 1.0
// @description Double-entry posting ledger: hold, commit and roll back posting plans, read balances at a clock.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.InitDB(startCtx, cfg.Database, zapLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(startCtx, db); err != nil {
		return err
	}

	redisClient := database.InitRedis(startCtx, cfg.Redis, zapLogger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize services
	accountStore := services.NewAccountStore(db, zapLogger)
	planStore := services.NewPlanStore(db)
	batchValidator := services.NewPostingBatchValidator(accountStore, cfg.Ledger.MaxPostingsPerBatch, zapLogger)
	events := services.NewPlanEventPublisher(redisClient, cfg.Ledger.EventsQueue)
	planService := services.NewPostingPlanService(planStore, batchValidator, events, zapLogger)
	balanceService := services.NewBalanceService(planStore, accountStore, zapLogger)

	ledgerHandler := handlers.NewLedgerHandler(planService, balanceService, accountStore, zapLogger)
	router := handlers.NewRouter(ledgerHandler, handlers.RouterConfig{
		AuthEnabled: cfg.Auth.Enabled,
		JWTSecret:   cfg.Auth.SecretKey,
		SwaggerURL:  "http://localhost:" + cfg.Server.Port + "/swagger/doc.json",
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	zapLogger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	zapLogger.Info("server stopped")
	return nil
}
