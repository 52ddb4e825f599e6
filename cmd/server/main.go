package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	adapterRepo "github.com/Sema-5678/topup-service/internal/adapter/repository"
	"github.com/Sema-5678/topup-service/internal/config"
	"github.com/Sema-5678/topup-service/internal/infrastructure/database"
	httpServer "github.com/Sema-5678/topup-service/internal/infrastructure/http"
	"github.com/Sema-5678/topup-service/internal/infrastructure/notify"
	"github.com/Sema-5678/topup-service/internal/infrastructure/provider/yoomoney"
	"github.com/Sema-5678/topup-service/internal/usecase"
	pkgLogger "github.com/Sema-5678/topup-service/pkg/logger"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration; missing required settings are fatal here.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := pkgLogger.NewZapLogger(pkgLogger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Ledger database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to ledger database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, logger); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run ledger migrations", zap.Error(err))
	}

	// Notification channel
	notifier, err := notify.NewRedisNotifier(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel, logger)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}()

	// Record store and collaborators
	store := adapterRepo.NewFileTopUpStore(cfg.Store.Path, logger)
	ledger := adapterRepo.NewLedgerRepository(db, logger)
	gateway := yoomoney.NewClient(cfg.Gateway.BaseURL, cfg.Gateway.AccessToken, cfg.Gateway.RequestTimeout, logger)

	intervals := usecase.PollingIntervalsFromConfig(&cfg.Reconciler)
	topUpService := usecase.NewTopUpService(store, gateway, cfg.Gateway.Receiver, cfg.Gateway.ReturnURLTemplate, cfg.Service.Currency, intervals, logger)
	settlement := usecase.NewSettlementService(ledger, notifier, logger)
	reconciler := usecase.NewReconciler(store, gateway, settlement, &cfg.Reconciler, cfg.Gateway.RequestTimeout, logger)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reconciler.Start(ctx)

	srv := httpServer.NewServer(cfg, logger, topUpService, reconciler, ledger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")

	cancel()
	reconciler.Wait()

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}
