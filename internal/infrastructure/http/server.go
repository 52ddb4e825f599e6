package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/Sema-5678/topup-service/internal/adapter/handler/http"
	"github.com/Sema-5678/topup-service/internal/config"
	domainRepo "github.com/Sema-5678/topup-service/internal/domain/repository"
	"github.com/Sema-5678/topup-service/internal/usecase"
)

type Server struct {
	config *config.Config
	logger *zap.Logger
	echo   *echo.Echo
}

func NewServer(cfg *config.Config, logger *zap.Logger, topUpService *usecase.TopUpService, reconciler *usecase.Reconciler, ledger domainRepo.LedgerRepository) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	s := &Server{
		config: cfg,
		logger: logger,
		echo:   e,
	}
	s.setupRoutes(topUpService, reconciler, ledger)
	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes(topUpService *usecase.TopUpService, reconciler *usecase.Reconciler, ledger domainRepo.LedgerRepository) {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	topUpHandler := handlers.NewTopUpHandler(topUpService, reconciler, s.logger)
	balanceHandler := handlers.NewBalanceHandler(ledger, s.logger)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")
	v1.POST("/topups", topUpHandler.CreateTopUp)
	v1.GET("/topups/:id", topUpHandler.GetTopUp)
	v1.POST("/topups/:id/check", topUpHandler.CheckTopUp)
	v1.GET("/owners/:id/balance", balanceHandler.GetBalance)
}
