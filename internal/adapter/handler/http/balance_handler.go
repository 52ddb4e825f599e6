package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainRepo "github.com/Sema-5678/topup-service/internal/domain/repository"
)

type BalanceHandler struct {
	ledger domainRepo.LedgerRepository
	logger *zap.Logger
}

func NewBalanceHandler(ledger domainRepo.LedgerRepository, logger *zap.Logger) *BalanceHandler {
	return &BalanceHandler{
		ledger: ledger,
		logger: logger,
	}
}

type balanceResponse struct {
	OwnerID      int64  `json:"owner_id"`
	Balance      string `json:"balance"`
	BalanceMinor int64  `json:"balance_minor"`
}

// GetBalance returns the owner's current ledger balance. Owners without a
// ledger row read as a zero balance.
func (h *BalanceHandler) GetBalance(c echo.Context) error {
	ownerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || ownerID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid owner id",
		})
	}

	balance, err := h.ledger.GetBalance(c.Request().Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to load owner balance",
			zap.Int64("owner_id", ownerID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to load balance",
		})
	}

	return c.JSON(http.StatusOK, balanceResponse{
		OwnerID:      balance.OwnerID,
		Balance:      decimal.NewFromInt(balance.BalanceMinor).Shift(-2).StringFixed(2),
		BalanceMinor: balance.BalanceMinor,
	})
}
