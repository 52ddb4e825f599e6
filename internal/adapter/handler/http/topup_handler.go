package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/Sema-5678/topup-service/internal/domain/errors"
	"github.com/Sema-5678/topup-service/internal/usecase"
)

type TopUpHandler struct {
	service    *usecase.TopUpService
	reconciler *usecase.Reconciler
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewTopUpHandler(service *usecase.TopUpService, reconciler *usecase.Reconciler, logger *zap.Logger) *TopUpHandler {
	return &TopUpHandler{
		service:    service,
		reconciler: reconciler,
		validate:   validator.New(),
		logger:     logger,
	}
}

type createTopUpRequest struct {
	OwnerID    int64  `json:"owner_id" validate:"required,gt=0"`
	OwnerLabel string `json:"owner_label" validate:"max=128"`
	Amount     string `json:"amount" validate:"required"`
}

// CreateTopUp issues a new payment request and returns the record id and
// payment page URL.
func (h *TopUpHandler) CreateTopUp(c echo.Context) error {
	var req createTopUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid amount",
		})
	}

	result, err := h.service.CreateTopUp(c.Request().Context(), req.OwnerID, req.OwnerLabel, amount)
	if err != nil {
		var invalid *domainErrors.InvalidAmountError
		if errors.As(err, &invalid) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": invalid.Error(),
			})
		}
		h.logger.Error("Failed to create top-up",
			zap.Int64("owner_id", req.OwnerID),
			zap.Error(err))
		return c.JSON(http.StatusBadGateway, map[string]string{
			"error": "Failed to create payment",
		})
	}

	return c.JSON(http.StatusCreated, result)
}

// GetTopUp returns the current state of one record.
func (h *TopUpHandler) GetTopUp(c echo.Context) error {
	id := c.Param("id")

	record, err := h.service.GetTopUp(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Failed to load top-up record",
			zap.String("record_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to load record",
		})
	}
	if record == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Top-up not found",
		})
	}

	return c.JSON(http.StatusOK, record)
}

// CheckTopUp forces an immediate reconciliation of one record.
func (h *TopUpHandler) CheckTopUp(c echo.Context) error {
	id := c.Param("id")

	record, err := h.service.GetTopUp(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Failed to load top-up record",
			zap.String("record_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to load record",
		})
	}
	if record == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Top-up not found",
		})
	}

	settled, err := h.reconciler.CheckNow(c.Request().Context(), id)
	if err != nil {
		h.logger.Error("Manual check failed",
			zap.String("record_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Check failed",
		})
	}

	record, err = h.service.GetTopUp(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to load record",
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"settled": settled,
		"record":  record,
	})
}
