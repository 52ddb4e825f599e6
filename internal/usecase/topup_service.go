package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domainErrors "github.com/Sema-5678/topup-service/internal/domain/errors"
	"github.com/Sema-5678/topup-service/internal/domain/model"
	"github.com/Sema-5678/topup-service/internal/domain/provider"
	domainRepo "github.com/Sema-5678/topup-service/internal/domain/repository"
)

// TopUpService issues new gateway payment requests and the records that
// track them. It is the only writer of fresh records; everything after
// creation is the reconciler's job.
type TopUpService struct {
	store             domainRepo.TopUpStore
	gateway           provider.PaymentGateway
	receiver          string
	returnURLTemplate string
	currency          string
	intervals         PollingIntervals
	logger            *zap.Logger
}

// NewTopUpService creates a new top-up service instance
func NewTopUpService(
	store domainRepo.TopUpStore,
	gateway provider.PaymentGateway,
	receiver string,
	returnURLTemplate string,
	currency string,
	intervals PollingIntervals,
	logger *zap.Logger,
) *TopUpService {
	return &TopUpService{
		store:             store,
		gateway:           gateway,
		receiver:          receiver,
		returnURLTemplate: returnURLTemplate,
		currency:          currency,
		intervals:         intervals,
		logger:            logger,
	}
}

// CreateTopUpResult is returned to the caller of CreateTopUp.
type CreateTopUpResult struct {
	ID         string             `json:"id"`
	PaymentURL string             `json:"payment_url"`
	Record     *model.TopUpRecord `json:"record"`
}

// CreateTopUp validates the amount, requests a hosted payment page tagged
// with a fresh record id, and persists a pending record scheduled for its
// first check after the fast interval.
func (s *TopUpService) CreateTopUp(ctx context.Context, ownerID int64, ownerLabel string, amount decimal.Decimal) (*CreateTopUpResult, error) {
	if !amount.IsPositive() {
		return nil, domainErrors.NewInvalidAmountError(amount, "must be greater than zero")
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, domainErrors.NewInvalidAmountError(amount, "rounds to zero")
	}

	id := uuid.NewString()
	successURL := strings.ReplaceAll(s.returnURLTemplate, "{uid}", id)

	resp, err := s.gateway.CreatePayment(ctx, &provider.CreatePaymentRequest{
		Receiver:   s.receiver,
		Amount:     amount,
		SuccessURL: successURL,
		Label:      id,
	})
	if err != nil {
		s.logger.Error("Failed to create gateway payment",
			zap.String("record_id", id),
			zap.Int64("owner_id", ownerID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to create gateway payment: %w", err)
	}

	now := time.Now().UTC()
	nextCheck := now.Add(s.intervals.Fast)
	record := &model.TopUpRecord{
		ID:          id,
		Kind:        model.KindTopUp,
		OwnerID:     ownerID,
		OwnerLabel:  ownerLabel,
		Amount:      amount,
		Currency:    s.currency,
		Status:      model.TopUpStatusPending,
		CreatedAt:   now,
		NextCheckAt: &nextCheck,
	}

	if err := s.store.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist top-up record: %w", err)
	}

	s.logger.Info("Top-up created",
		zap.String("record_id", id),
		zap.Int64("owner_id", ownerID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("currency", s.currency))

	return &CreateTopUpResult{
		ID:         id,
		PaymentURL: resp.PaymentURL,
		Record:     record,
	}, nil
}

// GetTopUp returns the current record state, or nil if the id is unknown.
func (s *TopUpService) GetTopUp(ctx context.Context, id string) (*model.TopUpRecord, error) {
	return s.store.Get(ctx, id)
}
