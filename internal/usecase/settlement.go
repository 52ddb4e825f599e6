package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/Sema-5678/topup-service/internal/domain/model"
	"github.com/Sema-5678/topup-service/internal/domain/provider"
	domainRepo "github.com/Sema-5678/topup-service/internal/domain/repository"
)

// Settler applies the settlement side effect for a record that just
// transitioned to succeeded.
type Settler interface {
	Settle(ctx context.Context, record *model.TopUpRecord)
}

// SettlementService credits the owner's ledger balance and notifies them.
// Both actions are best-effort: the gateway's confirmation is
// authoritative, so a failed credit or notification is logged and the
// record stays succeeded. The ledger's per-reference idempotency makes a
// repeated Settle for the same record a no-op on the balance.
type SettlementService struct {
	ledger   domainRepo.LedgerRepository
	notifier provider.Notifier
	logger   *zap.Logger
}

// NewSettlementService creates a new settlement service instance
func NewSettlementService(ledger domainRepo.LedgerRepository, notifier provider.Notifier, logger *zap.Logger) *SettlementService {
	return &SettlementService{
		ledger:   ledger,
		notifier: notifier,
		logger:   logger,
	}
}

// Settle applies the balance credit and sends the notification.
func (s *SettlementService) Settle(ctx context.Context, record *model.TopUpRecord) {
	if _, err := s.ledger.ApplyCredit(ctx, record.OwnerID, record.Amount, record.Currency, record.ID); err != nil {
		s.logger.Error("Failed to apply balance credit",
			zap.String("record_id", record.ID),
			zap.Int64("owner_id", record.OwnerID),
			zap.String("amount", record.Amount.StringFixed(2)),
			zap.Error(err))
	}

	if err := s.notifier.NotifyCredited(ctx, record.OwnerID, record.Amount, record.Currency); err != nil {
		s.logger.Warn("Failed to deliver top-up notification",
			zap.String("record_id", record.ID),
			zap.Int64("owner_id", record.OwnerID),
			zap.Error(err))
	}
}
