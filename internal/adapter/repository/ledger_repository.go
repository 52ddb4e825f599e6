package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sema-5678/topup-service/internal/domain/model"
	domainRepo "github.com/Sema-5678/topup-service/internal/domain/repository"
)

// ledgerRepository implements the LedgerRepository interface
type ledgerRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLedgerRepository creates a new ledger repository instance
func NewLedgerRepository(db *gorm.DB, logger *zap.Logger) domainRepo.LedgerRepository {
	return &ledgerRepository{
		db:     db,
		logger: logger,
	}
}

// ApplyCredit adds amount (in minor units) to the owner's balance
// atomically. The transaction row keyed by referenceID makes retries
// no-ops, so settlement may safely be invoked more than once per record.
func (r *ledgerRepository) ApplyCredit(ctx context.Context, ownerID int64, amount decimal.Decimal, currency string, referenceID string) (*model.UserBalance, error) {
	amountMinor := amount.Shift(2).IntPart()
	if amountMinor <= 0 {
		return nil, fmt.Errorf("credit amount must be positive, got %s", amount.String())
	}

	var balance model.UserBalance

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Idempotency: a transaction with this reference means the credit
		// was already applied.
		var existing model.BalanceTransaction
		err := tx.Where("reference_id = ?", referenceID).First(&existing).Error
		if err == nil {
			r.logger.Info("Credit already applied for reference (idempotency)",
				zap.String("reference_id", referenceID),
				zap.Int64("owner_id", ownerID))
			return tx.Where("owner_id = ?", ownerID).First(&balance).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing transaction: %w", err)
		}

		// Lock the owner's balance row for update, creating it on first credit.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ?", ownerID).
			FirstOrCreate(&balance, model.UserBalance{OwnerID: ownerID}).Error; err != nil {
			return fmt.Errorf("failed to lock balance: %w", err)
		}

		newBalance := balance.BalanceMinor + amountMinor

		transaction := &model.BalanceTransaction{
			OwnerID:      ownerID,
			AmountMinor:  amountMinor,
			BalanceAfter: newBalance,
			Currency:     currency,
			ReferenceID:  referenceID,
			Description:  "Balance top-up",
		}
		if err := tx.Create(transaction).Error; err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}

		balance.BalanceMinor = newBalance
		balance.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&balance).Error; err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		r.logger.Info("Credit applied",
			zap.Int64("owner_id", ownerID),
			zap.Int64("amount_minor", amountMinor),
			zap.Int64("balance_after", newBalance),
			zap.String("reference_id", referenceID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

// GetBalance retrieves the current balance for an owner. A missing row
// reads as a zero balance.
func (r *ledgerRepository) GetBalance(ctx context.Context, ownerID int64) (*model.UserBalance, error) {
	var balance model.UserBalance

	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.UserBalance{OwnerID: ownerID}, nil
		}
		r.logger.Error("Failed to get balance",
			zap.Int64("owner_id", ownerID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &balance, nil
}
