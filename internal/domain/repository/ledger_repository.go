package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Sema-5678/topup-service/internal/domain/model"
)

// LedgerRepository applies settled top-ups to owner balances.
type LedgerRepository interface {
	// ApplyCredit adds amount (converted to minor units) to the owner's
	// balance atomically. referenceID is the top-up record id; a credit
	// that was already applied for the same reference is a no-op, so the
	// operation is safe to retry.
	ApplyCredit(ctx context.Context, ownerID int64, amount decimal.Decimal, currency string, referenceID string) (*model.UserBalance, error)

	// GetBalance retrieves the current balance for an owner. A missing row
	// reads as a zero balance.
	GetBalance(ctx context.Context, ownerID int64) (*model.UserBalance, error)
}
