package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// Notifier delivers a settlement notification to the owner of a credited
// top-up. Best-effort from the engine's perspective.
type Notifier interface {
	NotifyCredited(ctx context.Context, ownerID int64, amount decimal.Decimal, currency string) error
}
