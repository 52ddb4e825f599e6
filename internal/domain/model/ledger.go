package model

import "time"

// UserBalance is the ledger balance for one owner, kept in minor units
// (cents/kopecks) to avoid floating-point drift.
type UserBalance struct {
	OwnerID      int64     `gorm:"primaryKey" json:"owner_id"`
	BalanceMinor int64     `gorm:"not null;default:0" json:"balance_minor"`
	UpdatedAt    time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UserBalance) TableName() string {
	return "user_balances"
}

// BalanceTransaction is one applied credit. ReferenceID carries the top-up
// record id; its unique index is what makes ApplyCredit idempotent.
type BalanceTransaction struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID      int64     `gorm:"not null;index" json:"owner_id"`
	AmountMinor  int64     `gorm:"not null" json:"amount_minor"`
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`
	Currency     string    `gorm:"size:3" json:"currency"`
	ReferenceID  string    `gorm:"size:64;uniqueIndex" json:"reference_id"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
