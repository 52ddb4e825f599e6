package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TopUpKind identifies the kind of payment a record tracks.
type TopUpKind string

const (
	// KindTopUp is a balance top-up payment. The only kind so far.
	KindTopUp TopUpKind = "topup"
)

// TopUpStatus is the lifecycle state of a top-up record.
// Transitions are monotonic: once a record reaches a terminal status it
// never goes back to pending.
type TopUpStatus string

const (
	TopUpStatusPending   TopUpStatus = "pending"
	TopUpStatusSucceeded TopUpStatus = "succeeded"
	TopUpStatusExpired   TopUpStatus = "expired"
	TopUpStatusFailed    TopUpStatus = "failed"

	// TopUpStatusPolling is a legacy in-flight marker written by older
	// tooling. Treated as open on read; never written by this service.
	TopUpStatusPolling TopUpStatus = "polling"
)

// Terminal reports whether the status is absorbing.
func (s TopUpStatus) Terminal() bool {
	switch s {
	case TopUpStatusSucceeded, TopUpStatusExpired, TopUpStatusFailed:
		return true
	}
	return false
}

// Open reports whether the record still needs reconciliation.
func (s TopUpStatus) Open() bool {
	return s == TopUpStatusPending || s == TopUpStatusPolling
}

// TopUpRecord is one top-up attempt. The JSON tags define the persisted
// file layout: timestamps are RFC 3339 UTC, the amount is a string-encoded
// decimal with two fractional digits.
type TopUpRecord struct {
	ID            string          `json:"uid"`
	Kind          TopUpKind       `json:"type"`
	OwnerID       int64           `json:"owner_id"`
	OwnerLabel    string          `json:"owner_label"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        TopUpStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	LastCheckedAt *time.Time      `json:"last_checked_at"`
	NextCheckAt   *time.Time      `json:"next_check_at"`
	PaidAt        *time.Time      `json:"paid_at"`
	ExpiredAt     *time.Time      `json:"expired_at"`
}

// MarshalJSON renders the amount with exactly two fractional digits
// ("100.00", not "100"), matching the persisted file layout. The decimal
// type's default rendering trims trailing zeros.
func (r TopUpRecord) MarshalJSON() ([]byte, error) {
	type alias TopUpRecord
	return json.Marshal(struct {
		alias
		Amount string `json:"amount"`
	}{
		alias:  alias(r),
		Amount: r.Amount.StringFixed(2),
	})
}

// Age returns how long the record has existed as of now.
func (r *TopUpRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}

// TopUpPatch is a partial update merged into an existing record by the
// store. Nil fields are left untouched. NextCheckAt can only be cleared
// via ClearNextCheck, never by a nil pointer.
type TopUpPatch struct {
	Status         *TopUpStatus
	LastCheckedAt  *time.Time
	NextCheckAt    *time.Time
	ClearNextCheck bool
	PaidAt         *time.Time
	ExpiredAt      *time.Time
}

// Apply merges the patch into rec in place.
func (p TopUpPatch) Apply(rec *TopUpRecord) {
	if p.Status != nil {
		rec.Status = *p.Status
	}
	if p.LastCheckedAt != nil {
		rec.LastCheckedAt = p.LastCheckedAt
	}
	if p.NextCheckAt != nil {
		rec.NextCheckAt = p.NextCheckAt
	}
	if p.ClearNextCheck {
		rec.NextCheckAt = nil
	}
	if p.PaidAt != nil {
		rec.PaidAt = p.PaidAt
	}
	if p.ExpiredAt != nil {
		rec.ExpiredAt = p.ExpiredAt
	}
}
