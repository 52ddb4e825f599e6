package errors

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidAmountError is returned when a requested top-up amount fails
// validation at the creation boundary.
type InvalidAmountError struct {
	Amount decimal.Decimal
	Reason string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid top-up amount %s: %s", e.Amount.String(), e.Reason)
}

// NewInvalidAmountError creates a new InvalidAmountError
func NewInvalidAmountError(amount decimal.Decimal, reason string) *InvalidAmountError {
	return &InvalidAmountError{
		Amount: amount,
		Reason: reason,
	}
}

// TerminalStateError is returned when a patch targets a record that has
// already reached a terminal status. Terminal records are immutable;
// callers racing for a status transition treat this as having lost.
type TerminalStateError struct {
	ID     string
	Status string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("record %s is already terminal (%s)", e.ID, e.Status)
}

// NewTerminalStateError creates a new TerminalStateError
func NewTerminalStateError(id string, status string) *TerminalStateError {
	return &TerminalStateError{
		ID:     id,
		Status: status,
	}
}
