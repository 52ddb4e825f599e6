package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// PaymentGateway defines the narrow capability pair the service needs from
// the external payment gateway: issue a hosted payment page, and look up
// the transaction history for a correlation label.
type PaymentGateway interface {
	// CreatePayment requests a hosted payment page for the given amount,
	// tagged with the correlation label, and returns its URL.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error)

	// GetTransactionHistory returns the gateway's transactions recorded
	// under the given correlation label.
	GetTransactionHistory(ctx context.Context, label string) ([]Transaction, error)
}

// CreatePaymentRequest describes a hosted payment page request.
type CreatePaymentRequest struct {
	Receiver   string          `json:"receiver"`
	Amount     decimal.Decimal `json:"amount"`
	SuccessURL string          `json:"success_url"`
	Label      string          `json:"label"`
}

// CreatePaymentResponse is the result of a payment page request.
type CreatePaymentResponse struct {
	PaymentURL string `json:"payment_url"`
}

// TransactionStatus is the gateway-reported state of a transaction.
type TransactionStatus string

const (
	TransactionStatusSuccess    TransactionStatus = "success"
	TransactionStatusRefused    TransactionStatus = "refused"
	TransactionStatusInProgress TransactionStatus = "in_progress"
)

// Transaction is one entry of a gateway transaction history.
type Transaction struct {
	Status TransactionStatus `json:"status"`
	Amount decimal.Decimal   `json:"amount"`
}

// GatewayError is a protocol-level error reported by the gateway.
type GatewayError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *GatewayError) Error() string {
	return e.Message
}
