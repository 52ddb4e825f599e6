package yoomoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sema-5678/topup-service/internal/domain/provider"
)

const (
	quickpayPath = "/quickpay/confirm.xml"
	historyPath  = "/api/operation-history"

	defaultTimeout = 10 * time.Second
)

// Client talks to the YooMoney quickpay and REST endpoints. It implements
// the PaymentGateway interface; the reconciliation engine only depends on
// the interface, not on this type.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

// NewClient creates a gateway client. baseURL is configurable so tests can
// point it at a local server.
func NewClient(baseURL, accessToken string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   accessToken,
		logger:  logger,
	}
}

// CreatePayment submits a quickpay form and returns the hosted payment
// page URL the gateway redirects to.
func (c *Client) CreatePayment(ctx context.Context, req *provider.CreatePaymentRequest) (*provider.CreatePaymentResponse, error) {
	form := url.Values{}
	form.Set("receiver", req.Receiver)
	form.Set("quickpay-form", "shop")
	form.Set("targets", "Balance top-up")
	form.Set("paymentType", "SB")
	form.Set("sum", req.Amount.StringFixed(2))
	form.Set("label", req.Label)
	form.Set("successURL", req.SuccessURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+quickpayPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create quickpay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("quickpay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Error("Quickpay request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("label", req.Label),
			zap.ByteString("body", body))
		return nil, &provider.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("quickpay returned status %d", resp.StatusCode),
		}
	}

	// The payment page is whatever URL the form redirected to.
	payURL := resp.Request.URL.String()

	c.logger.Debug("Quickpay payment page created",
		zap.String("label", req.Label),
		zap.String("pay_url", payURL))

	return &provider.CreatePaymentResponse{PaymentURL: payURL}, nil
}

type operation struct {
	OperationID string      `json:"operation_id"`
	Status      string      `json:"status"`
	Amount      json.Number `json:"amount"`
	Label       string      `json:"label"`
}

type historyResponse struct {
	Error      string      `json:"error"`
	Operations []operation `json:"operations"`
}

// GetTransactionHistory returns the gateway operations recorded under the
// given correlation label.
func (c *Client) GetTransactionHistory(ctx context.Context, label string) ([]provider.Transaction, error) {
	form := url.Values{}
	form.Set("label", label)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+historyPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create history request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("operation history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("Operation history request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("label", label),
			zap.ByteString("body", body))
		return nil, &provider.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("operation history returned status %d", resp.StatusCode),
		}
	}

	var history historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		return nil, fmt.Errorf("failed to decode operation history: %w", err)
	}
	if history.Error != "" {
		return nil, &provider.GatewayError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("operation history error: %s", history.Error),
		}
	}

	transactions := make([]provider.Transaction, 0, len(history.Operations))
	for _, op := range history.Operations {
		amount, err := decimalFromNumber(op.Amount)
		if err != nil {
			c.logger.Warn("Skipping operation with unparseable amount",
				zap.String("operation_id", op.OperationID),
				zap.String("amount", op.Amount.String()))
			continue
		}
		transactions = append(transactions, provider.Transaction{
			Status: provider.TransactionStatus(op.Status),
			Amount: amount,
		})
	}
	return transactions, nil
}
