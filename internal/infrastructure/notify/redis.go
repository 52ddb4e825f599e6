package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreditedEvent is the message published for every settled top-up.
// Delivery is at-least-once.
type CreditedEvent struct {
	OwnerID    int64  `json:"owner_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	CreditedAt string `json:"credited_at"`
}

// RedisNotifier publishes settlement notifications to a Redis channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(addr, password string, db int, channel string, logger *zap.Logger) (*RedisNotifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisNotifier{
		client:  client,
		channel: channel,
		logger:  logger,
	}, nil
}

// NotifyCredited publishes a CreditedEvent for the owner.
func (n *RedisNotifier) NotifyCredited(ctx context.Context, ownerID int64, amount decimal.Decimal, currency string) error {
	event := CreditedEvent{
		OwnerID:    ownerID,
		Amount:     amount.StringFixed(2),
		Currency:   currency,
		CreditedAt: time.Now().UTC().Format(time.RFC3339),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal credited event: %w", err)
	}

	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish credited event: %w", err)
	}

	n.logger.Debug("Published credited event",
		zap.Int64("owner_id", ownerID),
		zap.String("amount", event.Amount),
		zap.String("channel", n.channel))
	return nil
}

// Close releases the Redis connection.
func (n *RedisNotifier) Close() error {
	return n.client.Close()
}
