package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Sema-5678/topup-service/internal/config"
	domainErrors "github.com/Sema-5678/topup-service/internal/domain/errors"
	"github.com/Sema-5678/topup-service/internal/domain/model"
	"github.com/Sema-5678/topup-service/internal/domain/provider"
	domainRepo "github.com/Sema-5678/topup-service/internal/domain/repository"
)

// Reconciler is the payment reconciliation poller. It runs a short-period
// sweep loop over all open records, expires records past the age cutoff,
// and checks due records against the gateway under a concurrency cap.
// A record's reservation (last_checked_at / next_check_at) is written
// before its gateway call, so a slow call never causes the same record to
// be checked twice by successive ticks.
type Reconciler struct {
	store   domainRepo.TopUpStore
	gateway provider.PaymentGateway
	settler Settler

	intervals      PollingIntervals
	tick           time.Duration
	concurrency    int
	tolerance      decimal.Decimal
	gatewayTimeout time.Duration

	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewReconciler creates a new reconciler instance
func NewReconciler(
	store domainRepo.TopUpStore,
	gateway provider.PaymentGateway,
	settler Settler,
	cfg *config.ReconcilerConfig,
	gatewayTimeout time.Duration,
	logger *zap.Logger,
) *Reconciler {
	tick := cfg.TickPeriod
	if tick <= 0 {
		tick = time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	tolerance := decimal.NewFromFloat(cfg.AmountTolerance)
	if !tolerance.IsPositive() {
		tolerance = decimal.NewFromFloat(0.92)
	}
	if gatewayTimeout <= 0 {
		gatewayTimeout = 10 * time.Second
	}

	return &Reconciler{
		store:          store,
		gateway:        gateway,
		settler:        settler,
		intervals:      PollingIntervalsFromConfig(cfg),
		tick:           tick,
		concurrency:    concurrency,
		tolerance:      tolerance,
		gatewayTimeout: gatewayTimeout,
		logger:         logger,
	}
}

// Start launches the sweep loop. The loop exits when ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.run(ctx)
	r.logger.Info("Reconciler started",
		zap.Duration("tick_period", r.tick),
		zap.Int("concurrency", r.concurrency),
		zap.String("amount_tolerance", r.tolerance.String()))
}

// Wait blocks until the sweep loop has exited.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

func (r *Reconciler) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Reconciler stopped")
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				// Store corruption and the like; per-record failures never
				// reach this path.
				r.logger.Error("Sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep runs a single reconciliation tick: expire overdue records, then
// check every due record concurrently. The fan-out completes before Sweep
// returns, so tick work never carries over into the next tick.
func (r *Reconciler) Sweep(ctx context.Context) error {
	now := time.Now().UTC()

	open, err := r.store.ScanOpen(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan open records: %w", err)
	}
	if len(open) == 0 {
		return nil
	}

	due := make([]string, 0, len(open))
	for id, record := range open {
		if _, ok := r.intervals.NextInterval(record.Age(now)); !ok {
			r.expire(ctx, id, now)
			continue
		}
		if record.NextCheckAt != nil && now.Before(*record.NextCheckAt) {
			continue
		}
		due = append(due, id)
	}
	if len(due) == 0 {
		return nil
	}

	r.logger.Debug("Sweeping due records",
		zap.Int("open", len(open)),
		zap.Int("due", len(due)))

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for _, id := range due {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			r.checkRecord(ctx, id, now)
		}(id)
	}
	wg.Wait()
	return nil
}

// CheckNow forces an immediate reconciliation of a single record through
// the same path the sweep uses. Returns whether the record settled, and
// false without error for unknown or already-terminal records.
func (r *Reconciler) CheckNow(ctx context.Context, id string) (bool, error) {
	record, err := r.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if record == nil || record.Status.Terminal() {
		return false, nil
	}
	return r.checkRecord(ctx, id, time.Now().UTC()), nil
}

// checkRecord reconciles one record. Failures are logged and swallowed:
// the record stays pending and is retried on its next scheduled check.
// Returns whether the record settled.
func (r *Reconciler) checkRecord(ctx context.Context, id string, now time.Time) bool {
	record, err := r.store.Get(ctx, id)
	if err != nil {
		r.logger.Error("Failed to load record for check",
			zap.String("record_id", id),
			zap.Error(err))
		return false
	}
	if record == nil || record.Status.Terminal() {
		return false
	}

	interval, ok := r.intervals.NextInterval(record.Age(now))
	if !ok {
		r.expire(ctx, id, now)
		return false
	}

	// Reserve the next check before calling the gateway, so a slow call
	// cannot cause a duplicate concurrent check from a later tick.
	nextCheck := now.Add(interval)
	if _, err := r.store.Patch(ctx, id, model.TopUpPatch{
		LastCheckedAt: &now,
		NextCheckAt:   &nextCheck,
	}); err != nil {
		var terminalErr *domainErrors.TerminalStateError
		if errors.As(err, &terminalErr) {
			// Another path closed the record between the Get above and here.
			return false
		}
		r.logger.Error("Failed to reserve record check",
			zap.String("record_id", id),
			zap.Error(err))
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, r.gatewayTimeout)
	defer cancel()

	history, err := r.gateway.GetTransactionHistory(callCtx, id)
	if err != nil {
		r.logger.Warn("Gateway check failed, record stays pending",
			zap.String("record_id", id),
			zap.Error(err))
		return false
	}

	// Accept any successful transaction covering the expected amount less
	// the configured fee tolerance.
	threshold := record.Amount.Mul(r.tolerance)
	for _, tx := range history {
		if tx.Status != provider.TransactionStatusSuccess {
			continue
		}
		if tx.Amount.Cmp(threshold) < 0 {
			r.logger.Debug("Transaction below acceptance threshold",
				zap.String("record_id", id),
				zap.String("paid", tx.Amount.String()),
				zap.String("threshold", threshold.String()))
			continue
		}
		return r.settle(ctx, id)
	}
	return false
}

// settle transitions a record to succeeded and triggers the settlement
// side effect. The store rejects the transition when the record already
// reached a terminal status, so a check racing a sweep (or another check)
// triggers settlement at most once and never resurrects an expired record.
func (r *Reconciler) settle(ctx context.Context, id string) bool {
	paidAt := time.Now().UTC()
	status := model.TopUpStatusSucceeded
	updated, err := r.store.Patch(ctx, id, model.TopUpPatch{
		Status:         &status,
		PaidAt:         &paidAt,
		ClearNextCheck: true,
	})
	if err != nil {
		var terminalErr *domainErrors.TerminalStateError
		if errors.As(err, &terminalErr) {
			r.logger.Info("Record closed concurrently, skipping settlement",
				zap.String("record_id", id),
				zap.String("status", terminalErr.Status))
			return false
		}
		r.logger.Error("Failed to mark record succeeded",
			zap.String("record_id", id),
			zap.Error(err))
		return false
	}
	if updated == nil {
		return false
	}

	r.logger.Info("Top-up settled",
		zap.String("record_id", id),
		zap.Int64("owner_id", updated.OwnerID),
		zap.String("amount", updated.Amount.StringFixed(2)))

	r.settler.Settle(ctx, updated)
	return true
}

// expire transitions a record past the age cutoff to expired without a
// gateway call.
func (r *Reconciler) expire(ctx context.Context, id string, now time.Time) {
	status := model.TopUpStatusExpired
	expiredAt := now
	if _, err := r.store.Patch(ctx, id, model.TopUpPatch{
		Status:         &status,
		ExpiredAt:      &expiredAt,
		ClearNextCheck: true,
	}); err != nil {
		var terminalErr *domainErrors.TerminalStateError
		if errors.As(err, &terminalErr) {
			return
		}
		r.logger.Error("Failed to expire record",
			zap.String("record_id", id),
			zap.Error(err))
		return
	}
	r.logger.Info("Top-up expired", zap.String("record_id", id))
}
