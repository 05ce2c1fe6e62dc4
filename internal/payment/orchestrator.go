package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

type PaymentService interface {
	PayOrder(ctx context.Context, orderID uint, method domain.PaymentMethod, amount decimal.Decimal, idempotencyKey string) (*domain.PaymentResult, error)
	CreatePaymentLink(ctx context.Context, orderID uint, idempotencyKey string) (string, error)
	GetPaymentStatus(ctx context.Context, orderID uint) (*domain.PaymentStatus, error)
}

// Outcome is the terminal result of a gateway payment flow, reported
// exactly once per started flow.
type Outcome string

const (
	OutcomeCaptured Outcome = "CAPTURED"
	OutcomeFailed   Outcome = "FAILED"
	OutcomeTimeout  Outcome = "TIMEOUT"
)

type Config struct {
	PollInterval    time.Duration
	SettleDelay     time.Duration
	MaxPollDuration time.Duration
}

type pollHandle struct {
	cancel context.CancelFunc
}

// Orchestrator settles orders either through a single direct capture or
// through the asynchronous gateway flow: issue a payment link, then poll
// payment status until a terminal condition. Each order has at most one
// active poll loop; the loops are owned here, keyed by order id, with an
// explicit start/stop lifecycle.
type Orchestrator struct {
	payments PaymentService
	logger   *zap.Logger
	cfg      Config

	mu     sync.Mutex
	active map[uint]*pollHandle
}

func NewOrchestrator(payments PaymentService, logger *zap.Logger, cfg Config) *Orchestrator {
	return &Orchestrator{
		payments: payments,
		logger:   logger,
		cfg:      cfg,
		active:   make(map[uint]*pollHandle),
	}
}

// PayDirect records a synchronous payment for the order's grand total.
// The idempotency key is regenerated per attempt, so a retried click is
// a distinguishable new attempt.
func (o *Orchestrator) PayDirect(ctx context.Context, order *domain.Order, method domain.PaymentMethod) (*domain.PaymentResult, error) {
	if !method.Direct() {
		return nil, apperrors.NewValidationError("method does not settle directly", apperrors.ValidationDetail{
			Field:   "method",
			Message: "must be one of CASH, CARD, UPI",
		})
	}

	key := fmt.Sprintf("payment-%d-%d", order.ID, time.Now().UnixMilli())
	result, err := o.payments.PayOrder(ctx, order.ID, method, order.GrandTotal, key)
	if err != nil {
		o.logger.Warn("direct payment rejected",
			zap.Uint("orderId", order.ID),
			zap.String("method", string(method)),
			zap.Error(err))
		return nil, apperrors.NewExternalError("payment rejected", err)
	}

	o.logger.Info("direct payment captured",
		zap.Uint("orderId", order.ID),
		zap.String("method", string(method)),
		zap.String("idempotencyKey", key))
	return result, nil
}

// StartGateway requests a payment link and begins polling for the
// attempt's terminal status. The returned channel delivers exactly one
// Outcome unless the loop is cancelled first. Starting a second flow for
// the same order cancels the prior loop.
func (o *Orchestrator) StartGateway(ctx context.Context, order *domain.Order) (string, <-chan Outcome, error) {
	key := fmt.Sprintf("payment-link-%d-%d", order.ID, time.Now().UnixMilli())
	link, err := o.payments.CreatePaymentLink(ctx, order.ID, key)
	if err != nil {
		return "", nil, apperrors.NewExternalError("creating payment link", err)
	}
	if link == "" {
		return "", nil, apperrors.NewGatewayUnavailableError("payment provider returned no payment link")
	}

	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	handle := &pollHandle{cancel: cancel}

	o.mu.Lock()
	if prior, ok := o.active[order.ID]; ok {
		prior.cancel()
	}
	o.active[order.ID] = handle
	o.mu.Unlock()

	outcome := make(chan Outcome, 1)
	go o.poll(pollCtx, order.ID, handle, outcome)

	o.logger.Info("gateway payment started",
		zap.Uint("orderId", order.ID),
		zap.String("idempotencyKey", key))
	return link, outcome, nil
}

// Cancel stops the order's poll loop, if any. Idempotent: cancelling an
// already-stopped loop is a no-op.
func (o *Orchestrator) Cancel(orderID uint) {
	o.mu.Lock()
	handle, ok := o.active[orderID]
	if ok {
		delete(o.active, orderID)
	}
	o.mu.Unlock()

	if ok {
		handle.cancel()
		o.logger.Info("payment polling cancelled", zap.Uint("orderId", orderID))
	}
}

func (o *Orchestrator) clear(orderID uint, handle *pollHandle) {
	o.mu.Lock()
	if o.active[orderID] == handle {
		delete(o.active, orderID)
	}
	o.mu.Unlock()
}

func (o *Orchestrator) poll(ctx context.Context, orderID uint, handle *pollHandle, outcome chan<- Outcome) {
	defer o.clear(orderID, handle)

	deadline := time.Now().Add(o.cfg.MaxPollDuration)
	ticker := time.NewTicker(o.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		// the select picks arms at random, so a fired ticker can win
		// over a cancelled context; never query after cancellation
		if ctx.Err() != nil {
			return
		}

		if o.cfg.MaxPollDuration > 0 && time.Now().After(deadline) {
			o.logger.Warn("payment polling timed out", zap.Uint("orderId", orderID))
			o.report(ctx, orderID, outcome, OutcomeTimeout)
			return
		}

		status, err := o.payments.GetPaymentStatus(ctx, orderID)
		if err != nil {
			// a single failed poll is invisible to the operator
			o.logger.Warn("payment status poll failed", zap.Uint("orderId", orderID), zap.Error(err))
			continue
		}

		switch {
		case status.TransactionStatus == domain.TransactionCaptured,
			status.OrderStatus == domain.OrderStatusPaid:
			ticker.Stop()
			o.report(ctx, orderID, outcome, OutcomeCaptured)
			return
		case status.TransactionStatus == domain.TransactionFailed:
			ticker.Stop()
			o.report(ctx, orderID, outcome, OutcomeFailed)
			return
		}
	}
}

// report waits the settle delay before delivering the outcome, giving
// related state time to catch up. Cancellation during the delay
// suppresses delivery.
func (o *Orchestrator) report(ctx context.Context, orderID uint, outcome chan<- Outcome, result Outcome) {
	timer := time.NewTimer(o.cfg.SettleDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	if ctx.Err() != nil {
		return
	}

	outcome <- result
	o.logger.Info("gateway payment settled",
		zap.Uint("orderId", orderID),
		zap.String("outcome", string(result)))
}
