package wizard

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/cart"
	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/payment"
)

type Step string

const (
	StepCustomer Step = "CUSTOMER"
	StepMenu     Step = "MENU"
	StepSummary  Step = "SUMMARY"
	StepPayment  Step = "PAYMENT"
	StepDone     Step = "DONE"
)

type OrderService interface {
	CreateOrder(ctx context.Context, orderType domain.OrderType, tableID *int, note *string) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID uint) (*domain.Order, error)
	AddOrderItem(ctx context.Context, orderID uint, menuItemID int, qty int) (*domain.Order, error)
	BillOrder(ctx context.Context, orderID uint) (*domain.Order, error)
}

type PaymentOrchestrator interface {
	PayDirect(ctx context.Context, order *domain.Order, method domain.PaymentMethod) (*domain.PaymentResult, error)
	StartGateway(ctx context.Context, order *domain.Order) (string, <-chan payment.Outcome, error)
	Cancel(orderID uint)
}

// Session drives one order-creation flow through its four steps:
// customer info, menu selection, summary, payment. Each step issues its
// external call only after the previous step's call has resolved. The
// session exclusively owns its cart and its cached order snapshot.
type Session struct {
	id       string
	step     Step
	cart     *cart.Cart
	order    *domain.Order
	orders   OrderService
	payments PaymentOrchestrator
	logger   *zap.Logger
}

func NewSession(orders OrderService, payments PaymentOrchestrator, taxRate decimal.Decimal, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:       id,
		step:     StepCustomer,
		cart:     cart.New(taxRate),
		orders:   orders,
		payments: payments,
		logger:   logger.With(zap.String("sessionId", id)),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Step() Step           { return s.step }
func (s *Session) Cart() *cart.Cart     { return s.cart }
func (s *Session) Order() *domain.Order { return s.order }

// ReplaceOrder swaps in a snapshot refreshed elsewhere, e.g. by the
// lifecycle advancer, which re-fetches after every transition attempt.
func (s *Session) ReplaceOrder(order *domain.Order) {
	if order != nil {
		s.order = order
	}
}

func (s *Session) requireStep(step Step) error {
	if s.step != step {
		return apperrors.NewConflictError("operation not allowed at step " + string(s.step))
	}
	return nil
}

// SubmitCustomerInfo validates order type and table selection locally,
// then creates the order. Validation failures never reach the order
// service; a service failure keeps the session on this step.
func (s *Session) SubmitCustomerInfo(ctx context.Context, orderType domain.OrderType, tableID *int, note *string) error {
	if err := s.requireStep(StepCustomer); err != nil {
		return err
	}

	var details []apperrors.ValidationDetail
	if !orderType.Valid() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "orderType",
			Message: "must be one of DINE_IN, TAKEAWAY, DELIVERY",
		})
	}
	if orderType == domain.OrderTypeDineIn && tableID == nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "tableId",
			Message: "a table is required for dine-in orders",
		})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	order, err := s.orders.CreateOrder(ctx, orderType, tableID, note)
	if err != nil {
		s.logger.Warn("order creation failed", zap.Error(err))
		return apperrors.NewExternalError("creating order", err)
	}

	s.order = order
	s.step = StepMenu
	s.logger.Info("order created",
		zap.Uint("orderId", order.ID),
		zap.String("orderType", string(orderType)))
	return nil
}

// CommitCart submits each cart line as an add-item call, sequentially.
// A line's failure is recorded and the loop continues, so one bad line
// does not block the rest of the cart. The snapshot is updated to the
// last successful response and the session advances to the summary step
// whatever the per-line outcomes were.
func (s *Session) CommitCart(ctx context.Context) (*CommitResult, error) {
	if err := s.requireStep(StepMenu); err != nil {
		return nil, err
	}
	if s.cart.Empty() {
		return nil, apperrors.NewValidationError("cart is empty", apperrors.ValidationDetail{
			Field:   "cart",
			Message: "add at least one line before committing",
		})
	}

	var successes []LineSuccess
	var failures []LineFailure

	for _, line := range s.cart.Lines() {
		updated, err := s.orders.AddOrderItem(ctx, s.order.ID, line.MenuItemID, line.Quantity)
		if err != nil {
			s.logger.Warn("cart line commit failed",
				zap.Uint("orderId", s.order.ID),
				zap.Int("menuItemId", line.MenuItemID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err))
			failures = append(failures, lineFailure(line, err.Error()))
			continue
		}
		s.order = updated
		successes = append(successes, lineSuccess(line))
	}

	result := &CommitResult{
		Status:    commitStatus(successes, failures),
		OrderID:   s.order.ID,
		Successes: successes,
		Failures:  failures,
	}

	s.cart.Reset()
	s.step = StepSummary
	s.logger.Info("cart committed",
		zap.Uint("orderId", s.order.ID),
		zap.String("status", string(result.Status)),
		zap.Int("successCount", len(successes)),
		zap.Int("failureCount", len(failures)))
	return result, nil
}

// ReopenMenu returns from the summary to the menu step to add more
// items. The cached order is re-fetched first.
func (s *Session) ReopenMenu(ctx context.Context) error {
	if err := s.requireStep(StepSummary); err != nil {
		return err
	}

	order, err := s.orders.GetOrder(ctx, s.order.ID)
	if err != nil {
		return apperrors.NewExternalError("refreshing order", err)
	}

	s.order = order
	s.step = StepMenu
	return nil
}

// GenerateBill transitions the order to BILLED. On failure the session
// stays on the summary step.
func (s *Session) GenerateBill(ctx context.Context) error {
	if err := s.requireStep(StepSummary); err != nil {
		return err
	}

	order, err := s.orders.BillOrder(ctx, s.order.ID)
	if err != nil {
		s.logger.Warn("billing failed", zap.Uint("orderId", s.order.ID), zap.Error(err))
		return apperrors.NewExternalError("billing order", err)
	}

	s.order = order
	s.step = StepPayment
	s.logger.Info("order billed",
		zap.Uint("orderId", order.ID),
		zap.String("grandTotal", order.GrandTotal.String()))
	return nil
}

// SettleDirect records a synchronous payment. On success the session is
// closed; on failure the operator stays on the payment step and may
// retry with any method.
func (s *Session) SettleDirect(ctx context.Context, method domain.PaymentMethod) (*domain.PaymentResult, error) {
	if err := s.requireStep(StepPayment); err != nil {
		return nil, err
	}

	result, err := s.payments.PayDirect(ctx, s.order, method)
	if err != nil {
		return nil, err
	}

	s.finish(ctx)
	return result, nil
}

// BeginGatewayPayment starts the asynchronous gateway flow and returns
// the payment link plus the channel delivering the terminal outcome.
func (s *Session) BeginGatewayPayment(ctx context.Context) (string, <-chan payment.Outcome, error) {
	if err := s.requireStep(StepPayment); err != nil {
		return "", nil, err
	}
	return s.payments.StartGateway(ctx, s.order)
}

// CompleteGateway applies a gateway outcome to the session. Captured
// closes the session; failure and timeout keep the payment step.
func (s *Session) CompleteGateway(ctx context.Context, outcome payment.Outcome) error {
	if err := s.requireStep(StepPayment); err != nil {
		return err
	}

	switch outcome {
	case payment.OutcomeCaptured:
		s.finish(ctx)
		return nil
	case payment.OutcomeTimeout:
		return apperrors.NewPaymentTimeoutError("gateway payment timed out")
	default:
		return apperrors.NewExternalError("gateway payment failed", nil)
	}
}

// DismissPayment cancels any pending gateway poll loop for the order.
// Safe to call at any time, including after the loop already stopped.
func (s *Session) DismissPayment() {
	if s.order != nil {
		s.payments.Cancel(s.order.ID)
	}
}

func (s *Session) finish(ctx context.Context) {
	if order, err := s.orders.GetOrder(ctx, s.order.ID); err == nil {
		s.order = order
	} else {
		s.logger.Warn("failed to refresh order on settlement", zap.Uint("orderId", s.order.ID), zap.Error(err))
	}
	s.step = StepDone
	s.logger.Info("wizard session closed", zap.Uint("orderId", s.order.ID))
}
