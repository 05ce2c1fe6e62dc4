package lifecycle

import (
	"context"

	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

type OrderService interface {
	GetOrder(ctx context.Context, orderID uint) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status domain.OrderStatus) (*domain.Order, error)
}

// Advancer performs the suggested transition for an order through the
// order service. It never mutates a snapshot optimistically: after every
// transition attempt, success or failure, it re-fetches authoritative
// state before anything downstream recomputes progress.
type Advancer struct {
	sm     *StateMachine
	orders OrderService
	logger *zap.Logger
}

func NewAdvancer(sm *StateMachine, orders OrderService, logger *zap.Logger) *Advancer {
	return &Advancer{
		sm:     sm,
		orders: orders,
		logger: logger,
	}
}

// Advance moves the order one step along its canonical forward order.
// The returned order is the re-fetched authoritative snapshot; on a
// rejected transition both the snapshot (when fetchable) and the
// service error are returned.
func (a *Advancer) Advance(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	action, ok := a.sm.NextAction(order.Type, order.Status)
	if !ok {
		return order, apperrors.NewConflictError("order has no further action")
	}

	_, transitionErr := a.orders.UpdateOrderStatus(ctx, order.ID, action.Target)
	if transitionErr != nil {
		a.logger.Warn("order transition rejected",
			zap.Uint("orderId", order.ID),
			zap.String("action", action.Code),
			zap.Error(transitionErr))
	}

	refreshed, fetchErr := a.orders.GetOrder(ctx, order.ID)
	if fetchErr != nil {
		a.logger.Error("failed to refresh order after transition attempt",
			zap.Uint("orderId", order.ID),
			zap.Error(fetchErr))
		if transitionErr != nil {
			return order, transitionErr
		}
		return order, fetchErr
	}

	if transitionErr != nil {
		return refreshed, apperrors.NewExternalError("transition rejected", transitionErr)
	}

	a.logger.Info("order advanced",
		zap.Uint("orderId", order.ID),
		zap.String("action", action.Code),
		zap.String("status", string(refreshed.Status)),
		zap.Int("progress", Progress(refreshed)))

	return refreshed, nil
}
