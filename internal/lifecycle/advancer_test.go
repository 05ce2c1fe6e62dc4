package lifecycle

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

type mockOrderService struct {
	GetOrderFunc          func(ctx context.Context, orderID uint) (*domain.Order, error)
	UpdateOrderStatusFunc func(ctx context.Context, orderID uint, status domain.OrderStatus) (*domain.Order, error)
}

func (m *mockOrderService) GetOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	return m.GetOrderFunc(ctx, orderID)
}

func (m *mockOrderService) UpdateOrderStatus(ctx context.Context, orderID uint, status domain.OrderStatus) (*domain.Order, error) {
	return m.UpdateOrderStatusFunc(ctx, orderID, status)
}

func TestAdvance_MovesToSuggestedTarget(t *testing.T) {
	ctx := context.Background()
	var requested domain.OrderStatus

	orders := &mockOrderService{
		UpdateOrderStatusFunc: func(ctx context.Context, orderID uint, status domain.OrderStatus) (*domain.Order, error) {
			requested = status
			return &domain.Order{ID: orderID, Type: domain.OrderTypeDineIn, Status: status}, nil
		},
		GetOrderFunc: func(ctx context.Context, orderID uint) (*domain.Order, error) {
			return &domain.Order{ID: orderID, Type: domain.OrderTypeDineIn, Status: domain.OrderStatusKotSent}, nil
		},
	}

	a := NewAdvancer(NewStateMachine(), orders, zap.NewNop())

	refreshed, err := a.Advance(ctx, &domain.Order{ID: 1, Type: domain.OrderTypeDineIn, Status: domain.OrderStatusOpen})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requested != domain.OrderStatusKotSent {
		t.Errorf("expected transition to KOT_SENT, got %s", requested)
	}
	if refreshed.Status != domain.OrderStatusKotSent {
		t.Errorf("expected refreshed snapshot, got status %s", refreshed.Status)
	}
}

func TestAdvance_RefetchesOnRejectedTransition(t *testing.T) {
	ctx := context.Background()
	fetched := false

	orders := &mockOrderService{
		UpdateOrderStatusFunc: func(ctx context.Context, orderID uint, status domain.OrderStatus) (*domain.Order, error) {
			return nil, apperrors.NewConflictError("order already paid")
		},
		GetOrderFunc: func(ctx context.Context, orderID uint) (*domain.Order, error) {
			fetched = true
			return &domain.Order{ID: orderID, Type: domain.OrderTypeDineIn, Status: domain.OrderStatusPaid}, nil
		},
	}

	a := NewAdvancer(NewStateMachine(), orders, zap.NewNop())

	refreshed, err := a.Advance(ctx, &domain.Order{ID: 1, Type: domain.OrderTypeDineIn, Status: domain.OrderStatusBilled})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if _, ok := apperrors.IsExternalError(err); !ok {
		t.Errorf("expected external error, got %T", err)
	}
	if !fetched {
		t.Error("expected authoritative re-fetch after the failed attempt")
	}
	// the snapshot reflects the server, not an optimistic local mutation
	if refreshed.Status != domain.OrderStatusPaid {
		t.Errorf("expected server status PAID, got %s", refreshed.Status)
	}
}

func TestAdvance_NoActionAtEndOfForwardOrder(t *testing.T) {
	ctx := context.Background()

	orders := &mockOrderService{
		UpdateOrderStatusFunc: func(ctx context.Context, orderID uint, status domain.OrderStatus) (*domain.Order, error) {
			t.Fatal("no external call expected")
			return nil, nil
		},
	}

	a := NewAdvancer(NewStateMachine(), orders, zap.NewNop())

	_, err := a.Advance(ctx, &domain.Order{ID: 1, Type: domain.OrderTypeDineIn, Status: domain.OrderStatusPaid})
	if _, ok := apperrors.IsConflictError(err); !ok {
		t.Errorf("expected conflict error, got %v", err)
	}
}
