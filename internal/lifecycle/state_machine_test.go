package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/internal/domain"
)

func order(t domain.OrderType, status domain.OrderStatus, itemStatuses ...domain.ItemStatus) *domain.Order {
	o := &domain.Order{Type: t, Status: status}
	for i, s := range itemStatuses {
		o.Items = append(o.Items, domain.OrderItem{ID: uint(i + 1), Status: s})
	}
	return o
}

func TestNextAction_DineInForwardOrder(t *testing.T) {
	sm := NewStateMachine()

	steps := []struct {
		status domain.OrderStatus
		code   string
	}{
		{domain.OrderStatusOpen, "SEND_TO_KITCHEN"},
		{domain.OrderStatusKotSent, "MARK_SERVED"},
		{domain.OrderStatusServed, "GENERATE_BILL"},
		{domain.OrderStatusBilled, "PROCEED_TO_PAYMENT"},
	}
	for _, step := range steps {
		action, ok := sm.NextAction(domain.OrderTypeDineIn, step.status)
		require.True(t, ok, "status %s", step.status)
		assert.Equal(t, step.code, action.Code)
	}

	_, ok := sm.NextAction(domain.OrderTypeDineIn, domain.OrderStatusPaid)
	assert.False(t, ok)
}

func TestNextAction_TakeawayBillsBeforeKitchen(t *testing.T) {
	sm := NewStateMachine()

	action, ok := sm.NextAction(domain.OrderTypeTakeaway, domain.OrderStatusOpen)
	require.True(t, ok)
	assert.Equal(t, "GENERATE_BILL", action.Code)

	action, ok = sm.NextAction(domain.OrderTypeTakeaway, domain.OrderStatusBilled)
	require.True(t, ok)
	assert.Equal(t, "PROCEED_TO_PAYMENT", action.Code)

	// after payment the kitchen step comes next, never "Mark Served" directly
	action, ok = sm.NextAction(domain.OrderTypeTakeaway, domain.OrderStatusPaid)
	require.True(t, ok)
	assert.Equal(t, "SEND_TO_KITCHEN", action.Code)

	_, ok = sm.NextAction(domain.OrderTypeTakeaway, domain.OrderStatusServed)
	assert.False(t, ok)
}

func TestNextAction_DeliveryMatchesTakeaway(t *testing.T) {
	sm := NewStateMachine()

	tw, _ := sm.NextAction(domain.OrderTypeTakeaway, domain.OrderStatusOpen)
	dl, ok := sm.NextAction(domain.OrderTypeDelivery, domain.OrderStatusOpen)
	require.True(t, ok)
	assert.Equal(t, tw.Code, dl.Code)
}

func TestNextAction_CancelledHasNoAction(t *testing.T) {
	sm := NewStateMachine()

	_, ok := sm.NextAction(domain.OrderTypeDineIn, domain.OrderStatusCancelled)
	assert.False(t, ok)
}

func TestProgress_DineInPaidForcedTo100(t *testing.T) {
	// forced even when every item is still open or cancelled
	assert.Equal(t, 100, Progress(order(domain.OrderTypeDineIn, domain.OrderStatusPaid,
		domain.ItemStatusOpen, domain.ItemStatusOpen)))
	assert.Equal(t, 100, Progress(order(domain.OrderTypeDineIn, domain.OrderStatusPaid,
		domain.ItemStatusCancelled, domain.ItemStatusCancelled)))
}

func TestProgress_TakeawayServedForcedTo100(t *testing.T) {
	assert.Equal(t, 100, Progress(order(domain.OrderTypeTakeaway, domain.OrderStatusServed,
		domain.ItemStatusOpen)))
	assert.Equal(t, 100, Progress(order(domain.OrderTypeDelivery, domain.OrderStatusServed)))
}

func TestProgress_ItemRatio(t *testing.T) {
	o := order(domain.OrderTypeDineIn, domain.OrderStatusKotSent,
		domain.ItemStatusServed, domain.ItemStatusOpen, domain.ItemStatusOpen, domain.ItemStatusOpen)
	assert.Equal(t, 25, Progress(o))
}

func TestProgress_BilledAndPaidItemsCountAsDone(t *testing.T) {
	o := order(domain.OrderTypeDineIn, domain.OrderStatusBilled,
		domain.ItemStatusBilled, domain.ItemStatusPaid, domain.ItemStatusOpen)
	// 2 of 3 done, round half up of 66.66...
	assert.Equal(t, 67, Progress(o))
}

func TestProgress_RoundsHalfUp(t *testing.T) {
	// 1 of 8 done = 12.5 -> 13
	o := order(domain.OrderTypeDineIn, domain.OrderStatusKotSent,
		domain.ItemStatusServed, domain.ItemStatusOpen, domain.ItemStatusOpen, domain.ItemStatusOpen,
		domain.ItemStatusOpen, domain.ItemStatusOpen, domain.ItemStatusOpen, domain.ItemStatusOpen)
	assert.Equal(t, 13, Progress(o))
}

func TestProgress_CancelledItemsLeaveRatio(t *testing.T) {
	o := order(domain.OrderTypeDineIn, domain.OrderStatusKotSent,
		domain.ItemStatusServed, domain.ItemStatusCancelled, domain.ItemStatusOpen)
	// cancelled item is out of numerator and denominator: 1 of 2
	assert.Equal(t, 50, Progress(o))
}

func TestProgress_AllItemsCancelledIsZero(t *testing.T) {
	o := order(domain.OrderTypeDineIn, domain.OrderStatusKotSent,
		domain.ItemStatusCancelled, domain.ItemStatusCancelled)
	assert.Equal(t, 0, Progress(o))
}

func TestProgress_NoItemsIsZero(t *testing.T) {
	assert.Equal(t, 0, Progress(order(domain.OrderTypeDineIn, domain.OrderStatusOpen)))
}
