package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_TotalsBalanced(t *testing.T) {
	order := Order{
		Subtotal:      decimal.RequireFromString("100.00"),
		TaxTotal:      decimal.RequireFromString("12.00"),
		DiscountTotal: decimal.RequireFromString("5.00"),
		GrandTotal:    decimal.RequireFromString("107.00"),
	}

	assert.True(t, order.TotalsBalanced())

	order.GrandTotal = decimal.RequireFromString("107.01")
	assert.False(t, order.TotalsBalanced())
}

func TestOrder_NonCancelledItems(t *testing.T) {
	order := Order{
		Items: []OrderItem{
			{ID: 1, Status: ItemStatusOpen},
			{ID: 2, Status: ItemStatusCancelled},
			{ID: 3, Status: ItemStatusServed},
		},
	}

	items := order.NonCancelledItems()
	assert.Len(t, items, 2)
	assert.Equal(t, uint(1), items[0].ID)
	assert.Equal(t, uint(3), items[1].ID)
}

func TestItemStatus_Done(t *testing.T) {
	assert.True(t, ItemStatusServed.Done())
	assert.True(t, ItemStatusBilled.Done())
	assert.True(t, ItemStatusPaid.Done())
	assert.False(t, ItemStatusOpen.Done())
	assert.False(t, ItemStatusCancelled.Done())
}

func TestOrderStatus_Closed(t *testing.T) {
	assert.True(t, OrderStatusPaid.Closed())
	assert.True(t, OrderStatusCancelled.Closed())
	assert.False(t, OrderStatusOpen.Closed())
	assert.False(t, OrderStatusBilled.Closed())
}

func TestOrderType_Valid(t *testing.T) {
	assert.True(t, OrderTypeDineIn.Valid())
	assert.True(t, OrderTypeTakeaway.Valid())
	assert.True(t, OrderTypeDelivery.Valid())
	assert.False(t, OrderType("DRIVE_THRU").Valid())
}

func TestPaymentMethod_Direct(t *testing.T) {
	assert.True(t, PaymentMethodCash.Direct())
	assert.True(t, PaymentMethodCard.Direct())
	assert.True(t, PaymentMethodUPI.Direct())
	assert.False(t, PaymentMethodGateway.Direct())
}
