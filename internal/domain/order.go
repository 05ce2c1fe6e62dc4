package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeDineIn   OrderType = "DINE_IN"
	OrderTypeTakeaway OrderType = "TAKEAWAY"
	OrderTypeDelivery OrderType = "DELIVERY"
)

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusKotSent   OrderStatus = "KOT_SENT"
	OrderStatusServed    OrderStatus = "SERVED"
	OrderStatusBilled    OrderStatus = "BILLED"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Closed reports whether the order accepts no further mutation except
// cancellation bookkeeping.
func (s OrderStatus) Closed() bool {
	return s == OrderStatusPaid || s == OrderStatusCancelled
}

type ItemStatus string

const (
	ItemStatusOpen      ItemStatus = "OPEN"
	ItemStatusServed    ItemStatus = "SERVED"
	ItemStatusBilled    ItemStatus = "BILLED"
	ItemStatusPaid      ItemStatus = "PAID"
	ItemStatusCancelled ItemStatus = "CANCELLED"
)

// Done reports whether the item counts as fulfilled for progress purposes.
// BILLED and PAID are tolerated as synonyms of served.
func (s ItemStatus) Done() bool {
	return s == ItemStatusServed || s == ItemStatusBilled || s == ItemStatusPaid
}

type Order struct {
	ID            uint
	Type          OrderType
	TableID       *int
	Status        OrderStatus
	Note          *string
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	GrandTotal    decimal.Decimal
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalsBalanced checks grandTotal == subtotal + taxTotal - discountTotal.
func (o Order) TotalsBalanced() bool {
	return o.Subtotal.Add(o.TaxTotal).Sub(o.DiscountTotal).Equal(o.GrandTotal)
}

func (o Order) NonCancelledItems() []OrderItem {
	items := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Status != ItemStatusCancelled {
			items = append(items, it)
		}
	}
	return items
}

type OrderItem struct {
	ID         uint
	OrderID    uint
	MenuItemID int
	Name       string
	Quantity   int
	UnitPrice  decimal.Decimal
	LineTotal  decimal.Decimal
	Status     ItemStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
