package domain

import "github.com/shopspring/decimal"

type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "CASH"
	PaymentMethodCard    PaymentMethod = "CARD"
	PaymentMethodUPI     PaymentMethod = "UPI"
	PaymentMethodGateway PaymentMethod = "GATEWAY"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodGateway:
		return true
	}
	return false
}

// Direct reports whether the method settles synchronously in a single
// capture call, as opposed to the gateway redirect flow.
func (m PaymentMethod) Direct() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard || m == PaymentMethodUPI
}

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "PENDING"
	TransactionCaptured TransactionStatus = "CAPTURED"
	TransactionFailed   TransactionStatus = "FAILED"
)

// PaymentStatus is a read-only projection of a payment attempt, driven
// entirely by the payment provider and observed via polling.
type PaymentStatus struct {
	TransactionStatus TransactionStatus
	OrderStatus       OrderStatus
}

type PaymentResult struct {
	PaymentID      string
	OrderID        uint
	Method         PaymentMethod
	Amount         decimal.Decimal
	Status         TransactionStatus
	IdempotencyKey string
}
