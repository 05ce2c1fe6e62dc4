package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateSessionResponse struct {
	TraceID   string `json:"traceId"`
	SessionID string `json:"sessionId"`
	Step      string `json:"step"`
}

type CustomerInfoRequest struct {
	OrderType string  `json:"orderType"`
	TableID   *int    `json:"tableId,omitempty"`
	Note      *string `json:"note,omitempty"`
}

type AddCartLineRequest struct {
	MenuItemID int             `json:"menuItemId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	Note       string          `json:"note,omitempty"`
}

type UpdateCartLineRequest struct {
	Delta int `json:"delta"`
}

type CartLineDTO struct {
	MenuItemID int             `json:"menuItemId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	Note       string          `json:"note,omitempty"`
}

type CartResponse struct {
	TraceID  string          `json:"traceId"`
	Lines    []CartLineDTO   `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

type CommitResponse struct {
	TraceID   string           `json:"traceId"`
	OrderID   uint             `json:"orderId"`
	Status    string           `json:"status"`
	Successes []LineSuccessDTO `json:"successes"`
	Failures  []LineFailureDTO `json:"failures"`
	Timestamp time.Time        `json:"timestamp"`
}

type LineSuccessDTO struct {
	MenuItemID int `json:"menuItemId"`
	Quantity   int `json:"quantity"`
}

type LineFailureDTO struct {
	MenuItemID int    `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
	Reason     string `json:"reason"`
}

type UpdateItemStatusRequest struct {
	Status string `json:"status"`
}

type PayRequest struct {
	Method string `json:"method"`
}

type PayResponse struct {
	TraceID     string          `json:"traceId"`
	OrderID     uint            `json:"orderId"`
	Method      string          `json:"method"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	PaymentLink string          `json:"paymentLink,omitempty"`
}

type PaymentOutcomeResponse struct {
	TraceID string `json:"traceId"`
	State   string `json:"state"`
}

type OrderItemDTO struct {
	ID         uint            `json:"id"`
	MenuItemID int             `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	Status     string          `json:"status"`
}

type OrderResponse struct {
	TraceID       string          `json:"traceId"`
	OrderID       uint            `json:"orderId"`
	OrderType     string          `json:"orderType"`
	TableID       *int            `json:"tableId,omitempty"`
	Status        string          `json:"status"`
	Step          string          `json:"step"`
	Progress      int             `json:"progress"`
	NextAction    *NextActionDTO  `json:"nextAction,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"taxTotal"`
	DiscountTotal decimal.Decimal `json:"discountTotal"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	Items         []OrderItemDTO  `json:"items"`
}

type NextActionDTO struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
