package paygw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

// Client talks to the external payment provider over HTTP+JSON. Every
// write request carries the caller-supplied idempotency key so the
// provider can deduplicate retried attempts.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, requestTimeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

type payRequest struct {
	OrderID        uint            `json:"orderId"`
	Method         string          `json:"method"`
	Amount         decimal.Decimal `json:"amount"`
	IdempotencyKey string          `json:"idempotencyKey"`
}

type payResponse struct {
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
}

func (c *Client) PayOrder(ctx context.Context, orderID uint, method domain.PaymentMethod, amount decimal.Decimal, idempotencyKey string) (*domain.PaymentResult, error) {
	var resp payResponse
	err := c.post(ctx, "/payments", payRequest{
		OrderID:        orderID,
		Method:         string(method),
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &domain.PaymentResult{
		PaymentID:      resp.PaymentID,
		OrderID:        orderID,
		Method:         method,
		Amount:         amount,
		Status:         domain.TransactionStatus(resp.Status),
		IdempotencyKey: idempotencyKey,
	}, nil
}

type linkRequest struct {
	OrderID        uint   `json:"orderId"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type linkResponse struct {
	PaymentLink string `json:"paymentLink"`
}

// CreatePaymentLink returns an empty string when the provider issues no
// link; deciding what that means is the orchestrator's business.
func (c *Client) CreatePaymentLink(ctx context.Context, orderID uint, idempotencyKey string) (string, error) {
	var resp linkResponse
	err := c.post(ctx, "/payment-links", linkRequest{
		OrderID:        orderID,
		IdempotencyKey: idempotencyKey,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.PaymentLink, nil
}

type statusResponse struct {
	TransactionStatus string `json:"transactionStatus"`
	OrderStatus       string `json:"orderStatus"`
}

func (c *Client) GetPaymentStatus(ctx context.Context, orderID uint) (*domain.PaymentStatus, error) {
	url := fmt.Sprintf("%s/payments/%d/status", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building status request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying payment status: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no payment found for order %d", orderID))
	}
	if res.StatusCode != http.StatusOK {
		return nil, c.providerError(res)
	}

	var resp statusResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decoding status response: %w", err)
	}

	return &domain.PaymentStatus{
		TransactionStatus: domain.TransactionStatus(resp.TransactionStatus),
		OrderStatus:       domain.OrderStatus(resp.OrderStatus),
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling payment provider: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return c.providerError(res)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

type providerErrorBody struct {
	Message string `json:"message"`
}

func (c *Client) providerError(res *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))

	var body providerErrorBody
	message := fmt.Sprintf("payment provider returned %d", res.StatusCode)
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		message = body.Message
	}

	c.logger.Warn("payment provider rejection",
		zap.Int("status", res.StatusCode),
		zap.String("message", message))
	return apperrors.NewExternalError(message, nil)
}
