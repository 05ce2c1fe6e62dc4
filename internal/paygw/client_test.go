package paygw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return NewClient(srv.URL, time.Second, zap.NewNop()), srv
}

func TestPayOrder_SendsIdempotencyKeyAndAmount(t *testing.T) {
	var got payRequest
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payments", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(payResponse{PaymentID: "p-1", Status: "CAPTURED"})
	})
	defer srv.Close()

	result, err := client.PayOrder(context.Background(), 42, domain.PaymentMethodUPI,
		decimal.RequireFromString("10.50"), "payment-42-1700000000000")
	require.NoError(t, err)

	assert.Equal(t, uint(42), got.OrderID)
	assert.Equal(t, "UPI", got.Method)
	assert.Equal(t, "payment-42-1700000000000", got.IdempotencyKey)
	assert.Equal(t, domain.TransactionCaptured, result.Status)
	assert.Equal(t, "p-1", result.PaymentID)
}

func TestPayOrder_RejectionCarriesProviderMessage(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "order already paid"})
	})
	defer srv.Close()

	_, err := client.PayOrder(context.Background(), 42, domain.PaymentMethodCash,
		decimal.RequireFromString("10.50"), "payment-42-1")

	ee, ok := apperrors.IsExternalError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, "order already paid", ee.Message)
}

func TestCreatePaymentLink_EmptyLinkIsNotAnError(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment-links", r.URL.Path)
		json.NewEncoder(w).Encode(linkResponse{})
	})
	defer srv.Close()

	link, err := client.CreatePaymentLink(context.Background(), 42, "payment-link-42-1")
	require.NoError(t, err)
	assert.Empty(t, link)
}

func TestGetPaymentStatus_ParsesBothStatuses(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payments/42/status", r.URL.Path)
		json.NewEncoder(w).Encode(statusResponse{TransactionStatus: "PENDING", OrderStatus: "BILLED"})
	})
	defer srv.Close()

	status, err := client.GetPaymentStatus(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionPending, status.TransactionStatus)
	assert.Equal(t, domain.OrderStatusBilled, status.OrderStatus)
}

func TestGetPaymentStatus_NotFound(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	_, err := client.GetPaymentStatus(context.Background(), 42)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "got %v", err)
}
