package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/domain"
	"comanda/internal/dto"
	apperrors "comanda/internal/errors"
	"comanda/internal/lifecycle"
	"comanda/internal/wizard"
)

// ItemService covers the per-item mutations operators perform while an
// order is being fulfilled.
type ItemService interface {
	CancelOrderItem(ctx context.Context, orderID uint, itemID uint) (*domain.Order, error)
	UpdateOrderItemStatus(ctx context.Context, orderID uint, itemID uint, status domain.ItemStatus) (*domain.Order, error)
}

// Controller exposes the order wizard over HTTP. Every request gets a
// traceId; sessions live in memory, keyed by uuid.
type Controller struct {
	orders   wizard.OrderService
	items    ItemService
	payments wizard.PaymentOrchestrator
	advancer *lifecycle.Advancer
	sm       *lifecycle.StateMachine
	taxRate  decimal.Decimal
	sessions *sessionRegistry
	logger   *zap.Logger
}

func New(
	orders wizard.OrderService,
	items ItemService,
	payments wizard.PaymentOrchestrator,
	advancer *lifecycle.Advancer,
	sm *lifecycle.StateMachine,
	taxRate decimal.Decimal,
	logger *zap.Logger,
) *Controller {
	return &Controller{
		orders:   orders,
		items:    items,
		payments: payments,
		advancer: advancer,
		sm:       sm,
		taxRate:  taxRate,
		sessions: newSessionRegistry(),
		logger:   logger,
	}
}

func (c *Controller) Routes(r chi.Router) {
	r.Post("/wizard/sessions", c.createSession)
	r.Route("/wizard/sessions/{sessionId}", func(r chi.Router) {
		r.Delete("/", c.deleteSession)
		r.Post("/customer", c.submitCustomerInfo)
		r.Get("/cart", c.getCart)
		r.Post("/cart/lines", c.addCartLine)
		r.Patch("/cart/lines/{lineIndex}", c.updateCartLine)
		r.Delete("/cart/lines/{lineIndex}", c.removeCartLine)
		r.Post("/commit", c.commitCart)
		r.Post("/reopen", c.reopenMenu)
		r.Post("/bill", c.generateBill)
		r.Post("/pay", c.pay)
		r.Get("/payment/outcome", c.paymentOutcome)
		r.Delete("/payment", c.dismissPayment)
		r.Get("/order", c.getOrder)
		r.Post("/order/advance", c.advanceOrder)
		r.Put("/order/items/{itemId}/status", c.updateItemStatus)
		r.Delete("/order/items/{itemId}", c.cancelItem)
	})
}

func (c *Controller) createSession(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()

	session := wizard.NewSession(c.orders, c.payments, c.taxRate, c.logger)
	c.sessions.add(session)

	c.writeJSON(w, http.StatusCreated, dto.CreateSessionResponse{
		TraceID:   traceID,
		SessionID: session.ID(),
		Step:      string(session.Step()),
	})
}

func (c *Controller) deleteSession(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	id := chi.URLParam(r, "sessionId")

	if !c.sessions.remove(id) {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) submitCustomerInfo(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	var req dto.CustomerInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
		return
	}

	entry.mu.Lock()
	err := entry.session.SubmitCustomerInfo(r.Context(), domain.OrderType(req.OrderType), req.TableID, req.Note)
	entry.mu.Unlock()
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeOrder(w, traceID, entry)
}

func (c *Controller) getCart(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	entry.mu.Lock()
	lines := entry.session.Cart().Lines()
	totals := entry.session.Cart().Totals(entry.session.Order())
	entry.mu.Unlock()

	resp := dto.CartResponse{
		TraceID:  traceID,
		Lines:    make([]dto.CartLineDTO, len(lines)),
		Subtotal: totals.Subtotal,
		Tax:      totals.Tax,
		Total:    totals.Total,
	}
	for i, line := range lines {
		resp.Lines[i] = dto.CartLineDTO{
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			UnitPrice:  line.UnitPrice,
			Quantity:   line.Quantity,
			Note:       line.Note,
		}
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) addCartLine(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	var req dto.AddCartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
		return
	}

	item := domain.MenuItem{ID: req.MenuItemID, Name: req.Name, Price: req.UnitPrice, IsActive: true}

	entry.mu.Lock()
	err := entry.session.Cart().AddLine(item, req.Quantity, req.Note)
	entry.mu.Unlock()
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.getCart(w, r)
}

func (c *Controller) updateCartLine(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "lineIndex"))
	if err != nil {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "lineIndex must be an integer")
		return
	}

	var req dto.UpdateCartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
		return
	}

	entry.mu.Lock()
	err = entry.session.Cart().UpdateQty(index, req.Delta)
	entry.mu.Unlock()
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.getCart(w, r)
}

func (c *Controller) removeCartLine(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "lineIndex"))
	if err != nil {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "lineIndex must be an integer")
		return
	}

	entry.mu.Lock()
	err = entry.session.Cart().RemoveLine(index)
	entry.mu.Unlock()
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.getCart(w, r)
}

func (c *Controller) commitCart(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	entry.mu.Lock()
	result, err := entry.session.CommitCart(r.Context())
	entry.mu.Unlock()
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	resp := dto.CommitResponse{
		TraceID:   traceID,
		OrderID:   result.OrderID,
		Status:    string(result.Status),
		Successes: make([]dto.LineSuccessDTO, len(result.Successes)),
		Failures:  make([]dto.LineFailureDTO, len(result.Failures)),
		Timestamp: time.Now().UTC(),
	}
	for i, s := range result.Successes {
		resp.Successes[i] = dto.LineSuccessDTO{MenuItemID: s.MenuItemID, Quantity: s.Quantity}
	}
	for i, f := range result.Failures {
		resp.Failures[i] = dto.LineFailureDTO{MenuItemID: f.MenuItemID, Quantity: f.Quantity, Reason: f.Reason}
	}

	statusCode := http.StatusOK
	if result.Status == wizard.CommitPartial {
		statusCode = http.StatusPartialContent
	} else if result.Status == wizard.CommitAllFailed {
		statusCode = http.StatusUnprocessableEntity
	}
	c.writeJSON(w, statusCode, resp)
}

func (c *Controller) reopenMenu(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	entry.mu.Lock()
	err := entry.session.ReopenMenu(r.Context())
	entry.mu.Unlock()
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeOrder(w, traceID, entry)
}

func (c *Controller) generateBill(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	entry.mu.Lock()
	err := entry.session.GenerateBill(r.Context())
	entry.mu.Unlock()
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeOrder(w, traceID, entry)
}

func (c *Controller) pay(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	var req dto.PayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
		return
	}

	method := domain.PaymentMethod(req.Method)
	if !method.Valid() {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "unknown payment method")
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if method.Direct() {
		result, err := entry.session.SettleDirect(r.Context(), method)
		if err != nil {
			c.handleError(w, traceID, err)
			return
		}
		c.writeJSON(w, http.StatusOK, dto.PayResponse{
			TraceID: traceID,
			OrderID: result.OrderID,
			Method:  string(result.Method),
			Amount:  result.Amount,
			Status:  string(result.Status),
		})
		return
	}

	link, outcome, err := entry.session.BeginGatewayPayment(r.Context())
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}
	entry.outcome = outcome
	entry.settled = nil

	c.writeJSON(w, http.StatusAccepted, dto.PayResponse{
		TraceID:     traceID,
		OrderID:     entry.session.Order().ID,
		Method:      string(method),
		Amount:      entry.session.Order().GrandTotal,
		Status:      string(domain.TransactionPending),
		PaymentLink: link,
	})
}

// paymentOutcome reads the gateway outcome without blocking. The first
// read that observes a terminal outcome applies it to the session;
// later reads see the stored result.
func (c *Controller) paymentOutcome(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.settled != nil {
		c.writeJSON(w, http.StatusOK, dto.PaymentOutcomeResponse{TraceID: traceID, State: string(*entry.settled)})
		return
	}
	if entry.outcome == nil {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", "no gateway payment in progress")
		return
	}

	select {
	case outcome := <-entry.outcome:
		entry.settled = &outcome
		entry.outcome = nil
		if err := entry.session.CompleteGateway(r.Context(), outcome); err != nil {
			c.logger.Warn("gateway payment did not settle",
				zap.String("sessionId", entry.session.ID()),
				zap.Error(err))
		}
		c.writeJSON(w, http.StatusOK, dto.PaymentOutcomeResponse{TraceID: traceID, State: string(outcome)})
	default:
		c.writeJSON(w, http.StatusOK, dto.PaymentOutcomeResponse{TraceID: traceID, State: string(domain.TransactionPending)})
	}
}

func (c *Controller) dismissPayment(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	entry.mu.Lock()
	entry.session.DismissPayment()
	entry.outcome = nil
	entry.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) getOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}
	c.writeOrder(w, traceID, entry)
}

func (c *Controller) advanceOrder(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	order := entry.session.Order()
	if order == nil {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", "no order created yet")
		return
	}

	refreshed, err := c.advancer.Advance(r.Context(), order)
	if refreshed != nil {
		entry.session.ReplaceOrder(refreshed)
	}
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}

	c.writeOrderLocked(w, traceID, entry)
}

func (c *Controller) updateItemStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "itemId must be a positive integer")
		return
	}

	var req dto.UpdateItemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	order := entry.session.Order()
	if order == nil {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", "no order created yet")
		return
	}

	updated, err := c.items.UpdateOrderItemStatus(r.Context(), order.ID, uint(itemID), domain.ItemStatus(req.Status))
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}
	entry.session.ReplaceOrder(updated)

	c.writeOrderLocked(w, traceID, entry)
}

func (c *Controller) cancelItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	entry, ok := c.entry(w, r, traceID)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(chi.URLParam(r, "itemId"), 10, 64)
	if err != nil {
		c.writeError(w, traceID, http.StatusBadRequest, "VALIDATION_ERROR", "itemId must be a positive integer")
		return
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	order := entry.session.Order()
	if order == nil {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", "no order created yet")
		return
	}

	updated, err := c.items.CancelOrderItem(r.Context(), order.ID, uint(itemID))
	if err != nil {
		c.handleError(w, traceID, err)
		return
	}
	entry.session.ReplaceOrder(updated)

	c.writeOrderLocked(w, traceID, entry)
}

func (c *Controller) entry(w http.ResponseWriter, r *http.Request, traceID string) (*sessionEntry, bool) {
	id := chi.URLParam(r, "sessionId")
	entry, ok := c.sessions.get(id)
	if !ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", "session not found")
		return nil, false
	}
	return entry, true
}

func (c *Controller) writeOrder(w http.ResponseWriter, traceID string, entry *sessionEntry) {
	entry.mu.Lock()
	defer entry.mu.Unlock()
	c.writeOrderLocked(w, traceID, entry)
}

func (c *Controller) writeOrderLocked(w http.ResponseWriter, traceID string, entry *sessionEntry) {
	order := entry.session.Order()
	if order == nil {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", "no order created yet")
		return
	}

	resp := dto.OrderResponse{
		TraceID:       traceID,
		OrderID:       order.ID,
		OrderType:     string(order.Type),
		TableID:       order.TableID,
		Status:        string(order.Status),
		Step:          string(entry.session.Step()),
		Progress:      lifecycle.Progress(order),
		Subtotal:      order.Subtotal,
		TaxTotal:      order.TaxTotal,
		DiscountTotal: order.DiscountTotal,
		GrandTotal:    order.GrandTotal,
		Items:         make([]dto.OrderItemDTO, len(order.Items)),
	}
	if action, ok := c.sm.NextAction(order.Type, order.Status); ok {
		resp.NextAction = &dto.NextActionDTO{Code: action.Code, Label: action.Label}
	}
	for i, item := range order.Items {
		resp.Items[i] = dto.OrderItemDTO{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			LineTotal:  item.LineTotal,
			Status:     string(item.Status),
		}
	}
	c.writeJSON(w, http.StatusOK, resp)
}

func (c *Controller) handleError(w http.ResponseWriter, traceID string, err error) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		c.writeJSON(w, http.StatusBadRequest, struct {
			TraceID string                       `json:"traceId"`
			Code    string                       `json:"code"`
			Message string                       `json:"message"`
			Details []apperrors.ValidationDetail `json:"details"`
		}{traceID, "VALIDATION_ERROR", ve.Message, ve.Details})
		return
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		c.writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error())
		return
	}
	if _, ok := apperrors.IsConflictError(err); ok {
		c.writeError(w, traceID, http.StatusConflict, "CONFLICT", err.Error())
		return
	}
	if _, ok := apperrors.IsGatewayUnavailableError(err); ok {
		c.writeError(w, traceID, http.StatusBadGateway, "GATEWAY_UNAVAILABLE", err.Error())
		return
	}
	if _, ok := apperrors.IsPaymentTimeoutError(err); ok {
		c.writeError(w, traceID, http.StatusGatewayTimeout, "PAYMENT_TIMEOUT", err.Error())
		return
	}
	if _, ok := apperrors.IsExternalError(err); ok {
		c.writeError(w, traceID, http.StatusBadGateway, "EXTERNAL_ERROR", err.Error())
		return
	}

	c.logger.Error("unexpected error", zap.String("traceId", traceID), zap.Error(err))
	c.writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (c *Controller) writeError(w http.ResponseWriter, traceID string, status int, code, message string) {
	c.writeJSON(w, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func (c *Controller) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		c.logger.Error("failed to encode response", zap.Error(err))
	}
}
