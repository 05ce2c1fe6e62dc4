package orderstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

// Store is the MySQL-backed order persistence service. Totals are
// recomputed server-side on every item mutation; clients only ever hold
// refreshable copies of what lives here.
type Store struct {
	db      *sql.DB
	taxRate decimal.Decimal
	logger  *zap.Logger
}

func New(db *sql.DB, taxRate decimal.Decimal, logger *zap.Logger) *Store {
	return &Store{
		db:      db,
		taxRate: taxRate,
		logger:  logger,
	}
}

func (s *Store) CreateOrder(ctx context.Context, orderType domain.OrderType, tableID *int, note *string) (*domain.Order, error) {
	if !orderType.Valid() {
		return nil, apperrors.NewValidationError("invalid order type", apperrors.ValidationDetail{
			Field:   "orderType",
			Message: "must be one of DINE_IN, TAKEAWAY, DELIVERY",
		})
	}
	if orderType == domain.OrderTypeDineIn && tableID == nil {
		return nil, apperrors.NewValidationError("table required", apperrors.ValidationDetail{
			Field:   "tableId",
			Message: "a table is required for dine-in orders",
		})
	}

	query := `
		INSERT INTO Orders (type, tableId, status, note, subtotal, taxTotal, discountTotal, grandTotal)
		VALUES (?, ?, ?, ?, 0, 0, 0, 0)
	`
	result, err := s.db.ExecContext(ctx, query, orderType, tableID, domain.OrderStatusOpen, note)
	if err != nil {
		return nil, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting last insert id: %w", err)
	}

	s.logger.Info("order created", zap.Uint("orderId", uint(id)), zap.String("type", string(orderType)))
	return s.GetOrder(ctx, uint(id))
}

func (s *Store) GetOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	query := `
		SELECT id, type, tableId, status, note, subtotal, taxTotal, discountTotal, grandTotal,
		       createdAt, updatedAt
		FROM Orders
		WHERE id = ?
	`

	var order domain.Order
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID, &order.Type, &order.TableID, &order.Status, &order.Note,
		&order.Subtotal, &order.TaxTotal, &order.DiscountTotal, &order.GrandTotal,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", orderID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	items, err := s.orderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

func (s *Store) orderItems(ctx context.Context, orderID uint) ([]domain.OrderItem, error) {
	query := `
		SELECT id, orderId, menuItemId, name, quantity, unitPrice, lineTotal, status,
		       createdAt, updatedAt
		FROM OrderItems
		WHERE orderId = ?
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.MenuItemID, &item.Name, &item.Quantity,
			&item.UnitPrice, &item.LineTotal, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// AddOrderItem appends a menu item to an open order, denormalizing the
// item name and unit price, and recomputes the order totals. Returns
// the updated order.
func (s *Store) AddOrderItem(ctx context.Context, orderID uint, menuItemID int, qty int) (*domain.Order, error) {
	if qty < 1 {
		return nil, apperrors.NewValidationError("quantity must be positive", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be >= 1",
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	status, err := s.lockOrderStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if status == domain.OrderStatusBilled || status.Closed() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("order in status %s is not accepting items", status))
	}

	var name string
	var price decimal.Decimal
	var isActive bool
	err = tx.QueryRowContext(ctx, `SELECT name, price, isActive FROM MenuItems WHERE id = ?`, menuItemID).
		Scan(&name, &price, &isActive)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("menu item with id %d not found", menuItemID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying menu item: %w", err)
	}
	if !isActive {
		return nil, apperrors.NewConflictError(fmt.Sprintf("menu item %d is no longer available", menuItemID))
	}

	lineTotal := price.Mul(decimal.NewFromInt(int64(qty)))
	_, err = tx.ExecContext(ctx, `
		INSERT INTO OrderItems (orderId, menuItemId, name, quantity, unitPrice, lineTotal, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, orderID, menuItemID, name, qty, price, lineTotal, domain.ItemStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("inserting order item: %w", err)
	}

	if err := s.recomputeTotals(ctx, tx, orderID); err != nil {
		return nil, err
	}
	if err := s.commit(tx); err != nil {
		return nil, err
	}

	s.logger.Info("order item added",
		zap.Uint("orderId", orderID),
		zap.Int("menuItemId", menuItemID),
		zap.Int("quantity", qty))
	return s.GetOrder(ctx, orderID)
}

// BillOrder transitions the order to BILLED. Empty orders and orders
// that are already billed, paid, or cancelled are rejected.
func (s *Store) BillOrder(ctx context.Context, orderID uint) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	status, err := s.lockOrderStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if status == domain.OrderStatusBilled || status.Closed() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("order in status %s cannot be billed", status))
	}

	var itemCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM OrderItems WHERE orderId = ? AND status <> ?`,
		orderID, domain.ItemStatusCancelled).Scan(&itemCount)
	if err != nil {
		return nil, fmt.Errorf("counting order items: %w", err)
	}
	if itemCount == 0 {
		return nil, apperrors.NewConflictError("order has no items to bill")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE Orders SET status = ? WHERE id = ?`,
		domain.OrderStatusBilled, orderID); err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	if err := s.commit(tx); err != nil {
		return nil, err
	}

	s.logger.Info("order billed", zap.Uint("orderId", orderID))
	return s.GetOrder(ctx, orderID)
}

// UpdateOrderStatus is the raw status override. Only closed orders are
// protected; the suggested-action ordering is not enforced here.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID uint, status domain.OrderStatus) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.lockOrderStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if current.Closed() {
		return nil, apperrors.NewConflictError(fmt.Sprintf("order is already %s", current))
	}

	if _, err := tx.ExecContext(ctx, `UPDATE Orders SET status = ? WHERE id = ?`, status, orderID); err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	if err := s.commit(tx); err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, orderID)
}

func (s *Store) CancelOrderItem(ctx context.Context, orderID uint, itemID uint) (*domain.Order, error) {
	return s.UpdateOrderItemStatus(ctx, orderID, itemID, domain.ItemStatusCancelled)
}

// UpdateOrderItemStatus moves a single item's status. Item statuses
// move independently of the order until the order closes; afterwards
// only cancellation bookkeeping is allowed. Cancelling an item removes
// it from the order totals.
func (s *Store) UpdateOrderItemStatus(ctx context.Context, orderID uint, itemID uint, status domain.ItemStatus) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	orderStatus, err := s.lockOrderStatus(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if orderStatus.Closed() && status != domain.ItemStatusCancelled {
		return nil, apperrors.NewConflictError(fmt.Sprintf("items of a %s order are immutable", orderStatus))
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE OrderItems SET status = ? WHERE id = ? AND orderId = ?`,
		status, itemID, orderID)
	if err != nil {
		return nil, fmt.Errorf("updating order item status: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("item %d not found on order %d", itemID, orderID))
	}

	if status == domain.ItemStatusCancelled {
		if err := s.recomputeTotals(ctx, tx, orderID); err != nil {
			return nil, err
		}
	}
	if err := s.commit(tx); err != nil {
		return nil, err
	}

	s.logger.Info("order item status updated",
		zap.Uint("orderId", orderID),
		zap.Uint("itemId", itemID),
		zap.String("status", string(status)))
	return s.GetOrder(ctx, orderID)
}

func (s *Store) lockOrderStatus(ctx context.Context, tx *sql.Tx, orderID uint) (domain.OrderStatus, error) {
	var status domain.OrderStatus
	err := tx.QueryRowContext(ctx, `SELECT status FROM Orders WHERE id = ? FOR UPDATE`, orderID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("order with id %d not found", orderID))
	}
	if err != nil {
		return "", mapLockError(err, "locking order row")
	}
	return status, nil
}

// commit finalizes a mutation transaction; lock contention surfaces as
// a conflict so the operator retries the action.
func (s *Store) commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return mapLockError(err, "committing transaction")
	}
	return nil
}

// MySQL 1213 is a deadlock victim, 1205 a lock wait timeout; both mean
// a concurrent mutation won the row.
func mapLockError(err error, op string) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && (mysqlErr.Number == 1213 || mysqlErr.Number == 1205) {
		return apperrors.NewConflictError("order is being modified concurrently")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// recomputeTotals derives subtotal from non-cancelled line totals, tax
// from the configured rate, and keeps grandTotal = subtotal + tax -
// discount.
func (s *Store) recomputeTotals(ctx context.Context, tx *sql.Tx, orderID uint) error {
	var subtotal decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(lineTotal), 0) FROM OrderItems WHERE orderId = ? AND status <> ?`,
		orderID, domain.ItemStatusCancelled).Scan(&subtotal)
	if err != nil {
		return fmt.Errorf("summing line totals: %w", err)
	}

	var discount decimal.Decimal
	err = tx.QueryRowContext(ctx, `SELECT discountTotal FROM Orders WHERE id = ?`, orderID).Scan(&discount)
	if err != nil {
		return fmt.Errorf("querying discount: %w", err)
	}

	tax := subtotal.Mul(s.taxRate).Round(2)
	grand := subtotal.Add(tax).Sub(discount)

	_, err = tx.ExecContext(ctx,
		`UPDATE Orders SET subtotal = ?, taxTotal = ?, grandTotal = ? WHERE id = ?`,
		subtotal, tax, grand, orderID)
	if err != nil {
		return fmt.Errorf("updating order totals: %w", err)
	}
	return nil
}
