package orderstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
	"comanda/internal/testutil"
)

var taxRate = decimal.RequireFromString("0.12")

// Unit Tests

func TestNew(t *testing.T) {
	db := &sql.DB{}
	store := New(db, taxRate, zap.NewNop())

	assert.NotNil(t, store)
	assert.Equal(t, db, store.db)
}

func TestCreateOrder_DineInWithoutTableIsLocalValidation(t *testing.T) {
	store := New(&sql.DB{}, taxRate, zap.NewNop())

	_, err := store.CreateOrder(context.Background(), domain.OrderTypeDineIn, nil, nil)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok, "got %v", err)
}

func TestMapLockError(t *testing.T) {
	_, ok := apperrors.IsConflictError(mapLockError(&mysql.MySQLError{Number: 1213}, "committing transaction"))
	assert.True(t, ok, "deadlock should map to conflict")

	_, ok = apperrors.IsConflictError(mapLockError(&mysql.MySQLError{Number: 1205}, "locking order row"))
	assert.True(t, ok, "lock wait timeout should map to conflict")

	err := mapLockError(&mysql.MySQLError{Number: 1062}, "inserting order item")
	_, ok = apperrors.IsConflictError(err)
	assert.False(t, ok, "other driver errors stay wrapped: %v", err)
	assert.ErrorContains(t, err, "inserting order item")
}

// Integration Tests

func setupStore(t *testing.T) (*Store, *sql.DB) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })
	return New(db, taxRate, zap.NewNop()), db
}

func seedMenuItem(t *testing.T, db *sql.DB, name, price string, active bool) int {
	result, err := db.Exec(
		`INSERT INTO MenuItems (categoryId, name, price, isActive) VALUES (1, ?, ?, ?)`,
		name, price, active)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func TestStore_CreateAndGetOrder(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	tableID := 3
	order, err := store.CreateOrder(ctx, domain.OrderTypeDineIn, &tableID, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusOpen, order.Status)
	assert.Equal(t, domain.OrderTypeDineIn, order.Type)
	require.NotNil(t, order.TableID)
	assert.Equal(t, 3, *order.TableID)
	assert.True(t, order.GrandTotal.IsZero())
	assert.True(t, order.TotalsBalanced())
}

func TestStore_AddOrderItem_RecomputesTotals(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	itemID := seedMenuItem(t, db, "Margherita", "10.00", true)
	order, err := store.CreateOrder(ctx, domain.OrderTypeTakeaway, nil, nil)
	require.NoError(t, err)

	order, err = store.AddOrderItem(ctx, order.ID, itemID, 2)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "Margherita", order.Items[0].Name)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("20.00")), "subtotal = %s", order.Subtotal)
	assert.True(t, order.TaxTotal.Equal(decimal.RequireFromString("2.40")), "tax = %s", order.TaxTotal)
	assert.True(t, order.GrandTotal.Equal(decimal.RequireFromString("22.40")), "grand = %s", order.GrandTotal)
	assert.True(t, order.TotalsBalanced())
}

func TestStore_AddOrderItem_InactiveItemIsConflict(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	itemID := seedMenuItem(t, db, "Retired dish", "5.00", false)
	order, err := store.CreateOrder(ctx, domain.OrderTypeTakeaway, nil, nil)
	require.NoError(t, err)

	_, err = store.AddOrderItem(ctx, order.ID, itemID, 1)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok, "got %v", err)
}

func TestStore_BillOrder_Guards(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	order, err := store.CreateOrder(ctx, domain.OrderTypeTakeaway, nil, nil)
	require.NoError(t, err)

	// empty order cannot be billed
	_, err = store.BillOrder(ctx, order.ID)
	_, ok := apperrors.IsConflictError(err)
	require.True(t, ok, "got %v", err)

	itemID := seedMenuItem(t, db, "Dosa", "4.00", true)
	_, err = store.AddOrderItem(ctx, order.ID, itemID, 1)
	require.NoError(t, err)

	order, err = store.BillOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusBilled, order.Status)

	// double billing is rejected
	_, err = store.BillOrder(ctx, order.ID)
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok, "got %v", err)
}

func TestStore_CancelOrderItem_RemovesFromTotals(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	pizzaID := seedMenuItem(t, db, "Margherita", "10.00", true)
	lassiID := seedMenuItem(t, db, "Lassi", "3.00", true)

	order, err := store.CreateOrder(ctx, domain.OrderTypeTakeaway, nil, nil)
	require.NoError(t, err)
	order, err = store.AddOrderItem(ctx, order.ID, pizzaID, 1)
	require.NoError(t, err)
	order, err = store.AddOrderItem(ctx, order.ID, lassiID, 1)
	require.NoError(t, err)

	order, err = store.CancelOrderItem(ctx, order.ID, order.Items[0].ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ItemStatusCancelled, order.Items[0].Status)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("3.00")), "subtotal = %s", order.Subtotal)
	assert.True(t, order.TotalsBalanced())
}

func TestStore_UpdateOrderStatus_RejectsClosedOrders(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()

	itemID := seedMenuItem(t, db, "Dosa", "4.00", true)
	order, err := store.CreateOrder(ctx, domain.OrderTypeTakeaway, nil, nil)
	require.NoError(t, err)
	_, err = store.AddOrderItem(ctx, order.ID, itemID, 1)
	require.NoError(t, err)

	order, err = store.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)

	_, err = store.UpdateOrderStatus(ctx, order.ID, domain.OrderStatusOpen)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok, "got %v", err)
}

func TestStore_GetOrder_NotFound(t *testing.T) {
	store, _ := setupStore(t)

	_, err := store.GetOrder(context.Background(), 999999)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "got %v", err)
}
