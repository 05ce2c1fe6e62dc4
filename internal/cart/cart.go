package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"comanda/internal/domain"
	apperrors "comanda/internal/errors"
)

// Line is a proposed order item that has not been persisted yet.
type Line struct {
	MenuItemID int
	Name       string
	UnitPrice  decimal.Decimal
	Quantity   int
	Note       string
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Cart accumulates client-side selections before they are committed as
// order items. It performs no I/O; totals are estimates until the server
// has computed authoritative values.
type Cart struct {
	lines   []Line
	taxRate decimal.Decimal
}

func New(taxRate decimal.Decimal) *Cart {
	return &Cart{taxRate: taxRate}
}

// AddLine merges by catalog item id: adding an item already in the cart
// increments that line's quantity and leaves its note untouched. New
// lines are appended so insertion order is stable for display.
func (c *Cart) AddLine(item domain.MenuItem, qty int, note string) error {
	if qty < 1 {
		return apperrors.NewValidationError("quantity must be a positive integer", apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must be >= 1",
		})
	}

	for i := range c.lines {
		if c.lines[i].MenuItemID == item.ID {
			c.lines[i].Quantity += qty
			return nil
		}
	}

	c.lines = append(c.lines, Line{
		MenuItemID: item.ID,
		Name:       item.Name,
		UnitPrice:  item.Price,
		Quantity:   qty,
		Note:       note,
	})
	return nil
}

// UpdateQty applies a delta to a line's quantity, clamped to a minimum
// of 1. Removal is only possible through RemoveLine.
func (c *Cart) UpdateQty(lineIndex, delta int) error {
	if err := c.checkIndex(lineIndex); err != nil {
		return err
	}

	qty := c.lines[lineIndex].Quantity + delta
	if qty < 1 {
		qty = 1
	}
	c.lines[lineIndex].Quantity = qty
	return nil
}

func (c *Cart) RemoveLine(lineIndex int) error {
	if err := c.checkIndex(lineIndex); err != nil {
		return err
	}
	c.lines = append(c.lines[:lineIndex], c.lines[lineIndex+1:]...)
	return nil
}

func (c *Cart) checkIndex(lineIndex int) error {
	if lineIndex < 0 || lineIndex >= len(c.lines) {
		return apperrors.NewValidationError(fmt.Sprintf("line index %d out of range", lineIndex), apperrors.ValidationDetail{
			Field:   "lineIndex",
			Message: fmt.Sprintf("must be between 0 and %d", len(c.lines)-1),
		})
	}
	return nil
}

func (c *Cart) Lines() []Line {
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Reset() {
	c.lines = nil
}

// Totals estimates subtotal and tax over the uncommitted lines. Tax is
// an estimate against the cart-only subtotal; once items are persisted
// the server-computed subtotal and tax of the given order snapshot are
// added verbatim rather than recomputed.
func (c *Cart) Totals(order *domain.Order) Totals {
	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	tax := subtotal.Mul(c.taxRate).Round(2)

	if order != nil {
		subtotal = subtotal.Add(order.Subtotal)
		tax = tax.Add(order.TaxTotal)
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
