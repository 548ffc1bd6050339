package billing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is an order being assembled before submission. Adding a menu item
// that is already present increments its quantity instead of adding a line.
type Cart struct {
	lines []Line
	index map[uuid.UUID]int
}

func NewCart() *Cart {
	return &Cart{index: make(map[uuid.UUID]int)}
}

// Add puts one unit of the item in the cart.
func (c *Cart) Add(id uuid.UUID, name string, price decimal.Decimal) {
	c.AddQuantity(id, name, price, 1)
}

// AddQuantity merges qty units of the item into the cart. Non-positive
// quantities are ignored.
func (c *Cart) AddQuantity(id uuid.UUID, name string, price decimal.Decimal, qty int32) {
	if qty <= 0 {
		return
	}
	if i, ok := c.index[id]; ok {
		c.lines[i].Quantity += qty
		return
	}
	c.index[id] = len(c.lines)
	c.lines = append(c.lines, Line{MenuItemID: id, Name: name, UnitPrice: price, Quantity: qty})
}

// SetQuantity replaces the quantity of an existing line. A quantity of zero
// or less removes the line.
func (c *Cart) SetQuantity(id uuid.UUID, qty int32) {
	i, ok := c.index[id]
	if !ok {
		return
	}
	if qty > 0 {
		c.lines[i].Quantity = qty
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].MenuItemID] = j
	}
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Totals(rates Rates) Totals {
	return ComputeTotals(c.lines, rates)
}
