// Package cart holds the shopping cart aggregate and its local store.
package cart

import (
	"lensstore/internal/model"

	"github.com/shopspring/decimal"
)

// Cart is an ordered list of lines, at most one per (product, variant) pair.
type Cart struct {
	lines []model.CartLine
}

// New returns a cart holding copies of lines. Lines sharing a key are merged.
func New(lines ...model.CartLine) *Cart {
	c := &Cart{}
	for _, l := range lines {
		c.Add(l)
	}
	return c
}

// Add appends line, or increments the quantity of the line with the same key.
// A quantity below one counts as one.
func (c *Cart) Add(line model.CartLine) {
	if line.Quantity < 1 {
		line.Quantity = 1
	}
	if i := c.index(line.Key()); i >= 0 {
		c.lines[i].Quantity += line.Quantity
		return
	}
	c.lines = append(c.lines, line)
}

// SetQuantity sets the quantity of a line. A quantity of zero or less removes it.
// It reports whether the line exists.
func (c *Cart) SetQuantity(key model.LineKey, qty int) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	if qty <= 0 {
		c.removeAt(i)
		return true
	}
	c.lines[i].Quantity = qty
	return true
}

// Remove deletes the line with key and reports whether it existed.
func (c *Cart) Remove(key model.LineKey) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []model.CartLine {
	return append([]model.CartLine{}, c.lines...)
}

// Len returns the total number of units in the cart.
func (c *Cart) Len() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal sums unit price times quantity over all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal())
	}
	return total
}

// CheckoutItems converts the lines to checkout items. The title carries the
// SPH so the order snapshot names the degree bought.
func (c *Cart) CheckoutItems() []model.CheckoutItem {
	items := make([]model.CheckoutItem, 0, len(c.lines))
	for _, l := range c.lines {
		title := l.Title
		if l.Sph != "" {
			title += " (SPH " + l.Sph + ")"
		}
		items = append(items, model.CheckoutItem{
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			SKU:       l.SKU,
			Title:     title,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return items
}

func (c *Cart) index(key model.LineKey) int {
	for i, l := range c.lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}
