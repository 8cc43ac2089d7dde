package cart

import (
	"github.com/shopspring/decimal"

	domproduct "example.com/storefront/internal/domain/product"
)

// Line is one product and how many of it the shopper wants.
type Line struct {
	Product  domproduct.Product
	Quantity int
}

// Subtotal is the line price times its quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines, at most one per product ID, kept in the
// order products were first added. Every mutator returns a new Cart and
// leaves the receiver untouched.
type Cart struct {
	lines []Line
}

func New(lines []Line) Cart {
	return Cart{lines: cloneLines(lines)}
}

// Normalize builds a cart from untrusted lines: repeated product IDs are
// merged into the first occurrence and lines with a quantity below one are
// dropped.
func Normalize(lines []Line) Cart {
	var c Cart
	for _, l := range lines {
		if l.Quantity < 1 || l.Product.ID == "" {
			continue
		}
		c = c.Add(l.Product, l.Quantity)
	}
	return c
}

func (c Cart) Lines() []Line {
	return cloneLines(c.lines)
}

func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Find returns the line for productID.
func (c Cart) Find(productID string) (Line, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Add increments the quantity of an existing line or appends a new one.
func (c Cart) Add(p domproduct.Product, quantity int) Cart {
	lines := cloneLines(c.lines)
	if i := c.indexOf(p.ID); i >= 0 {
		lines[i].Quantity += quantity
		return Cart{lines: lines}
	}
	return Cart{lines: append(lines, Line{Product: p, Quantity: quantity})}
}

func (c Cart) Remove(productID string) Cart {
	lines := make([]Line, 0, len(c.lines))
	for _, l := range c.lines {
		if l.Product.ID != productID {
			lines = append(lines, l)
		}
	}
	return Cart{lines: lines}
}

// SetQuantity replaces the quantity of an existing line. A quantity of zero
// or less removes the line; an unknown product ID changes nothing.
func (c Cart) SetQuantity(productID string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(productID)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return c
	}
	lines := cloneLines(c.lines)
	lines[i].Quantity = quantity
	return Cart{lines: lines}
}

func (c Cart) Clear() Cart {
	return Cart{}
}

func (c Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (c Cart) indexOf(productID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func cloneLines(lines []Line) []Line {
	if len(lines) == 0 {
		return []Line{}
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
