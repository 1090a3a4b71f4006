package domain

import (
	"errors"
	"fmt"
	"math"
	"time"

	orderdomain "afterlife/internal/features/orders/domain"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidItem   = errors.New("invalid cart item")
	ErrItemNotInCart = errors.New("item not in cart")
	ErrMalformedCart = errors.New("malformed persisted cart")
)

// CartItem is one product line of the cart.
type CartItem struct {
	Product  orderdomain.Product `json:"product"`
	Quantity int                 `json:"quantity"`
	AddedAt  time.Time           `json:"addedAt"`
}

// Cart is the ordered list of lines waiting for checkout.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Add puts qty units of p in the cart. A product already present keeps its
// position and gains the quantity.
func (c *Cart) Add(p orderdomain.Product, qty int, now time.Time) error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidItem)
	}
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be at least 1, got %d", ErrInvalidItem, qty)
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("%w: price must be a non-negative number, got %v", ErrInvalidItem, p.Price)
	}

	for i := range c.Items {
		if c.Items[i].Product.ID == p.ID {
			c.Items[i].Quantity += qty
			return nil
		}
	}

	c.Items = append(c.Items, CartItem{
		Product:  p.Clone(),
		Quantity: qty,
		AddedAt:  now,
	})
	return nil
}

// Remove drops the line holding productID.
func (c *Cart) Remove(productID string) error {
	for i := range c.Items {
		if c.Items[i].Product.ID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotInCart
}

// Count is the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Subtotal is the sum of price times quantity.
func (c Cart) Subtotal() float64 {
	var total float64
	for _, it := range c.Items {
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}

// Products lists one product per line, in cart order.
func (c Cart) Products() []orderdomain.Product {
	out := make([]orderdomain.Product, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, it.Product.Clone())
	}
	return out
}

// IsEmpty reports whether the cart holds no line.
func (c Cart) IsEmpty() bool { return len(c.Items) == 0 }
