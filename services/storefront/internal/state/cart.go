package state

import (
	"sync"

	"onlinemall/pkg/domain"
)

// Cart mirrors the server's cart. Every mutation replaces the whole snapshot
// with what the API returned; totals are never recomputed locally.
type Cart struct {
	mu   sync.RWMutex
	cart domain.Cart
}

func NewCart() *Cart {
	return &Cart{cart: domain.Cart{Items: []domain.CartItem{}}}
}

// Set replaces the cart wholesale.
func (c *Cart) Set(cart domain.Cart) {
	items := make([]domain.CartItem, len(cart.Items))
	copy(items, cart.Items)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart = domain.Cart{Items: items, TotalPrice: cart.TotalPrice}
}

// Clear empties the cart, as after checkout or logout.
func (c *Cart) Clear() {
	c.Set(domain.Cart{})
}

// Snapshot returns a copy safe to hand to a view.
func (c *Cart) Snapshot() domain.Cart {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]domain.CartItem, len(c.cart.Items))
	copy(items, c.cart.Items)
	return domain.Cart{Items: items, TotalPrice: c.cart.TotalPrice}
}

func (c *Cart) Items() []domain.CartItem {
	return c.Snapshot().Items
}

func (c *Cart) TotalPrice() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cart.TotalPrice
}

// TotalItems sums item quantities.
func (c *Cart) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, item := range c.cart.Items {
		total += item.Quantity
	}
	return total
}
