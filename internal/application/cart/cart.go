package cart

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/entity"
)

// LineItem is one product-and-quantity entry in a draft cart. The stock
// snapshot is the quantity last seen at search time; it is a best-effort
// guard, not a reservation, so the backend re-checks at submission.
type LineItem struct {
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	UnitPrice     int64     `json:"-"` // cents
	Quantity      int       `json:"quantity"`
	StockSnapshot int       `json:"stock_snapshot"`
	Unavailable   bool      `json:"unavailable,omitempty"`
}

// LineTotal returns unit price times quantity in cents
func (li *LineItem) LineTotal() int64 {
	return li.UnitPrice * int64(li.Quantity)
}

// Cart is an in-memory, per-session draft of a sale. It is destroyed on
// submission or abandonment and never persisted; the backend is the only
// writer of committed sales.
type Cart struct {
	ID        uuid.UUID
	mu        sync.Mutex
	items     []*LineItem
	discount  int64 // cents
	createdAt int64
}

// New creates an empty cart
func New() *Cart {
	return &Cart{ID: uuid.New()}
}

// AddItem adds one unit of the product, or increments the existing line.
// Products with no stock are rejected outright; increments are bounded by
// the stock snapshot captured when the product was looked up.
func (c *Cart) AddItem(product *entity.Product) error {
	if product == nil {
		return entity.ErrProductNotFound
	}
	if product.Quantity <= 0 {
		return fmt.Errorf("%w: %s", entity.ErrOutOfStock, product.Name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, li := range c.items {
		if li.ProductID == product.ID {
			if li.Quantity+1 > li.StockSnapshot {
				return fmt.Errorf("%w: %s (have %d)", entity.ErrStockExceeded, li.Name, li.StockSnapshot)
			}
			li.Quantity++
			return nil
		}
	}

	c.items = append(c.items, &LineItem{
		ProductID:     product.ID,
		Name:          product.Name,
		SKU:           product.SKU,
		UnitPrice:     product.SellingPrice,
		Quantity:      1,
		StockSnapshot: product.Quantity,
	})
	return nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line; a quantity above the stock snapshot fails and
// leaves the line unchanged.
func (c *Cart) UpdateQuantity(productID uuid.UUID, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, li := range c.items {
		if li.ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return entity.ErrLineNotFound
	}

	if qty <= 0 {
		c.items = append(c.items[:idx], c.items[idx+1:]...)
		return nil
	}

	li := c.items[idx]
	if qty > li.StockSnapshot {
		return fmt.Errorf("%w: %s (have %d)", entity.ErrStockExceeded, li.Name, li.StockSnapshot)
	}
	li.Quantity = qty
	return nil
}

// RemoveItem deletes the line for the product, if present
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, li := range c.items {
		if li.ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return entity.ErrLineNotFound
}

// MarkUnavailable flags a line whose product disappeared between search and
// submission. The flagged line blocks nothing else; it can be removed like
// any other line.
func (c *Cart) MarkUnavailable(productID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, li := range c.items {
		if li.ProductID == productID {
			li.Unavailable = true
			return
		}
	}
}

// SetDiscount sets the cart-level discount in cents
func (c *Cart) SetDiscount(discount int64) error {
	if discount < 0 {
		return entity.ErrInvalidDiscount
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discount = discount
	return nil
}

// Totals computes subtotal, discount and total in cents. The computation is
// synchronous over current lines; callers see settled figures, never a
// stale running total.
func (c *Cart) Totals() (subTotal, discount, total int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalsLocked()
}

func (c *Cart) totalsLocked() (subTotal, discount, total int64) {
	for _, li := range c.items {
		subTotal += li.LineTotal()
	}
	discount = c.discount
	total = subTotal - discount
	if total < 0 {
		total = 0
	}
	return subTotal, discount, total
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items) == 0
}

// Items returns a copy of the current lines
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]LineItem, len(c.items))
	for i, li := range c.items {
		out[i] = *li
	}
	return out
}

// Snapshot returns the lines and the settled totals as one consistent view,
// taken under a single lock. Submission reads through here so a concurrent
// mutation can never produce a persisted total that disagrees with the
// persisted lines.
func (c *Cart) Snapshot() (items []LineItem, subTotal, discount, total int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	items = make([]LineItem, len(c.items))
	for i, li := range c.items {
		items[i] = *li
	}
	subTotal, discount, total = c.totalsLocked()
	return items, subTotal, discount, total
}
