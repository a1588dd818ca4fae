// Package cart implements the session-scoped shopping cart: an
// insertion-ordered accumulation of item IDs and desired quantities.
// A cart is never persisted; checkout consumes it and resets it.
package cart

// Cart accumulates item quantities in the order items were first added.
// It is not safe for concurrent use; each shopping session owns one cart.
type Cart struct {
	counts map[string]int
	ids    []string // item IDs in first-add order
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{counts: make(map[string]int)}
}

// AddItem increments the quantity for itemID, inserting it with a count of 1
// when it is not in the cart yet.
func (c *Cart) AddItem(itemID string) {
	if _, ok := c.counts[itemID]; !ok {
		c.ids = append(c.ids, itemID)
	}
	c.counts[itemID]++
}

// RemoveItem decrements the quantity for itemID, dropping the entry entirely
// when it reaches zero. Removing an absent item is a no-op.
func (c *Cart) RemoveItem(itemID string) {
	n, ok := c.counts[itemID]
	if !ok {
		return
	}
	if n > 1 {
		c.counts[itemID] = n - 1
		return
	}
	delete(c.counts, itemID)
	for i, id := range c.ids {
		if id == itemID {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
}

// Quantity returns the current quantity for itemID, zero when absent.
func (c *Cart) Quantity(itemID string) int {
	return c.counts[itemID]
}

// TotalCount returns the sum of all quantities in the cart.
func (c *Cart) TotalCount() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Entry is one item/quantity pair from a cart snapshot.
type Entry struct {
	ItemID   string
	Quantity int
}

// Items returns the cart contents as entries in first-add order. Checkout
// relies on this ordering to create line items deterministically.
func (c *Cart) Items() []Entry {
	entries := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		entries = append(entries, Entry{ItemID: id, Quantity: c.counts[id]})
	}
	return entries
}

// Len returns the number of distinct items in the cart.
func (c *Cart) Len() int {
	return len(c.ids)
}

// Reset empties the cart. Called after a successful checkout.
func (c *Cart) Reset() {
	c.counts = make(map[string]int)
	c.ids = nil
}
