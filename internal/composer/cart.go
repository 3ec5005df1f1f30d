package composer

import (
	"strings"
	"sync"

	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
)

// Snapshot is the read view handed to cart observers and controllers.
type Snapshot struct {
	Items      []LineItem `json:"items"`
	ItemCount  int        `json:"item_count"`
	TotalCents int        `json:"total_cents"`
}

// Cart is the mutable order list for one club session. All mutations run
// under the mutex; observers are invoked after the lock is released with
// a copied snapshot, so a slow observer never blocks another writer.
type Cart struct {
	mu     sync.Mutex
	nextID int64
	items  []LineItem
	subs   []func(Snapshot)
}

// NewCart returns an empty cart. Line ids start at 1 and never repeat
// within a session, even across removals.
func NewCart() *Cart {
	return &Cart{}
}

// Subscribe registers an observer called after every mutation.
func (c *Cart) Subscribe(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Add appends a committed line item, assigning it the next line id, and
// returns the stored copy.
func (c *Cart) Add(item LineItem) LineItem {
	c.mu.Lock()
	c.nextID++
	item.ID = c.nextID
	c.items = append(c.items, item.clone())
	stored := item.clone()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return stored
}

// Remove deletes the line with the given id. Remaining lines keep their
// ids and relative order.
func (c *Cart) Remove(id int64) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// UpdateQuantity changes a line's quantity. Non-positive values are
// rejected and the line keeps its prior quantity. For customizable lines
// the personalization slots are reconciled to the new quantity in the
// same mutation.
func (c *Cart) UpdateQuantity(id int64, qty int) (LineItem, error) {
	if qty <= 0 {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return LineItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
	}
	line := &c.items[idx]
	line.Quantity = qty
	if line.Customizable {
		line.Personalization = reconcileSlots(line.Personalization, qty)
	}
	updated := line.clone()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return updated, nil
}

// UpdateSize changes a sized line's size pick. The size must be one the
// line was committed against a sized product for; unsized lines reject
// the edit.
func (c *Cart) UpdateSize(id int64, size string) (LineItem, error) {
	size = strings.TrimSpace(size)
	if size == "" {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}

	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return LineItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
	}
	line := &c.items[idx]
	if line.Size == "" {
		c.mu.Unlock()
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "line item has no size")
	}
	line.Size = size
	updated := line.clone()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return updated, nil
}

// UpdateSlot edits one personalization entry in place on a customizable
// line. The index must address an existing slot.
func (c *Cart) UpdateSlot(id int64, index int, value string) (LineItem, error) {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return LineItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
	}
	line := &c.items[idx]
	if !line.Customizable {
		c.mu.Unlock()
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "line item is not customizable")
	}
	if index < 0 || index >= len(line.Personalization) {
		c.mu.Unlock()
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "personalization slot out of range")
	}
	line.Personalization[index] = value
	updated := line.clone()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return updated, nil
}

// Items returns a deep copy of the current lines in insertion order.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LineItem, 0, len(c.items))
	for i := range c.items {
		out = append(out, c.items[i].clone())
	}
	return out
}

// Snapshot returns the current read view.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// TotalCents recomputes the cart total from its lines.
func (c *Cart) TotalCents() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalCents(c.items)
}

// Len reports the number of lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear empties the cart. Line id numbering continues where it left off.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.items = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Restore replaces the cart contents wholesale, re-assigning line ids.
// Used when a saved draft is claimed into a fresh session.
func (c *Cart) Restore(items []LineItem) Snapshot {
	c.mu.Lock()
	c.items = nil
	for _, item := range items {
		c.nextID++
		item.ID = c.nextID
		c.items = append(c.items, item.clone())
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return snap
}

func (c *Cart) indexLocked(id int64) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) snapshotLocked() Snapshot {
	items := make([]LineItem, 0, len(c.items))
	for i := range c.items {
		items = append(items, c.items[i].clone())
	}
	return Snapshot{
		Items:      items,
		ItemCount:  itemCount(c.items),
		TotalCents: totalCents(c.items),
	}
}

func (c *Cart) notify(snap Snapshot) {
	c.mu.Lock()
	subs := append(([]func(Snapshot))(nil), c.subs...)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func totalCents(items []LineItem) int {
	total := 0
	for i := range items {
		total += items[i].LineTotalCents()
	}
	return total
}

func itemCount(items []LineItem) int {
	count := 0
	for i := range items {
		count += items[i].Quantity
	}
	return count
}
