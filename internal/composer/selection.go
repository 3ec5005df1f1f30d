package composer

import (
	"sync"

	"github.com/google/uuid"
)

// Selection is the in-progress pick for one product before it is
// committed to the order list. Fields are pointers so a later edit can
// change one field without clobbering the others.
type Selection struct {
	Size            *string
	Quantity        *int
	Personalization []string
}

func (s Selection) clone() Selection {
	out := Selection{}
	if s.Size != nil {
		v := *s.Size
		out.Size = &v
	}
	if s.Quantity != nil {
		v := *s.Quantity
		out.Quantity = &v
	}
	if s.Personalization != nil {
		out.Personalization = append([]string(nil), s.Personalization...)
	}
	return out
}

// SelectionBuffer keys in-progress selections by product id. Writes merge
// field-wise: setting the size of a product keeps its buffered quantity
// and slot entries untouched.
type SelectionBuffer struct {
	mu        sync.Mutex
	byProduct map[uuid.UUID]*Selection
}

// NewSelectionBuffer returns an empty buffer.
func NewSelectionBuffer() *SelectionBuffer {
	return &SelectionBuffer{byProduct: make(map[uuid.UUID]*Selection)}
}

// SetSize buffers the size pick for a product.
func (b *SelectionBuffer) SetSize(productID uuid.UUID, size string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(productID).Size = &size
}

// SetQuantity buffers the quantity pick for a product. Values are stored
// as entered; range rules apply at commit time, not here.
func (b *SelectionBuffer) SetQuantity(productID uuid.UUID, qty int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(productID).Quantity = &qty
}

// SetSlots replaces the buffered personalization entries for a product.
func (b *SelectionBuffer) SetSlots(productID uuid.UUID, slots []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(productID).Personalization = append([]string(nil), slots...)
}

// SetSlot writes one personalization entry, growing the buffered slice
// with empty strings when the index is past its current end.
func (b *SelectionBuffer) SetSlot(productID uuid.UUID, index int, value string) {
	if index < 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	sel := b.entry(productID)
	for len(sel.Personalization) <= index {
		sel.Personalization = append(sel.Personalization, "")
	}
	sel.Personalization[index] = value
}

// Get returns a copy of the buffered selection for a product.
func (b *SelectionBuffer) Get(productID uuid.UUID) (Selection, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sel, ok := b.byProduct[productID]
	if !ok {
		return Selection{}, false
	}
	return sel.clone(), true
}

// Clear drops the buffered selection for one product. Commit paths call
// this so a follow-up add starts from a blank pick.
func (b *SelectionBuffer) Clear(productID uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.byProduct, productID)
}

// Reset drops every buffered selection.
func (b *SelectionBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byProduct = make(map[uuid.UUID]*Selection)
}

func (b *SelectionBuffer) entry(productID uuid.UUID) *Selection {
	sel, ok := b.byProduct[productID]
	if !ok {
		sel = &Selection{}
		b.byProduct[productID] = sel
	}
	return sel
}
