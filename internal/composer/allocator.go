package composer

import (
	"fmt"
	"strings"

	"github.com/kitline/kitline-backend/pkg/db/models"
	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
)

// CommitSelection turns a buffered selection into a committed line item
// for the simple (single-size-or-unsized) path. Sized products require a
// declared size; every product requires a positive quantity. Slot
// reconciliation runs here, so the returned line always satisfies the
// slots-equal-quantity rule for customizable products.
func CommitSelection(product *models.Product, sel Selection) (LineItem, error) {
	if product == nil {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if sel.Quantity == nil || *sel.Quantity <= 0 {
		return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	qty := *sel.Quantity

	size := ""
	if product.HasSizes() {
		if sel.Size == nil || strings.TrimSpace(*sel.Size) == "" {
			return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation, "size is required")
		}
		size = strings.TrimSpace(*sel.Size)
		if !product.HasSize(size) {
			return LineItem{}, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("size %q is not offered for this product", size))
		}
	}

	line := LineItem{
		ProductID:      product.ID,
		Name:           product.Name,
		UnitPriceCents: product.PriceCents,
		Size:           size,
		Quantity:       qty,
		Customizable:   product.Customizable,
	}
	if product.Customizable {
		line.Personalization = reconcileSlots(sel.Personalization, qty)
	}
	return line, nil
}

// AllocationState names the step a multi-size allocation is on.
type AllocationState string

const (
	// StateCollectingQuantity waits for the total unit count.
	StateCollectingQuantity AllocationState = "collecting_quantity"
	// StateDistributingSizes waits for per-size counts summing to the total.
	StateDistributingSizes AllocationState = "distributing_sizes"
	// StateCollectingPersonalization waits for every slot to be filled.
	StateCollectingPersonalization AllocationState = "collecting_personalization"
	// StateCommitted is terminal; the allocation has produced its lines.
	StateCommitted AllocationState = "committed"
)

// Allocation drives the multi-size flow for a customizable product: pick
// a total quantity, distribute it across the declared sizes, fill one
// personalization slot per unit, then commit one line item per size that
// received units. Nothing touches the cart until Commit succeeds.
type Allocation struct {
	product   models.Product
	state     AllocationState
	requested int
	counts    map[string]int
	slots     map[string][]string
}

// NewAllocation starts an allocation for a customizable product with
// declared sizes. Other products take the simple path instead.
func NewAllocation(product *models.Product) (*Allocation, error) {
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	if !product.Customizable || !product.HasSizes() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"multi-size allocation requires a customizable product with declared sizes")
	}
	return &Allocation{
		product: *product,
		state:   StateCollectingQuantity,
		counts:  make(map[string]int),
		slots:   make(map[string][]string),
	}, nil
}

// State reports the current step.
func (a *Allocation) State() AllocationState { return a.state }

// RequestedQuantity reports the total unit count entered so far.
func (a *Allocation) RequestedQuantity() int { return a.requested }

// SetRequestedQuantity records the total unit count and advances to size
// distribution. Re-entering a quantity while still distributing resets
// any counts that no longer fit.
func (a *Allocation) SetRequestedQuantity(qty int) error {
	if a.state == StateCommitted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "allocation already committed")
	}
	if a.state == StateCollectingPersonalization {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "size distribution already confirmed")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	a.requested = qty
	a.state = StateDistributingSizes
	return nil
}

// SetSizeCount records how many units go to one declared size. Counts
// may be revised freely while distributing; zero removes the size.
func (a *Allocation) SetSizeCount(size string, count int) error {
	if a.state != StateDistributingSizes {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "allocation is not distributing sizes")
	}
	size = strings.TrimSpace(size)
	if !a.product.HasSize(size) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("size %q is not offered for this product", size))
	}
	if count < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "size count cannot be negative")
	}
	if count == 0 {
		delete(a.counts, size)
		return nil
	}
	a.counts[size] = count
	return nil
}

// TotalAssigned sums the per-size counts.
func (a *Allocation) TotalAssigned() int {
	total := 0
	for _, n := range a.counts {
		total += n
	}
	return total
}

// SizeCounts returns the per-size counts in declared-size order,
// skipping sizes with no units.
func (a *Allocation) SizeCounts() map[string]int {
	out := make(map[string]int, len(a.counts))
	for size, n := range a.counts {
		out[size] = n
	}
	return out
}

// Proceed confirms the distribution and opens personalization. It is
// gated on the counts summing exactly to the requested quantity.
func (a *Allocation) Proceed() error {
	if a.state != StateDistributingSizes {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "allocation is not distributing sizes")
	}
	assigned := a.TotalAssigned()
	if assigned != a.requested {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("assigned %d of %d units across sizes", assigned, a.requested))
	}
	for size, count := range a.counts {
		a.slots[size] = reconcileSlots(a.slots[size], count)
	}
	for size := range a.slots {
		if _, ok := a.counts[size]; !ok {
			delete(a.slots, size)
		}
	}
	a.state = StateCollectingPersonalization
	return nil
}

// Revise reopens size distribution from personalization. Slot entries
// already typed are kept and re-reconciled on the next Proceed.
func (a *Allocation) Revise() error {
	if a.state != StateCollectingPersonalization {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "allocation is not collecting personalization")
	}
	a.state = StateDistributingSizes
	return nil
}

// SetSlot writes one personalization entry for a unit of one size.
func (a *Allocation) SetSlot(size string, index int, value string) error {
	if a.state != StateCollectingPersonalization {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "allocation is not collecting personalization")
	}
	size = strings.TrimSpace(size)
	slots, ok := a.slots[size]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("size %q has no units assigned", size))
	}
	if index < 0 || index >= len(slots) {
		return pkgerrors.New(pkgerrors.CodeValidation, "personalization slot out of range")
	}
	slots[index] = value
	return nil
}

// Slots returns a copy of the slot entries for one size.
func (a *Allocation) Slots(size string) []string {
	return append([]string(nil), a.slots[strings.TrimSpace(size)]...)
}

// Commit validates that every slot is filled and produces one line item
// per size that received units, in the product's declared size order.
// Blank or whitespace-only entries block the commit.
func (a *Allocation) Commit() ([]LineItem, error) {
	if a.state != StateCollectingPersonalization {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "allocation is not ready to commit")
	}

	var missing []string
	for _, size := range a.product.Sizes {
		for i, entry := range a.slots[size] {
			if strings.TrimSpace(entry) == "" {
				missing = append(missing, fmt.Sprintf("%s[%d]", size, i))
			}
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "personalization incomplete").
			WithDetails(map[string]any{"missing_slots": missing})
	}

	var lines []LineItem
	for _, size := range a.product.Sizes {
		count, ok := a.counts[size]
		if !ok || count == 0 {
			continue
		}
		lines = append(lines, LineItem{
			ProductID:       a.product.ID,
			Name:            a.product.Name,
			UnitPriceCents:  a.product.PriceCents,
			Size:            size,
			Quantity:        count,
			Customizable:    true,
			Personalization: append([]string(nil), a.slots[size]...),
		})
	}
	a.state = StateCommitted
	return lines, nil
}

// Cancel abandons the allocation. The cart is untouched because nothing
// was added to it; the allocation itself resets to its initial step.
func (a *Allocation) Cancel() {
	a.requested = 0
	a.counts = make(map[string]int)
	a.slots = make(map[string][]string)
	a.state = StateCollectingQuantity
}
