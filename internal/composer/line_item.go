package composer

import "github.com/google/uuid"

// LineItem is one committed, priced, quantified entry in the order list.
// Name and unit price are denormalized from the catalog at add-time so a
// later catalog edit never rewrites a cart in progress. For customizable
// products the personalization slice always has exactly Quantity entries.
type LineItem struct {
	ID              int64     `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	Name            string    `json:"name"`
	UnitPriceCents  int       `json:"unit_price_cents"`
	Size            string    `json:"size,omitempty"`
	Quantity        int       `json:"quantity"`
	Customizable    bool      `json:"customizable"`
	Personalization []string  `json:"personalization,omitempty"`
}

// LineTotalCents is the derived line price.
func (li LineItem) LineTotalCents() int {
	return li.UnitPriceCents * li.Quantity
}

func (li LineItem) clone() LineItem {
	out := li
	if li.Personalization != nil {
		out.Personalization = append([]string(nil), li.Personalization...)
	}
	return out
}

// reconcileSlots forces the slot slice to exactly qty entries: growth
// appends empty strings, shrink truncates from the tail. Entries that
// survive keep their index and value.
func reconcileSlots(slots []string, qty int) []string {
	if qty <= 0 {
		return []string{}
	}
	out := make([]string, qty)
	copy(out, slots)
	return out
}
