package composer

import (
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
)

func TestCartAssignsMonotonicLineIDs(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	first := cart.Add(LineItem{ProductID: uuid.New(), Name: "Home Jersey", UnitPriceCents: 18000, Quantity: 1})
	second := cart.Add(LineItem{ProductID: uuid.New(), Name: "Training Shorts", UnitPriceCents: 9000, Quantity: 2})

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}

	if err := cart.Remove(first.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	third := cart.Add(LineItem{ProductID: uuid.New(), Name: "Socks", UnitPriceCents: 4500, Quantity: 1})
	if third.ID != 3 {
		t.Fatalf("removed ids must not be reused, got %d", third.ID)
	}
}

func TestCartTotalTracksEveryMutation(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	jersey := cart.Add(LineItem{ProductID: uuid.New(), Name: "Home Jersey", UnitPriceCents: 18000, Quantity: 2})
	shorts := cart.Add(LineItem{ProductID: uuid.New(), Name: "Training Shorts", UnitPriceCents: 9000, Quantity: 1})

	if got := cart.TotalCents(); got != 45000 {
		t.Fatalf("expected total 45000, got %d", got)
	}

	if _, err := cart.UpdateQuantity(jersey.ID, 3); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if got := cart.TotalCents(); got != 63000 {
		t.Fatalf("expected total 63000 after quantity bump, got %d", got)
	}

	if err := cart.Remove(shorts.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := cart.TotalCents(); got != 54000 {
		t.Fatalf("expected total 54000 after removal, got %d", got)
	}
}

func TestCartQuantityUpdateReconcilesSlots(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	line := cart.Add(LineItem{
		ProductID:       uuid.New(),
		Name:            "Home Jersey",
		UnitPriceCents:  18000,
		Size:            "M",
		Quantity:        2,
		Customizable:    true,
		Personalization: []string{"VIGGO 7", "EMMA 10"},
	})

	grown, err := cart.UpdateQuantity(line.ID, 4)
	if err != nil {
		t.Fatalf("grow: %v", err)
	}
	if len(grown.Personalization) != 4 {
		t.Fatalf("expected 4 slots after growth, got %d", len(grown.Personalization))
	}
	if grown.Personalization[0] != "VIGGO 7" || grown.Personalization[1] != "EMMA 10" {
		t.Fatalf("existing entries must survive growth: %v", grown.Personalization)
	}
	if grown.Personalization[2] != "" || grown.Personalization[3] != "" {
		t.Fatalf("new slots must start empty: %v", grown.Personalization)
	}

	shrunk, err := cart.UpdateQuantity(line.ID, 1)
	if err != nil {
		t.Fatalf("shrink: %v", err)
	}
	if len(shrunk.Personalization) != 1 || shrunk.Personalization[0] != "VIGGO 7" {
		t.Fatalf("shrink must truncate from the tail: %v", shrunk.Personalization)
	}
}

func TestCartRejectsNonPositiveQuantity(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	line := cart.Add(LineItem{ProductID: uuid.New(), Name: "Home Jersey", UnitPriceCents: 18000, Quantity: 2})

	for _, qty := range []int{0, -1} {
		if _, err := cart.UpdateQuantity(line.ID, qty); err == nil {
			t.Fatalf("expected rejection for quantity %d", qty)
		}
	}

	items := cart.Items()
	if items[0].Quantity != 2 {
		t.Fatalf("rejected update must leave quantity untouched, got %d", items[0].Quantity)
	}
}

func TestCartUpdateSlotBounds(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	line := cart.Add(LineItem{
		ProductID:       uuid.New(),
		Name:            "Home Jersey",
		UnitPriceCents:  18000,
		Quantity:        2,
		Customizable:    true,
		Personalization: []string{"", ""},
	})

	if _, err := cart.UpdateSlot(line.ID, 1, "NOAH 4"); err != nil {
		t.Fatalf("in-range slot edit: %v", err)
	}
	if _, err := cart.UpdateSlot(line.ID, 2, "LATE"); err == nil {
		t.Fatal("expected out-of-range slot edit to fail")
	}

	plain := cart.Add(LineItem{ProductID: uuid.New(), Name: "Ball", UnitPriceCents: 20000, Quantity: 1})
	if _, err := cart.UpdateSlot(plain.ID, 0, "X"); err == nil {
		t.Fatal("expected slot edit on non-customizable line to fail")
	}
}

func TestCartRemoveUnknownLine(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	err := cart.Remove(99)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCartNotifiesObserversOnMutation(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	var got []Snapshot
	cart.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	line := cart.Add(LineItem{ProductID: uuid.New(), Name: "Home Jersey", UnitPriceCents: 18000, Quantity: 2})
	if _, err := cart.UpdateQuantity(line.ID, 3); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	cart.Clear()

	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	if got[0].TotalCents != 36000 || got[1].TotalCents != 54000 || got[2].TotalCents != 0 {
		t.Fatalf("unexpected snapshot totals: %+v", got)
	}
	if got[2].ItemCount != 0 || len(got[2].Items) != 0 {
		t.Fatalf("clear must notify an empty snapshot: %+v", got[2])
	}
}

func TestCartItemsReturnsCopies(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	cart.Add(LineItem{
		ProductID:       uuid.New(),
		Name:            "Home Jersey",
		UnitPriceCents:  18000,
		Quantity:        1,
		Customizable:    true,
		Personalization: []string{"VIGGO 7"},
	})

	items := cart.Items()
	items[0].Personalization[0] = "TAMPERED"

	fresh := cart.Items()
	if fresh[0].Personalization[0] != "VIGGO 7" {
		t.Fatal("mutating a returned snapshot must not leak into the cart")
	}
}

func TestCartRestoreReplacesContents(t *testing.T) {
	t.Parallel()

	cart := NewCart()
	cart.Add(LineItem{ProductID: uuid.New(), Name: "Stale", UnitPriceCents: 100, Quantity: 1})

	snap := cart.Restore([]LineItem{
		{ProductID: uuid.New(), Name: "Home Jersey", UnitPriceCents: 18000, Quantity: 2},
		{ProductID: uuid.New(), Name: "Socks", UnitPriceCents: 4500, Quantity: 2},
	})

	if len(snap.Items) != 2 {
		t.Fatalf("expected 2 restored lines, got %d", len(snap.Items))
	}
	if snap.Items[0].ID != 2 || snap.Items[1].ID != 3 {
		t.Fatalf("restored lines must get fresh ids, got %d and %d", snap.Items[0].ID, snap.Items[1].ID)
	}
	if snap.TotalCents != 45000 {
		t.Fatalf("expected restored total 45000, got %d", snap.TotalCents)
	}
}
