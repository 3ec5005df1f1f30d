package composer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kitline/kitline-backend/pkg/db/models"
	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
)

func sizedJersey() *models.Product {
	return &models.Product{
		ID:           uuid.New(),
		Name:         "Home Jersey",
		PriceCents:   18000,
		Currency:     "DKK",
		Sizes:        pq.StringArray{"S", "M", "L", "XL"},
		Customizable: true,
		IsActive:     true,
	}
}

func plainBall() *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		Name:       "Match Ball",
		PriceCents: 25000,
		Currency:   "DKK",
		IsActive:   true,
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestCommitSelectionSimplePath(t *testing.T) {
	t.Parallel()

	product := sizedJersey()
	line, err := CommitSelection(product, Selection{
		Size:            strPtr("M"),
		Quantity:        intPtr(2),
		Personalization: []string{"VIGGO 7", "EMMA 10"},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if line.ProductID != product.ID || line.Name != "Home Jersey" || line.UnitPriceCents != 18000 {
		t.Fatalf("catalog fields not denormalized: %+v", line)
	}
	if line.Size != "M" || line.Quantity != 2 {
		t.Fatalf("selection fields lost: %+v", line)
	}
	if len(line.Personalization) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(line.Personalization))
	}
	if line.LineTotalCents() != 36000 {
		t.Fatalf("expected line total 36000, got %d", line.LineTotalCents())
	}
}

func TestCommitSelectionPadsAndTruncatesSlots(t *testing.T) {
	t.Parallel()

	product := sizedJersey()

	padded, err := CommitSelection(product, Selection{
		Size:            strPtr("M"),
		Quantity:        intPtr(3),
		Personalization: []string{"VIGGO 7"},
	})
	if err != nil {
		t.Fatalf("padded commit: %v", err)
	}
	if len(padded.Personalization) != 3 || padded.Personalization[1] != "" {
		t.Fatalf("expected padding to quantity: %v", padded.Personalization)
	}

	truncated, err := CommitSelection(product, Selection{
		Size:            strPtr("M"),
		Quantity:        intPtr(1),
		Personalization: []string{"VIGGO 7", "EMMA 10", "NOAH 4"},
	})
	if err != nil {
		t.Fatalf("truncated commit: %v", err)
	}
	if len(truncated.Personalization) != 1 || truncated.Personalization[0] != "VIGGO 7" {
		t.Fatalf("expected truncation to quantity: %v", truncated.Personalization)
	}
}

func TestCommitSelectionValidation(t *testing.T) {
	t.Parallel()

	product := sizedJersey()

	cases := []struct {
		name string
		sel  Selection
	}{
		{"missing quantity", Selection{Size: strPtr("M")}},
		{"zero quantity", Selection{Size: strPtr("M"), Quantity: intPtr(0)}},
		{"missing size on sized product", Selection{Quantity: intPtr(1)}},
		{"undeclared size", Selection{Size: strPtr("XXL"), Quantity: intPtr(1)}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := CommitSelection(product, tc.sel)
			if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCommitSelectionUnsizedProduct(t *testing.T) {
	t.Parallel()

	line, err := CommitSelection(plainBall(), Selection{Quantity: intPtr(4)})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if line.Size != "" || line.Customizable || line.Personalization != nil {
		t.Fatalf("unsized plain product must carry no size or slots: %+v", line)
	}
}

func TestAllocationHappyPath(t *testing.T) {
	t.Parallel()

	alloc, err := NewAllocation(sizedJersey())
	if err != nil {
		t.Fatalf("new allocation: %v", err)
	}
	if alloc.State() != StateCollectingQuantity {
		t.Fatalf("expected collecting_quantity, got %s", alloc.State())
	}

	if err := alloc.SetRequestedQuantity(5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if err := alloc.SetSizeCount("M", 3); err != nil {
		t.Fatalf("set M: %v", err)
	}
	if err := alloc.SetSizeCount("L", 2); err != nil {
		t.Fatalf("set L: %v", err)
	}
	if got := alloc.TotalAssigned(); got != 5 {
		t.Fatalf("expected 5 assigned, got %d", got)
	}
	if err := alloc.Proceed(); err != nil {
		t.Fatalf("proceed: %v", err)
	}

	names := map[string][]string{
		"M": {"VIGGO 7", "EMMA 10", "NOAH 4"},
		"L": {"IDA 9", "OSCAR 12"},
	}
	for size, entries := range names {
		for i, name := range entries {
			if err := alloc.SetSlot(size, i, name); err != nil {
				t.Fatalf("set slot %s[%d]: %v", size, i, err)
			}
		}
	}

	lines, err := alloc.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected one line per populated size, got %d", len(lines))
	}
	if lines[0].Size != "M" || lines[1].Size != "L" {
		t.Fatalf("lines must follow declared size order: %+v", lines)
	}
	if lines[0].Quantity != 3 || len(lines[0].Personalization) != 3 {
		t.Fatalf("M line out of shape: %+v", lines[0])
	}
	if lines[1].Quantity != 2 || len(lines[1].Personalization) != 2 {
		t.Fatalf("L line out of shape: %+v", lines[1])
	}
	if alloc.State() != StateCommitted {
		t.Fatalf("expected committed, got %s", alloc.State())
	}
}

func TestAllocationProceedGatedOnExactSum(t *testing.T) {
	t.Parallel()

	alloc, _ := NewAllocation(sizedJersey())
	if err := alloc.SetRequestedQuantity(5); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if err := alloc.SetSizeCount("M", 3); err != nil {
		t.Fatalf("set M: %v", err)
	}

	err := alloc.Proceed()
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error on undershoot, got %v", err)
	}

	if err := alloc.SetSizeCount("L", 3); err != nil {
		t.Fatalf("set L: %v", err)
	}
	if err := alloc.Proceed(); err == nil {
		t.Fatal("expected rejection on overshoot")
	}

	if err := alloc.SetSizeCount("L", 2); err != nil {
		t.Fatalf("revise L: %v", err)
	}
	if err := alloc.Proceed(); err != nil {
		t.Fatalf("exact sum must proceed: %v", err)
	}
}

func TestAllocationCommitRequiresEveryName(t *testing.T) {
	t.Parallel()

	alloc, _ := NewAllocation(sizedJersey())
	_ = alloc.SetRequestedQuantity(2)
	_ = alloc.SetSizeCount("M", 2)
	if err := alloc.Proceed(); err != nil {
		t.Fatalf("proceed: %v", err)
	}

	_ = alloc.SetSlot("M", 0, "VIGGO 7")
	_ = alloc.SetSlot("M", 1, "   ")

	_, err := alloc.Commit()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error on blank slot, got %v", err)
	}
	if alloc.State() != StateCollectingPersonalization {
		t.Fatalf("failed commit must not advance state, got %s", alloc.State())
	}

	if err := alloc.SetSlot("M", 1, "EMMA 10"); err != nil {
		t.Fatalf("fix slot: %v", err)
	}
	if _, err := alloc.Commit(); err != nil {
		t.Fatalf("commit after fix: %v", err)
	}
}

func TestAllocationStateGuards(t *testing.T) {
	t.Parallel()

	alloc, _ := NewAllocation(sizedJersey())

	if err := alloc.SetSizeCount("M", 1); err == nil {
		t.Fatal("size counts must be rejected before a quantity is set")
	}
	if err := alloc.SetSlot("M", 0, "X"); err == nil {
		t.Fatal("slots must be rejected before distribution is confirmed")
	}
	if _, err := alloc.Commit(); err == nil {
		t.Fatal("commit must be rejected before personalization opens")
	}

	_ = alloc.SetRequestedQuantity(1)
	_ = alloc.SetSizeCount("S", 1)
	if err := alloc.Proceed(); err != nil {
		t.Fatalf("proceed: %v", err)
	}
	if err := alloc.SetRequestedQuantity(9); err == nil {
		t.Fatal("quantity edits must be rejected after distribution is confirmed")
	}
}

func TestAllocationReviseKeepsTypedNames(t *testing.T) {
	t.Parallel()

	alloc, _ := NewAllocation(sizedJersey())
	_ = alloc.SetRequestedQuantity(2)
	_ = alloc.SetSizeCount("M", 2)
	_ = alloc.Proceed()
	_ = alloc.SetSlot("M", 0, "VIGGO 7")
	_ = alloc.SetSlot("M", 1, "EMMA 10")

	if err := alloc.Revise(); err != nil {
		t.Fatalf("revise: %v", err)
	}
	_ = alloc.SetRequestedQuantity(3)
	_ = alloc.SetSizeCount("M", 3)
	if err := alloc.Proceed(); err != nil {
		t.Fatalf("re-proceed: %v", err)
	}

	slots := alloc.Slots("M")
	if len(slots) != 3 || slots[0] != "VIGGO 7" || slots[1] != "EMMA 10" || slots[2] != "" {
		t.Fatalf("typed names must survive a revision: %v", slots)
	}
}

func TestAllocationCancelResets(t *testing.T) {
	t.Parallel()

	alloc, _ := NewAllocation(sizedJersey())
	_ = alloc.SetRequestedQuantity(4)
	_ = alloc.SetSizeCount("M", 4)
	_ = alloc.Proceed()

	alloc.Cancel()
	if alloc.State() != StateCollectingQuantity {
		t.Fatalf("cancel must reset to collecting_quantity, got %s", alloc.State())
	}
	if alloc.RequestedQuantity() != 0 || alloc.TotalAssigned() != 0 {
		t.Fatal("cancel must drop quantity and counts")
	}
}

func TestNewAllocationRejectsSimplePathProducts(t *testing.T) {
	t.Parallel()

	if _, err := NewAllocation(plainBall()); err == nil {
		t.Fatal("expected rejection for non-customizable unsized product")
	}
	if _, err := NewAllocation(nil); err == nil {
		t.Fatal("expected rejection for nil product")
	}
}
