package market

import (
	"errors"
	"math/big"
	"testing"
)

func TestItemCloneIsIndependent(t *testing.T) {
	item := &Item{
		Name:     "widget",
		Price:    big.NewInt(40),
		Quantity: 5,
		Seller:   newTestAddress(0x01),
		Status:   ItemOffered,
	}
	clone := item.Clone()
	clone.Price.SetInt64(999)
	clone.Status = ItemComplete
	if item.Price.Cmp(big.NewInt(40)) != 0 {
		t.Fatalf("clone mutation leaked into original price: %s", item.Price)
	}
	if item.Status != ItemOffered {
		t.Fatalf("clone mutation leaked into original status")
	}
	if (*Item)(nil).Clone() != nil {
		t.Fatalf("nil clone should stay nil")
	}
}

func TestNormalizeItemName(t *testing.T) {
	if _, err := NormalizeItemName("  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	name, err := NormalizeItemName("  widget  ")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if name != "widget" {
		t.Fatalf("expected trimmed name, got %q", name)
	}
}

func TestSanitizeItem(t *testing.T) {
	valid := &Item{
		Name:     " widget ",
		Price:    big.NewInt(1),
		Quantity: 1,
		Seller:   newTestAddress(0x01),
		Status:   ItemOffered,
	}
	sanitized, err := SanitizeItem(valid)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if sanitized.Name != "widget" {
		t.Fatalf("expected canonical name, got %q", sanitized.Name)
	}
	if valid.Name != " widget " {
		t.Fatalf("sanitize mutated the original")
	}

	cases := []*Item{
		nil,
		{Name: "", Price: big.NewInt(1), Quantity: 1, Seller: newTestAddress(0x01)},
		{Name: "x", Price: nil, Quantity: 1, Seller: newTestAddress(0x01)},
		{Name: "x", Price: big.NewInt(0), Quantity: 1, Seller: newTestAddress(0x01)},
		{Name: "x", Price: big.NewInt(1), Quantity: 0, Seller: newTestAddress(0x01)},
		{Name: "x", Price: big.NewInt(1), Quantity: 1, Seller: ZeroAddress},
		{Name: "x", Price: big.NewInt(1), Quantity: 1, Seller: newTestAddress(0x01), Status: ItemStatus(9)},
	}
	for i, item := range cases {
		if _, err := SanitizeItem(item); err == nil {
			t.Fatalf("case %d: expected sanitize failure", i)
		}
	}
}

func TestItemStatusValues(t *testing.T) {
	for _, status := range []ItemStatus{ItemOffered, ItemAwaitingDelivery, ItemComplete} {
		if !status.Valid() {
			t.Fatalf("expected %v valid", status)
		}
		if status.String() == "unknown" {
			t.Fatalf("expected named rendering for %d", status)
		}
	}
	if ItemStatus(42).Valid() {
		t.Fatalf("expected out-of-range status invalid")
	}
	if ItemStatus(42).String() != "unknown" {
		t.Fatalf("expected unknown rendering")
	}
}
