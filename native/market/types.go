package market

import (
	"math/big"
	"strings"
)

// ItemStatus represents the lifecycle states supported by the market engine.
type ItemStatus uint8

const (
	// ItemOffered is the initial state and the only re-enterable one: a
	// reversed order puts the item back on offer.
	ItemOffered ItemStatus = iota
	// ItemAwaitingDelivery marks an item whose price has been reserved from
	// the buyer's escrow balance.
	ItemAwaitingDelivery
	// ItemComplete is terminal. Completed items stay in the store as a
	// historical record.
	ItemComplete
)

// Valid reports whether the status value is within the supported range.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemOffered, ItemAwaitingDelivery, ItemComplete:
		return true
	default:
		return false
	}
}

// String renders the status for events and RPC payloads.
func (s ItemStatus) String() string {
	switch s {
	case ItemOffered:
		return "offered"
	case ItemAwaitingDelivery:
		return "awaiting_delivery"
	case ItemComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ZeroAddress is the sentinel for "no principal". Item.Buyer holds it until an
// order is placed and again after a complaint reverses one.
var ZeroAddress = [20]byte{}

// Item captures a single listing managed by the market engine. Name is the
// unique key; Seller is immutable after creation. Quantity is recorded at
// listing time but never decremented: orders are not constrained by stock.
type Item struct {
	Name     string
	Price    *big.Int
	Quantity uint64
	Seller   [20]byte
	Buyer    [20]byte
	Status   ItemStatus
}

// Clone returns a deep copy of the item so callers can safely mutate the copy
// without affecting the stored instance.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	clone := *i
	if i.Price != nil {
		clone.Price = new(big.Int).Set(i.Price)
	} else {
		clone.Price = big.NewInt(0)
	}
	return &clone
}

// NormalizeItemName trims surrounding whitespace and rejects empty names,
// returning the canonical key used by the item table.
func NormalizeItemName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrInvalidInput
	}
	return trimmed, nil
}

// SanitizeItem validates and normalises the supplied item, returning a cloned
// instance with a canonical name and a non-nil price. The function does not
// mutate the original value.
func SanitizeItem(i *Item) (*Item, error) {
	if i == nil {
		return nil, ErrInvalidInput
	}
	clone := i.Clone()
	name, err := NormalizeItemName(clone.Name)
	if err != nil {
		return nil, err
	}
	clone.Name = name
	if clone.Price == nil || clone.Price.Sign() <= 0 {
		return nil, ErrInvalidInput
	}
	if clone.Quantity == 0 {
		return nil, ErrInvalidInput
	}
	if clone.Seller == ZeroAddress {
		return nil, ErrInvalidInput
	}
	if !clone.Status.Valid() {
		return nil, ErrInvalidInput
	}
	return clone, nil
}
