package market

import (
	"strconv"

	"marketd/core/types"
	"marketd/crypto"
)

const (
	EventTypeItemOffered   = "market.item.offered"
	EventTypeItemOrdered   = "market.item.ordered"
	EventTypeItemCompleted = "market.item.completed"
)

// NewItemOfferedEvent returns the canonical payload emitted when a seller
// lists an item.
func NewItemOfferedEvent(i *Item) *types.Event { return newItemEvent(EventTypeItemOffered, i) }

// NewItemOrderedEvent returns the canonical payload emitted when a buyer
// reserves an item.
func NewItemOrderedEvent(i *Item) *types.Event { return newItemEvent(EventTypeItemOrdered, i) }

// NewItemCompletedEvent returns the canonical payload emitted when delivery is
// confirmed and the reserved funds leave the system.
func NewItemCompletedEvent(i *Item) *types.Event { return newItemEvent(EventTypeItemCompleted, i) }

func newItemEvent(eventType string, i *Item) *types.Event {
	attrs := make(map[string]string)
	if i == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	sanitized, err := SanitizeItem(i)
	if err != nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["name"] = sanitized.Name
	attrs["seller"] = crypto.FormatMarketAddress(sanitized.Seller)
	attrs["price"] = sanitized.Price.String()
	attrs["quantity"] = strconv.FormatUint(sanitized.Quantity, 10)
	attrs["status"] = sanitized.Status.String()
	if sanitized.Buyer != ZeroAddress {
		attrs["buyer"] = crypto.FormatMarketAddress(sanitized.Buyer)
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
