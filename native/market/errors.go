package market

import "errors"

// Every failure the engine surfaces is a precondition fault on caller input.
// Operations abort with no partial mutation; nothing here is retryable.
var (
	// ErrInvalidInput rejects empty item names and non-positive prices,
	// quantities or amounts.
	ErrInvalidInput = errors.New("market: invalid input")
	// ErrDuplicateItem rejects an offer reusing an existing item name.
	ErrDuplicateItem = errors.New("market: item already exists")
	// ErrItemNotFound marks operations referencing an absent item.
	ErrItemNotFound = errors.New("market: item not found")
	// ErrNotAvailable marks an order against an item that is not on offer.
	ErrNotAvailable = errors.New("market: item not available for order")
	// ErrInsufficientFunds marks an order the buyer's escrow balance cannot
	// cover.
	ErrInsufficientFunds = errors.New("market: insufficient escrow balance")
	// ErrInsufficientAllowance marks a deposit without enough external
	// pre-authorization.
	ErrInsufficientAllowance = errors.New("market: insufficient token allowance")
	// ErrWrongState marks a transition attempted from the wrong item state.
	ErrWrongState = errors.New("market: item in wrong state")
	// ErrNotBuyer marks a completion or complaint naming anyone other than
	// the recorded buyer.
	ErrNotBuyer = errors.New("market: caller is not the recorded buyer")
	// ErrUnauthorized marks a complaint from anyone but the authority.
	ErrUnauthorized = errors.New("market: caller is not the authority")
)
