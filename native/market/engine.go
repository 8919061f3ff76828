package market

import (
	"errors"
	"math/big"
	"sync"

	"marketd/core/events"
	"marketd/core/types"
	nativecommon "marketd/native/common"
)

var (
	errNilState  = errors.New("market engine: state not configured")
	errNilLedger = errors.New("market engine: ledger not configured")
)

const moduleName = "market"

// engineState is the full state surface the engine owns: the item table plus
// the balance table shared with the ledger adapter.
type engineState interface {
	ledgerState
	ItemPut(*Item) error
	ItemGet(name string) (*Item, bool)
}

type marketEvent struct {
	evt *types.Event
}

func (e marketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e marketEvent) Event() *types.Event { return e.evt }

// Engine owns the item table and enforces the offer -> order ->
// complete/complain state machine, moving funds between escrow balances as
// side effects of transitions. Every public operation runs as one logical
// transaction: one lock scope, preconditions checked before the first
// mutation. Balance and item records are separate puts: a state backend that
// fails a write mid-operation aborts the call with the earlier balance legs
// already applied.
type Engine struct {
	mu        sync.Mutex
	state     engineState
	ledger    *Ledger
	emitter   events.Emitter
	authority [20]byte
	pauses    nativecommon.PauseView
}

// NewEngine creates a market engine with a no-op emitter. Callers can override
// the emitter via SetEmitter.
func NewEngine(ledger *Ledger) *Engine {
	return &Engine{
		ledger:  ledger,
		emitter: events.NoopEmitter{},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAuthority configures the single identity permitted to reverse orders.
func (e *Engine) SetAuthority(addr [20]byte) { e.authority = addr }

// SetPauses configures the operational pause switch consulted before every
// operation.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(marketEvent{evt: event})
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.ledger == nil {
		return errNilLedger
	}
	return nativecommon.Guard(e.pauses, moduleName)
}

// Offer lists a new item. The name must be unused; price and quantity must be
// positive. Quantity is informational from here on.
func (e *Engine) Offer(seller [20]byte, name string, price *big.Int, quantity uint64) (*Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return nil, err
	}
	normalized, err := NormalizeItemName(name)
	if err != nil {
		return nil, err
	}
	if price == nil || price.Sign() <= 0 {
		return nil, ErrInvalidInput
	}
	if quantity == 0 {
		return nil, ErrInvalidInput
	}
	if seller == ZeroAddress {
		return nil, ErrInvalidInput
	}
	if _, ok := e.state.ItemGet(normalized); ok {
		return nil, ErrDuplicateItem
	}
	item := &Item{
		Name:     normalized,
		Price:    new(big.Int).Set(price),
		Quantity: quantity,
		Seller:   seller,
		Status:   ItemOffered,
	}
	if err := e.state.ItemPut(item); err != nil {
		return nil, err
	}
	e.emit(NewItemOfferedEvent(item))
	return item.Clone(), nil
}

// Order reserves an offered item for the buyer. The price moves from the
// buyer's escrow balance to the seller's; the external payout to the seller
// happens only at completion.
func (e *Engine) Order(buyer [20]byte, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	item, err := e.loadItem(name)
	if err != nil {
		return err
	}
	if item.Status != ItemOffered {
		return ErrNotAvailable
	}
	balance, err := e.state.BalanceGet(buyer)
	if err != nil {
		return err
	}
	if balance.Cmp(item.Price) < 0 {
		return ErrInsufficientFunds
	}
	if err := e.ledger.debit(buyer, item.Price); err != nil {
		return err
	}
	if err := e.ledger.credit(item.Seller, item.Price); err != nil {
		return err
	}
	item.Buyer = buyer
	item.Status = ItemAwaitingDelivery
	if err := e.state.ItemPut(item); err != nil {
		return err
	}
	e.emit(NewItemOrderedEvent(item))
	return nil
}

// Complete confirms delivery. Only the recorded buyer may call it; the
// reserved amount leaves the system through an external payout to the seller
// and the item reaches its terminal state.
func (e *Engine) Complete(caller [20]byte, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	item, err := e.loadItem(name)
	if err != nil {
		return err
	}
	if item.Status != ItemAwaitingDelivery {
		return ErrWrongState
	}
	if caller != item.Buyer {
		return ErrNotBuyer
	}
	if err := e.ledger.Payout(item.Seller, item.Price); err != nil {
		return err
	}
	item.Status = ItemComplete
	if err := e.state.ItemPut(item); err != nil {
		return err
	}
	e.emit(NewItemCompletedEvent(item))
	return nil
}

// Complain lets the authority reverse a stalled order: the price moves back
// from the seller's escrow balance to the buyer's, the buyer is cleared and
// the item returns to offer. The item must exist, be awaiting delivery and
// the supplied buyer must match the recorded one.
func (e *Engine) Complain(caller, buyer [20]byte, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	if caller != e.authority {
		return ErrUnauthorized
	}
	item, err := e.loadItem(name)
	if err != nil {
		return err
	}
	if item.Status != ItemAwaitingDelivery {
		return ErrWrongState
	}
	if buyer != item.Buyer {
		return ErrNotBuyer
	}
	if err := e.ledger.debit(item.Seller, item.Price); err != nil {
		return err
	}
	if err := e.ledger.credit(buyer, item.Price); err != nil {
		return err
	}
	item.Buyer = ZeroAddress
	item.Status = ItemOffered
	return e.state.ItemPut(item)
}

// Deposit funds the caller's escrow balance from the external ledger. The
// call requires a matching external allowance toward the vault.
func (e *Engine) Deposit(caller [20]byte, amount *big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ready(); err != nil {
		return err
	}
	return e.ledger.Deposit(caller, amount)
}

// GetItem returns a copy of the named item.
func (e *Engine) GetItem(name string) (*Item, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil, errNilState
	}
	return e.loadItem(name)
}

// EscrowBalance returns the principal's current escrow balance.
func (e *Engine) EscrowBalance(addr [20]byte) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ledger == nil {
		return big.NewInt(0)
	}
	return e.ledger.BalanceOf(addr)
}

func (e *Engine) loadItem(name string) (*Item, error) {
	normalized, err := NormalizeItemName(name)
	if err != nil {
		return nil, err
	}
	item, ok := e.state.ItemGet(normalized)
	if !ok {
		return nil, ErrItemNotFound
	}
	return item, nil
}
