package token

import (
	"errors"
	"math/big"
	"sync"
)

var (
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrInvalidAmount         = errors.New("token: amount must be non-negative")
)

// Ledger is the boundary with the external fungible-asset collaborator. The
// market treats it as a trusted accounting service: the engine only pulls
// pre-authorized deposits through it and pushes payouts back out.
type Ledger interface {
	BalanceOf(owner [20]byte) *big.Int
	Allowance(owner, spender [20]byte) *big.Int
	Transfer(from, to [20]byte, amount *big.Int) error
	TransferFrom(spender, owner, to [20]byte, amount *big.Int) error
}

// NativeLedger is the in-process reference implementation of the external
// ledger, carrying standard transfer/allowance semantics. The daemon seeds it
// from genesis balances; tests drive it directly.
type NativeLedger struct {
	mu         sync.RWMutex
	balances   map[[20]byte]*big.Int
	allowances map[[20]byte]map[[20]byte]*big.Int
}

func NewNativeLedger() *NativeLedger {
	return &NativeLedger{
		balances:   make(map[[20]byte]*big.Int),
		allowances: make(map[[20]byte]map[[20]byte]*big.Int),
	}
}

// Mint credits freshly issued funds to the owner. Used for genesis balances
// and tests; the market core never mints.
func (l *NativeLedger) Mint(owner [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[owner] = new(big.Int).Add(l.balance(owner), amount)
	return nil
}

// Approve grants spender the right to pull up to amount from owner.
func (l *NativeLedger) Approve(owner, spender [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	grants, ok := l.allowances[owner]
	if !ok {
		grants = make(map[[20]byte]*big.Int)
		l.allowances[owner] = grants
	}
	grants[spender] = new(big.Int).Set(amount)
	return nil
}

// BalanceOf returns a copy of the owner's balance, zero for unknown owners.
func (l *NativeLedger) BalanceOf(owner [20]byte) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.balance(owner))
}

// Allowance returns a copy of the remaining grant from owner to spender.
func (l *NativeLedger) Allowance(owner, spender [20]byte) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.allowance(owner, spender))
}

// Transfer moves amount from one owner to another. The debit fails rather than
// letting a balance go negative.
func (l *NativeLedger) Transfer(from, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// TransferFrom moves amount from owner to the destination on behalf of
// spender, consuming the matching allowance.
func (l *NativeLedger) TransferFrom(spender, owner, to [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	granted := l.allowance(owner, spender)
	if granted.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.move(owner, to, amount); err != nil {
		return err
	}
	grants, ok := l.allowances[owner]
	if !ok {
		grants = make(map[[20]byte]*big.Int)
		l.allowances[owner] = grants
	}
	grants[spender] = new(big.Int).Sub(granted, amount)
	return nil
}

func (l *NativeLedger) balance(owner [20]byte) *big.Int {
	if bal, ok := l.balances[owner]; ok {
		return bal
	}
	return big.NewInt(0)
}

func (l *NativeLedger) allowance(owner, spender [20]byte) *big.Int {
	if grants, ok := l.allowances[owner]; ok {
		if granted, ok := grants[spender]; ok {
			return granted
		}
	}
	return big.NewInt(0)
}

func (l *NativeLedger) move(from, to [20]byte, amount *big.Int) error {
	fromBal := l.balance(from)
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.balances[from] = new(big.Int).Sub(fromBal, amount)
	l.balances[to] = new(big.Int).Add(l.balance(to), amount)
	return nil
}
