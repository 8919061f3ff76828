package market

import (
	"errors"
	"math/big"

	"marketd/native/token"
)

var (
	errNilLedgerState = errors.New("market ledger: state not configured")
	errNilTokenLedger = errors.New("market ledger: token ledger not configured")
)

// ledgerState is the slice of the state backend the ledger adapter needs: the
// per-principal escrow balance table.
type ledgerState interface {
	BalanceGet(addr [20]byte) (*big.Int, error)
	BalanceSet(addr [20]byte, amount *big.Int) error
}

// ModuleVaultAddress returns the principal under which the market tracks the
// aggregate of funds currently in flight between order and completion. It
// mirrors what the module holds on the external ledger.
func ModuleVaultAddress() [20]byte {
	var addr [20]byte
	copy(addr[:], "market/vault")
	return addr
}

// Ledger bridges the external asset ledger and the internal per-principal
// escrow balances. Deposit and Payout are the only paths that touch the
// external ledger; every other balance move happens between two internal
// entries because the cash is already custodied.
type Ledger struct {
	state ledgerState
	token token.Ledger
	vault [20]byte
}

// NewLedger constructs a ledger adapter custodying funds under the supplied
// vault address.
func NewLedger(state ledgerState, tok token.Ledger, vault [20]byte) *Ledger {
	return &Ledger{state: state, token: tok, vault: vault}
}

// Vault returns the custody address used on the external ledger.
func (l *Ledger) Vault() [20]byte { return l.vault }

// Deposit pulls amount from the caller's external balance into the vault and
// credits both the caller's escrow balance and the vault's aggregate entry.
// The double credit is intentional bookkeeping: the vault entry tracks total
// funds currently escrowed, distinct from the split across named principals.
func (l *Ledger) Deposit(caller [20]byte, amount *big.Int) error {
	if err := l.configured(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidInput
	}
	if l.token.Allowance(caller, l.vault).Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.token.TransferFrom(l.vault, caller, l.vault, amount); err != nil {
		return err
	}
	if err := l.credit(caller, amount); err != nil {
		return err
	}
	return l.credit(l.vault, amount)
}

// Payout disburses amount to the recipient from the vault's external holdings
// and closes the matching internal entries. No allowance is involved: the
// funds are already custodied.
func (l *Ledger) Payout(recipient [20]byte, amount *big.Int) error {
	if err := l.configured(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidInput
	}
	recipientBal, err := l.state.BalanceGet(recipient)
	if err != nil {
		return err
	}
	vaultBal, err := l.state.BalanceGet(l.vault)
	if err != nil {
		return err
	}
	if recipientBal.Cmp(amount) < 0 || vaultBal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	if err := l.token.Transfer(l.vault, recipient, amount); err != nil {
		return err
	}
	if err := l.state.BalanceSet(recipient, new(big.Int).Sub(recipientBal, amount)); err != nil {
		return err
	}
	return l.state.BalanceSet(l.vault, new(big.Int).Sub(vaultBal, amount))
}

// BalanceOf returns the principal's current escrow balance, zero for unknown
// principals.
func (l *Ledger) BalanceOf(addr [20]byte) *big.Int {
	if l == nil || l.state == nil {
		return big.NewInt(0)
	}
	bal, err := l.state.BalanceGet(addr)
	if err != nil || bal == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(bal)
}

func (l *Ledger) configured() error {
	if l == nil || l.state == nil {
		return errNilLedgerState
	}
	if l.token == nil {
		return errNilTokenLedger
	}
	return nil
}

func (l *Ledger) credit(addr [20]byte, amount *big.Int) error {
	bal, err := l.state.BalanceGet(addr)
	if err != nil {
		return err
	}
	return l.state.BalanceSet(addr, new(big.Int).Add(bal, amount))
}

func (l *Ledger) debit(addr [20]byte, amount *big.Int) error {
	bal, err := l.state.BalanceGet(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientFunds
	}
	return l.state.BalanceSet(addr, new(big.Int).Sub(bal, amount))
}
