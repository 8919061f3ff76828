package state

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"

	"marketd/native/market"
	"marketd/storage"
)

const (
	itemPrefix    = "market/item/"
	balancePrefix = "market/balance/"
)

// Manager persists the market's item and balance tables through a key-value
// backend. It implements the state surface the engine and ledger adapter
// expect; records survive across calls and, with a persistent backend, across
// restarts.
type Manager struct {
	db storage.Database
}

// NewManager wraps the supplied database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

type storedItem struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity uint64 `json:"quantity"`
	Seller   string `json:"seller"`
	Buyer    string `json:"buyer"`
	Status   uint8  `json:"status"`
}

// ItemPut validates and stores the item under its canonical name.
func (m *Manager) ItemPut(item *market.Item) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	sanitized, err := market.SanitizeItem(item)
	if err != nil {
		return err
	}
	record := storedItem{
		Name:     sanitized.Name,
		Price:    sanitized.Price.String(),
		Quantity: sanitized.Quantity,
		Seller:   hex.EncodeToString(sanitized.Seller[:]),
		Buyer:    hex.EncodeToString(sanitized.Buyer[:]),
		Status:   uint8(sanitized.Status),
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return m.db.Put(itemKey(sanitized.Name), encoded)
}

// ItemGet loads the named item, reporting a miss for unknown names.
func (m *Manager) ItemGet(name string) (*market.Item, bool) {
	if m == nil || m.db == nil {
		return nil, false
	}
	raw, err := m.db.Get(itemKey(name))
	if err != nil {
		return nil, false
	}
	var record storedItem
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false
	}
	item, err := decodeItem(record)
	if err != nil {
		return nil, false
	}
	return item, true
}

// BalanceGet returns the stored escrow balance, zero for unknown principals.
func (m *Manager) BalanceGet(addr [20]byte) (*big.Int, error) {
	if m == nil || m.db == nil {
		return nil, fmt.Errorf("state: database not configured")
	}
	ok, err := m.db.Has(balanceKey(addr))
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	raw, err := m.db.Get(balanceKey(addr))
	if err != nil {
		return nil, err
	}
	amount, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return nil, fmt.Errorf("state: corrupt balance record for %x", addr)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("state: negative balance record for %x", addr)
	}
	return amount, nil
}

// BalanceSet stores the escrow balance for a principal. Negative amounts are
// rejected: balances are unsigned by construction.
func (m *Manager) BalanceSet(addr [20]byte, amount *big.Int) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state: database not configured")
	}
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("state: balance must be non-negative")
	}
	return m.db.Put(balanceKey(addr), []byte(amount.String()))
}

func itemKey(name string) []byte {
	return append([]byte(itemPrefix), name...)
}

func balanceKey(addr [20]byte) []byte {
	return append([]byte(balancePrefix), addr[:]...)
}

func decodeItem(record storedItem) (*market.Item, error) {
	price, ok := new(big.Int).SetString(record.Price, 10)
	if !ok {
		return nil, fmt.Errorf("state: corrupt price for item %q", record.Name)
	}
	seller, err := decodeAddr(record.Seller)
	if err != nil {
		return nil, err
	}
	buyer, err := decodeAddr(record.Buyer)
	if err != nil {
		return nil, err
	}
	item := &market.Item{
		Name:     record.Name,
		Price:    price,
		Quantity: record.Quantity,
		Seller:   seller,
		Buyer:    buyer,
		Status:   market.ItemStatus(record.Status),
	}
	if !item.Status.Valid() {
		return nil, fmt.Errorf("state: corrupt status for item %q", record.Name)
	}
	return item, nil
}

func decodeAddr(s string) ([20]byte, error) {
	var addr [20]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return addr, fmt.Errorf("state: corrupt address record: %w", err)
	}
	if len(raw) != len(addr) {
		return addr, fmt.Errorf("state: address record must be %d bytes", len(addr))
	}
	copy(addr[:], raw)
	return addr, nil
}
