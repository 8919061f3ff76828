package crypto

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// AddressPrefix defines the human-readable prefix attached to encoded
// addresses.
type AddressPrefix string

// MarketPrefix is the prefix used for every principal known to the market:
// buyers, sellers, the authority and the vault.
const MarketPrefix AddressPrefix = "mkt"

// AddressLength is the raw byte length of a principal identity.
const AddressLength = 20

// Address represents a 20-byte principal identity with a bech32 prefix.
type Address struct {
	prefix AddressPrefix
	bytes  []byte
}

func NewAddress(prefix AddressPrefix, b []byte) Address {
	if len(b) != AddressLength {
		panic("address must be 20 bytes long")
	}
	return Address{prefix: prefix, bytes: append([]byte(nil), b...)}
}

func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.bytes, 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

func (a Address) Bytes() []byte {
	return append([]byte(nil), a.bytes...)
}

// Prefix returns the human-readable prefix associated with the address.
func (a Address) Prefix() AddressPrefix {
	return a.prefix
}

func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error converting bits: %w", err)
	}
	if len(conv) != AddressLength {
		return Address{}, fmt.Errorf("address must be %d bytes (got %d)", AddressLength, len(conv))
	}
	return NewAddress(AddressPrefix(prefix), conv), nil
}

// ParseMarketAddress decodes a bech32 address, enforces the market prefix and
// returns the raw 20-byte identity used throughout the engine.
func ParseMarketAddress(addrStr string) ([20]byte, error) {
	var out [20]byte
	addr, err := DecodeAddress(addrStr)
	if err != nil {
		return out, err
	}
	if addr.Prefix() != MarketPrefix {
		return out, fmt.Errorf("unexpected address prefix %q", addr.Prefix())
	}
	copy(out[:], addr.Bytes())
	return out, nil
}

// FormatMarketAddress renders a raw identity in its canonical bech32 form.
func FormatMarketAddress(raw [20]byte) string {
	return NewAddress(MarketPrefix, raw[:]).String()
}
