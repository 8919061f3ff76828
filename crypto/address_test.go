package crypto

import (
	"bytes"
	"strings"
	"testing"
)

func TestAddressRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0x42}, AddressLength)
	addr := NewAddress(MarketPrefix, raw)
	encoded := addr.String()
	if !strings.HasPrefix(encoded, string(MarketPrefix)+"1") {
		t.Fatalf("expected mkt prefix, got %q", encoded)
	}
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded.Bytes(), raw) {
		t.Fatalf("round trip lost bytes")
	}
	if decoded.Prefix() != MarketPrefix {
		t.Fatalf("round trip lost prefix")
	}
}

func TestParseMarketAddress(t *testing.T) {
	var raw [20]byte
	copy(raw[:], bytes.Repeat([]byte{0x07}, 20))
	encoded := FormatMarketAddress(raw)
	parsed, err := ParseMarketAddress(encoded)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != raw {
		t.Fatalf("parse round trip mismatch")
	}

	if _, err := ParseMarketAddress("not-bech32"); err == nil {
		t.Fatalf("expected decode failure")
	}
	foreign := NewAddress("other", bytes.Repeat([]byte{0x07}, 20)).String()
	if _, err := ParseMarketAddress(foreign); err == nil {
		t.Fatalf("expected prefix rejection")
	}
}

func TestNewAddressLengthGuard(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for short address")
		}
	}()
	NewAddress(MarketPrefix, []byte{0x01})
}
