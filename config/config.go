package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"marketd/crypto"
)

// GenesisBalance seeds the reference token ledger with pre-funded external
// accounts at startup.
type GenesisBalance struct {
	Address string `toml:"Address"`
	Amount  string `toml:"Amount"`
}

type Config struct {
	RPCAddress       string           `toml:"RPCAddress"`
	DataDir          string           `toml:"DataDir"`
	Environment      string           `toml:"Environment"`
	LogFile          string           `toml:"LogFile"`
	AuthorityAddress string           `toml:"AuthorityAddress"`
	GenesisBalances  []GenesisBalance `toml:"GenesisBalance"`
}

// Load loads the configuration from the given path, writing a commented
// default file when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the addresses and amounts the daemon cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress must not be empty")
	}
	if _, err := c.Authority(); err != nil {
		return err
	}
	if _, err := c.ParseGenesisBalances(); err != nil {
		return err
	}
	return nil
}

// Authority returns the raw identity permitted to reverse orders.
func (c *Config) Authority() ([20]byte, error) {
	trimmed := strings.TrimSpace(c.AuthorityAddress)
	if trimmed == "" {
		return [20]byte{}, fmt.Errorf("AuthorityAddress must not be empty")
	}
	addr, err := crypto.ParseMarketAddress(trimmed)
	if err != nil {
		return [20]byte{}, fmt.Errorf("AuthorityAddress: %w", err)
	}
	return addr, nil
}

// ParseGenesisBalances decodes the configured genesis entries into raw
// identities and amounts.
func (c *Config) ParseGenesisBalances() (map[[20]byte]*big.Int, error) {
	out := make(map[[20]byte]*big.Int, len(c.GenesisBalances))
	for _, entry := range c.GenesisBalances {
		addr, err := crypto.ParseMarketAddress(strings.TrimSpace(entry.Address))
		if err != nil {
			return nil, fmt.Errorf("GenesisBalance %q: %w", entry.Address, err)
		}
		amount, ok := new(big.Int).SetString(strings.TrimSpace(entry.Amount), 10)
		if !ok || amount.Sign() < 0 {
			return nil, fmt.Errorf("GenesisBalance %q: amount must be a non-negative integer", entry.Address)
		}
		out[addr] = amount
	}
	return out, nil
}

// DevAuthorityAddress is the deterministic authority identity written into
// freshly generated config files. Operators replace it before any real
// deployment.
func DevAuthorityAddress() [20]byte {
	var addr [20]byte
	copy(addr[:], "market/authority")
	return addr
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8745"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "dev"
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{
		AuthorityAddress: crypto.FormatMarketAddress(DevAuthorityAddress()),
	}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
