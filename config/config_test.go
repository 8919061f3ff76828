package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"marketd/crypto"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.Equal(t, "127.0.0.1:8745", cfg.RPCAddress)
	require.Equal(t, "./data", cfg.DataDir)
	require.Equal(t, "dev", cfg.Environment)

	authority, err := cfg.Authority()
	require.NoError(t, err)
	require.Equal(t, DevAuthorityAddress(), authority)

	// The generated file loads back cleanly.
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.AuthorityAddress, reloaded.AuthorityAddress)
}

func TestLoadExplicitConfig(t *testing.T) {
	var auth, funded [20]byte
	copy(auth[:], "authority-raw-bytes!")
	copy(funded[:], "funded-account-raw!!")
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
RPCAddress = "0.0.0.0:9000"
DataDir = "/var/lib/marketd"
Environment = "staging"
AuthorityAddress = "` + crypto.FormatMarketAddress(auth) + `"

[[GenesisBalance]]
Address = "` + crypto.FormatMarketAddress(funded) + `"
Amount = "1000"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.RPCAddress)
	require.Equal(t, "staging", cfg.Environment)

	parsedAuth, err := cfg.Authority()
	require.NoError(t, err)
	require.Equal(t, auth, parsedAuth)

	balances, err := cfg.ParseGenesisBalances()
	require.NoError(t, err)
	require.Len(t, balances, 1)
	require.Equal(t, int64(1000), balances[funded].Int64())
}

func TestLoadRejectsBadAuthority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`AuthorityAddress = "garbage"`), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadGenesisAmount(t *testing.T) {
	var auth [20]byte
	copy(auth[:], "authority-raw-bytes!")
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
AuthorityAddress = "` + crypto.FormatMarketAddress(auth) + `"

[[GenesisBalance]]
Address = "` + crypto.FormatMarketAddress(auth) + `"
Amount = "-5"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}
