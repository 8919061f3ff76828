package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func addr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func TestMintAndBalance(t *testing.T) {
	l := NewNativeLedger()
	owner := addr(0x01)

	require.Zero(t, l.BalanceOf(owner).Sign())
	require.NoError(t, l.Mint(owner, big.NewInt(100)))
	require.NoError(t, l.Mint(owner, big.NewInt(50)))
	require.Equal(t, int64(150), l.BalanceOf(owner).Int64())
	require.ErrorIs(t, l.Mint(owner, big.NewInt(-1)), ErrInvalidAmount)
	require.ErrorIs(t, l.Mint(owner, nil), ErrInvalidAmount)
}

func TestTransferUnderflow(t *testing.T) {
	l := NewNativeLedger()
	from := addr(0x01)
	to := addr(0x02)

	require.NoError(t, l.Mint(from, big.NewInt(10)))
	require.ErrorIs(t, l.Transfer(from, to, big.NewInt(11)), ErrInsufficientBalance)
	require.Equal(t, int64(10), l.BalanceOf(from).Int64())
	require.NoError(t, l.Transfer(from, to, big.NewInt(10)))
	require.Zero(t, l.BalanceOf(from).Sign())
	require.Equal(t, int64(10), l.BalanceOf(to).Int64())
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	l := NewNativeLedger()
	owner := addr(0x01)
	spender := addr(0x02)
	dest := addr(0x03)

	require.NoError(t, l.Mint(owner, big.NewInt(100)))
	require.ErrorIs(t, l.TransferFrom(spender, owner, dest, big.NewInt(10)), ErrInsufficientAllowance)

	require.NoError(t, l.Approve(owner, spender, big.NewInt(60)))
	require.Equal(t, int64(60), l.Allowance(owner, spender).Int64())
	require.NoError(t, l.TransferFrom(spender, owner, dest, big.NewInt(40)))
	require.Equal(t, int64(20), l.Allowance(owner, spender).Int64())
	require.Equal(t, int64(40), l.BalanceOf(dest).Int64())

	require.ErrorIs(t, l.TransferFrom(spender, owner, dest, big.NewInt(21)), ErrInsufficientAllowance)
	require.NoError(t, l.TransferFrom(spender, owner, dest, big.NewInt(20)))
	require.Zero(t, l.Allowance(owner, spender).Sign())
}

func TestTransferFromZeroAmount(t *testing.T) {
	l := NewNativeLedger()
	owner := addr(0x01)
	spender := addr(0x02)
	dest := addr(0x03)

	// Zero is a valid amount even when the owner never approved anything.
	require.NoError(t, l.TransferFrom(spender, owner, dest, big.NewInt(0)))
	require.Zero(t, l.Allowance(owner, spender).Sign())
	require.Zero(t, l.BalanceOf(dest).Sign())

	require.NoError(t, l.Mint(owner, big.NewInt(10)))
	require.NoError(t, l.TransferFrom(spender, owner, dest, big.NewInt(0)))
	require.Equal(t, int64(10), l.BalanceOf(owner).Int64())
}

func TestTransferFromChecksBalanceAfterAllowance(t *testing.T) {
	l := NewNativeLedger()
	owner := addr(0x01)
	spender := addr(0x02)
	dest := addr(0x03)

	require.NoError(t, l.Mint(owner, big.NewInt(5)))
	require.NoError(t, l.Approve(owner, spender, big.NewInt(10)))
	require.ErrorIs(t, l.TransferFrom(spender, owner, dest, big.NewInt(6)), ErrInsufficientBalance)
	// The failed transfer must not consume the allowance.
	require.Equal(t, int64(10), l.Allowance(owner, spender).Int64())
}

func TestBalanceCopiesAreSafe(t *testing.T) {
	l := NewNativeLedger()
	owner := addr(0x01)
	require.NoError(t, l.Mint(owner, big.NewInt(10)))
	l.BalanceOf(owner).SetInt64(999)
	require.Equal(t, int64(10), l.BalanceOf(owner).Int64())
}
