package ledger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newMintableLedger(t *testing.T) *Ledger {
	t.Helper()
	l := New("owner", "", "")
	require.NoError(t, l.SetMinter("owner", "engine"))
	return l
}

func TestMetadataDefaults(t *testing.T) {
	l := New("owner", "", "")
	require.Equal(t, "MonopolyToken", l.Name())
	require.Equal(t, "MONO", l.Symbol())
	require.Equal(t, uint8(0), l.Decimals())
	require.Equal(t, "owner", l.Owner())
}

func TestSetMinter(t *testing.T) {
	t.Run("records minter", func(t *testing.T) {
		l := newMintableLedger(t)
		require.Equal(t, "engine", l.Minter())
	})

	t.Run("rejects non-owner", func(t *testing.T) {
		l := New("owner", "", "")
		require.ErrorIs(t, l.SetMinter("mallory", "engine"), ErrNotOwner)
		require.Empty(t, l.Minter())
	})

	t.Run("locks after first call", func(t *testing.T) {
		l := newMintableLedger(t)
		require.ErrorIs(t, l.SetMinter("owner", "other"), ErrMinterLocked)
		require.Equal(t, "engine", l.Minter())
	})

	t.Run("rejects empty minter", func(t *testing.T) {
		l := New("owner", "", "")
		require.ErrorIs(t, l.SetMinter("owner", ""), ErrInvalidAccount)
	})
}

func TestMint(t *testing.T) {
	t.Run("minter can mint", func(t *testing.T) {
		l := newMintableLedger(t)
		require.NoError(t, l.Mint("engine", "player1", 1000))
		require.Equal(t, int64(1000), l.BalanceOf("player1"))
		require.Equal(t, int64(1000), l.TotalSupply())
	})

	t.Run("others cannot mint", func(t *testing.T) {
		l := newMintableLedger(t)
		err := l.Mint("player1", "player1", 1000)
		require.ErrorIs(t, err, ErrUnauthorized)
		require.Equal(t, "only the game engine can mint", err.Error())
		require.Zero(t, l.BalanceOf("player1"))
		require.Zero(t, l.TotalSupply())
	})

	t.Run("nobody mints before a minter is set", func(t *testing.T) {
		l := New("owner", "", "")
		require.ErrorIs(t, l.Mint("", "player1", 10), ErrUnauthorized)
		require.ErrorIs(t, l.Mint("owner", "player1", 10), ErrUnauthorized)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		l := newMintableLedger(t)
		require.ErrorIs(t, l.Mint("engine", "player1", 0), ErrInvalidAmount)
		require.ErrorIs(t, l.Mint("engine", "player1", -5), ErrInvalidAmount)
	})
}

func TestTransfer(t *testing.T) {
	l := newMintableLedger(t)
	require.NoError(t, l.Mint("engine", "alice", 100))

	require.NoError(t, l.Transfer("alice", "bob", 40))
	require.Equal(t, int64(60), l.BalanceOf("alice"))
	require.Equal(t, int64(40), l.BalanceOf("bob"))
	require.Equal(t, int64(100), l.TotalSupply())

	require.ErrorIs(t, l.Transfer("alice", "bob", 61), ErrInsufficientBalance)
	require.Equal(t, int64(60), l.BalanceOf("alice"))

	require.NoError(t, l.Transfer("alice", "alice", 60))
	require.Equal(t, int64(60), l.BalanceOf("alice"))
}

func TestApproveAndTransferFrom(t *testing.T) {
	l := newMintableLedger(t)
	require.NoError(t, l.Mint("engine", "alice", 100))
	require.NoError(t, l.Approve("alice", "spender", 50))
	require.Equal(t, int64(50), l.Allowance("alice", "spender"))

	require.NoError(t, l.TransferFrom("spender", "alice", "bob", 30))
	require.Equal(t, int64(20), l.Allowance("alice", "spender"))
	require.Equal(t, int64(70), l.BalanceOf("alice"))
	require.Equal(t, int64(30), l.BalanceOf("bob"))

	require.ErrorIs(t, l.TransferFrom("spender", "alice", "bob", 21), ErrInsufficientAllowance)
	require.Equal(t, int64(20), l.Allowance("alice", "spender"))
}

func TestTransferFromKeepsAllowanceWhenBalanceIsShort(t *testing.T) {
	l := newMintableLedger(t)
	require.NoError(t, l.Mint("engine", "alice", 10))
	require.NoError(t, l.Approve("alice", "spender", 50))

	require.ErrorIs(t, l.TransferFrom("spender", "alice", "bob", 30), ErrInsufficientBalance)
	require.Equal(t, int64(50), l.Allowance("alice", "spender"))
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	l := newMintableLedger(t)
	boom := errors.New("boom")

	err := l.Update(func(tx *Tx) error {
		require.NoError(t, tx.Mint("engine", "alice", 1000))
		require.NoError(t, tx.Mint("engine", "bob", 1000))
		require.Equal(t, int64(1000), tx.BalanceOf("alice"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, l.BalanceOf("alice"))
	require.Zero(t, l.BalanceOf("bob"))
	require.Zero(t, l.TotalSupply())
}

func TestTxTouchedIsSorted(t *testing.T) {
	l := newMintableLedger(t)
	var touched []Balance
	require.NoError(t, l.Update(func(tx *Tx) error {
		if err := tx.Mint("engine", "zed", 5); err != nil {
			return err
		}
		if err := tx.Mint("engine", "amy", 7); err != nil {
			return err
		}
		touched = tx.Touched()
		return nil
	}))
	require.Equal(t, []Balance{{Account: "amy", Amount: 7}, {Account: "zed", Amount: 5}}, touched)
}

func TestRestore(t *testing.T) {
	l := newMintableLedger(t)
	require.NoError(t, l.Mint("engine", "stale", 5))

	require.NoError(t, l.Restore(map[string]int64{"alice": 1000, "bob": 250, "empty": 0}))
	require.Equal(t, int64(1250), l.TotalSupply())
	require.Zero(t, l.BalanceOf("stale"))
	require.Equal(t, map[string]int64{"alice": 1000, "bob": 250}, l.Balances())

	require.ErrorIs(t, l.Restore(map[string]int64{"alice": -1}), ErrInvalidAmount)
	require.Equal(t, int64(1250), l.TotalSupply())
}
