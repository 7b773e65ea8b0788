package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monopoly/internal/app"
	"monopoly/internal/dice"
	"monopoly/internal/ledger"
	"monopoly/internal/storage/sqlite"
)

func newEngine(t *testing.T, store *sqlite.Store, rolls ...int) (*app.Engine, *ledger.Ledger) {
	t.Helper()
	l := ledger.New("owner", ledger.DefaultName, ledger.DefaultSymbol)
	require.NoError(t, l.SetMinter("owner", app.DefaultEngineID))
	e, err := app.NewEngine(app.DefaultEngineID, l, app.WithStore(store), app.WithRoller(dice.NewSequence(rolls...)))
	require.NoError(t, err)
	require.NoError(t, e.Restore(context.Background()))
	return e, l
}

func TestEngineSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "restart.db")

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	e, _ := newEngine(t, store, 5)

	id, _, err := e.CreateSession(ctx, "alice")
	require.NoError(t, err)
	_, err = e.JoinSession(ctx, id, "bob")
	require.NoError(t, err)
	_, err = e.StartSession(ctx, id, "alice")
	require.NoError(t, err)
	_, _, err = e.RollDice(ctx, id, "alice")
	require.NoError(t, err)
	_, err = e.BuyTile(ctx, id, 5, "alice")
	require.NoError(t, err)
	_, err = e.Transfer(ctx, "bob", "carol", 40)
	require.NoError(t, err)
	_, _, err = e.CreateSession(ctx, "dave")
	require.NoError(t, err)

	before, err := e.SessionInfo(ctx, id)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	restored, l := newEngine(t, store, 2)

	require.Equal(t, uint64(2), restored.SessionCounter())
	after, err := restored.SessionInfo(ctx, id)
	require.NoError(t, err)
	require.Equal(t, before.Status, after.Status)
	require.Equal(t, before.Players, after.Players)
	require.Equal(t, before.TurnIndex, after.TurnIndex)
	require.Equal(t, "bob", after.CurrentPlayer)
	require.Equal(t, map[int]string{5: "alice"}, after.Ownership)
	require.True(t, before.CreatedAt.Truncate(time.Millisecond).Equal(after.CreatedAt))

	require.Equal(t, int64(880), l.BalanceOf("alice"))
	require.Equal(t, int64(960), l.BalanceOf("bob"))
	require.Equal(t, int64(40), l.BalanceOf("carol"))
	require.Equal(t, int64(120), l.BalanceOf(app.DefaultEngineID))
	require.Equal(t, int64(2000), l.TotalSupply())

	// Play continues where it left off and ids keep counting.
	value, _, err := restored.RollDice(ctx, id, "bob")
	require.NoError(t, err)
	require.Equal(t, 2, value)
	next, _, err := restored.CreateSession(ctx, "erin")
	require.NoError(t, err)
	require.Equal(t, uint64(3), next)

	entries, err := store.Journal(ctx, id, 0, 0)
	require.NoError(t, err)
	kinds := make([]string, 0, len(entries))
	for _, entry := range entries {
		ev, err := app.UnmarshalEvent(entry.Payload)
		require.NoError(t, err)
		require.Equal(t, id, ev.SessionID)
		kinds = append(kinds, string(ev.Kind))
	}
	require.Equal(t, []string{
		"session_created", "player_joined", "session_started",
		"tokens_minted", "tokens_minted", "dice_rolled", "tile_purchased", "dice_rolled",
	}, kinds)
}
