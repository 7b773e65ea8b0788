package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monopoly/internal/domain"
	"monopoly/internal/ledger"
	"monopoly/internal/ports"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "monopoly.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func testSession(id uint64, now time.Time) *domain.Session {
	s := domain.NewSession(id, "alice", now)
	s.Players = append(s.Players, domain.Player{Account: "bob", Position: 7, HasRolled: true})
	s.Status = domain.StatusActive
	s.TurnIndex = 1
	s.Ownership[7] = "bob"
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("  ")
	require.Error(t, err)
}

func TestOpenAppliesPragmas(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	var foreignKeys, busyTimeout, synchronous int
	var journalMode string
	require.NoError(t, store.sqlDB.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&foreignKeys))
	require.NoError(t, store.sqlDB.QueryRowContext(ctx, `PRAGMA busy_timeout`).Scan(&busyTimeout))
	require.NoError(t, store.sqlDB.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&journalMode))
	require.NoError(t, store.sqlDB.QueryRowContext(ctx, `PRAGMA synchronous`).Scan(&synchronous))
	require.Equal(t, 1, foreignKeys)
	require.Equal(t, 5000, busyTimeout)
	require.Equal(t, "wal", journalMode)
	require.Equal(t, 1, synchronous) // NORMAL

	_, err := store.sqlDB.ExecContext(ctx,
		`INSERT INTO session_players (session_id, seat, account) VALUES (?, ?, ?)`, 99, 0, "ghost")
	require.Error(t, err)
	require.ErrorIs(t, classify(err), ErrConstraint)
}

func TestCommitLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	sess := testSession(1, now)

	err := store.Commit(ctx, ports.Commit{
		Session:  sess,
		Balances: []ledger.Balance{{Account: "alice", Amount: 1000}, {Account: "bob", Amount: 860}},
		Journal: []ports.JournalEntry{
			{SessionID: 1, Kind: "tile_purchased", Payload: []byte{0x0a, 0x01, 0x78}, CreatedAt: now},
		},
	})
	require.NoError(t, err)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Sessions, 1)

	got := snap.Sessions[0]
	require.Equal(t, sess.ID, got.ID)
	require.Equal(t, domain.StatusActive, got.Status)
	require.Equal(t, 1, got.TurnIndex)
	require.Equal(t, sess.Players, got.Players)
	require.Equal(t, map[int]string{7: "bob"}, got.Ownership)
	require.True(t, got.CreatedAt.Equal(now))
	require.Equal(t, map[string]int64{"alice": 1000, "bob": 860}, snap.Balances)
}

func TestCommitReplacesSessionRows(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	sess := testSession(1, now)
	require.NoError(t, store.Commit(ctx, ports.Commit{Session: sess}))

	next := sess.Clone()
	next.Players = next.Players[:1]
	next.Ownership = map[int]string{3: "alice"}
	next.TurnIndex = 0
	require.NoError(t, store.Commit(ctx, ports.Commit{Session: next}))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Sessions, 1)
	require.Len(t, snap.Sessions[0].Players, 1)
	require.Equal(t, map[int]string{3: "alice"}, snap.Sessions[0].Ownership)
}

func TestCommitZeroBalanceDeletesRow(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	require.NoError(t, store.Commit(ctx, ports.Commit{Balances: []ledger.Balance{{Account: "alice", Amount: 5}}}))
	require.NoError(t, store.Commit(ctx, ports.Commit{Balances: []ledger.Balance{{Account: "alice", Amount: 0}}}))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Balances)
}

func TestCommitIsAtomic(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	sess := domain.NewSession(1, "alice", time.Now())
	sess.Players = append(sess.Players, domain.Player{Account: "alice"})

	err := store.Commit(ctx, ports.Commit{
		Session:  sess,
		Balances: []ledger.Balance{{Account: "alice", Amount: 10}},
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrConstraint), "err = %v", err)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, snap.Sessions)
	require.Empty(t, snap.Balances)
}

func TestJournalPaging(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.Commit(ctx, ports.Commit{
		Session: domain.NewSession(1, "alice", now),
		Journal: []ports.JournalEntry{
			{SessionID: 1, Kind: "session_created", Payload: []byte{1}, CreatedAt: now},
			{SessionID: 0, Kind: "tokens_transferred", Payload: []byte{2}, CreatedAt: now},
			{SessionID: 1, Kind: "player_joined", Payload: []byte{3}, CreatedAt: now},
			{SessionID: 1, Kind: "session_started", Payload: []byte{4}, CreatedAt: now},
		},
	}))

	first, err := store.Journal(ctx, 1, 0, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, "session_created", first[0].Kind)
	require.Equal(t, "player_joined", first[1].Kind)

	rest, err := store.Journal(ctx, 1, first[1].Seq, 0)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, "session_started", rest[0].Kind)
	require.Equal(t, []byte{4}, rest[0].Payload)
}

func TestCommitHonorsCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, store.Commit(ctx, ports.Commit{}), context.Canceled)
}
