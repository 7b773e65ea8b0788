package ports

import (
	"context"
	"time"

	"monopoly/internal/domain"
	"monopoly/internal/ledger"
)

// JournalEntry is one encoded engine event appended to the event journal.
type JournalEntry struct {
	Seq       int64  // assigned by the store
	SessionID uint64 // 0 for ledger-only events
	Kind      string
	Payload   []byte
	CreatedAt time.Time
}

// Commit is everything one engine invocation changed.
type Commit struct {
	// Session is the full post-invocation session, nil when no session changed.
	Session  *domain.Session
	Balances []ledger.Balance
	Journal  []JournalEntry
}

// Snapshot is the persisted state needed to rebuild an engine.
type Snapshot struct {
	Sessions []*domain.Session // ascending by ID
	Balances map[string]int64
}

// SessionStore persists engine state.
type SessionStore interface {
	// Commit writes c atomically: either every record lands or none does.
	Commit(ctx context.Context, c Commit) error

	// Load returns every persisted session and balance.
	Load(ctx context.Context) (Snapshot, error)
}

// JournalReader exposes the event history of a session.
type JournalReader interface {
	// Journal returns entries for sessionID in commit order, after seq afterSeq.
	Journal(ctx context.Context, sessionID uint64, afterSeq int64, limit int) ([]JournalEntry, error)
}
