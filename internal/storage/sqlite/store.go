// Package sqlite provides a SQLite-backed session store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"monopoly/internal/domain"
	"monopoly/internal/ports"
	"monopoly/internal/storage/sqlite/migrations"
	"monopoly/internal/storage/sqlitemigrate"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// ErrConstraint reports a commit rejected by a schema constraint.
var ErrConstraint = errors.New("storage constraint violated")

const defaultJournalLimit = 100

// Store persists sessions, balances and the event journal in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite store at path and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Commit writes the session, the touched balances and the journal entries in one transaction.
func (s *Store) Commit(ctx context.Context, c ports.Commit) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if c.Session != nil {
		if err := putSession(ctx, tx, c.Session); err != nil {
			return classify(err)
		}
	}
	for _, b := range c.Balances {
		if err := putBalance(ctx, tx, b.Account, b.Amount); err != nil {
			return classify(fmt.Errorf("put balance %s: %w", b.Account, err))
		}
	}
	for _, entry := range c.Journal {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events (session_id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
			int64(entry.SessionID), entry.Kind, entry.Payload, toMillis(entry.CreatedAt),
		); err != nil {
			return classify(fmt.Errorf("append event %s: %w", entry.Kind, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// putSession replaces the session row and all of its player and ownership rows.
func putSession(ctx context.Context, tx *sql.Tx, sess *domain.Session) error {
	id := int64(sess.ID)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, status, turn_index, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status = excluded.status,
		   turn_index = excluded.turn_index,
		   updated_at = excluded.updated_at`,
		id, string(sess.Status), sess.TurnIndex, toMillis(sess.CreatedAt), toMillis(sess.UpdatedAt),
	); err != nil {
		return fmt.Errorf("put session %d: %w", sess.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_players WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear players %d: %w", sess.ID, err)
	}
	for seat, p := range sess.Players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_players (session_id, seat, account, position, has_rolled) VALUES (?, ?, ?, ?, ?)`,
			id, seat, p.Account, p.Position, p.HasRolled,
		); err != nil {
			return fmt.Errorf("put player %d/%d: %w", sess.ID, seat, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tile_ownership WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("clear ownership %d: %w", sess.ID, err)
	}
	for tile, account := range sess.Ownership {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tile_ownership (session_id, tile, account) VALUES (?, ?, ?)`,
			id, tile, account,
		); err != nil {
			return fmt.Errorf("put tile %d/%d: %w", sess.ID, tile, err)
		}
	}
	return nil
}

func putBalance(ctx context.Context, tx *sql.Tx, account string, amount int64) error {
	if amount == 0 {
		_, err := tx.ExecContext(ctx, `DELETE FROM balances WHERE account = ?`, account)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO balances (account, amount) VALUES (?, ?)
		 ON CONFLICT(account) DO UPDATE SET amount = excluded.amount`,
		account, amount,
	)
	return err
}

// Load reads every session and balance.
func (s *Store) Load(ctx context.Context) (ports.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return ports.Snapshot{}, err
	}
	if s == nil || s.sqlDB == nil {
		return ports.Snapshot{}, fmt.Errorf("storage is not configured")
	}

	sessions, byID, err := s.loadSessions(ctx)
	if err != nil {
		return ports.Snapshot{}, err
	}
	if err := s.loadPlayers(ctx, byID); err != nil {
		return ports.Snapshot{}, err
	}
	if err := s.loadOwnership(ctx, byID); err != nil {
		return ports.Snapshot{}, err
	}
	balances, err := s.loadBalances(ctx)
	if err != nil {
		return ports.Snapshot{}, err
	}
	return ports.Snapshot{Sessions: sessions, Balances: balances}, nil
}

func (s *Store) loadSessions(ctx context.Context) ([]*domain.Session, map[int64]*domain.Session, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, status, turn_index, created_at, updated_at FROM sessions ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	byID := make(map[int64]*domain.Session)
	for rows.Next() {
		var (
			id                   int64
			status               string
			turnIndex            int
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&id, &status, &turnIndex, &createdAt, &updatedAt); err != nil {
			return nil, nil, fmt.Errorf("scan session: %w", err)
		}
		sess := &domain.Session{
			ID:        uint64(id),
			Status:    domain.Status(status),
			TurnIndex: turnIndex,
			Ownership: make(map[int]string),
			CreatedAt: fromMillis(createdAt),
			UpdatedAt: fromMillis(updatedAt),
		}
		sessions = append(sessions, sess)
		byID[id] = sess
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, byID, nil
}

func (s *Store) loadPlayers(ctx context.Context, byID map[int64]*domain.Session) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT session_id, account, position, has_rolled FROM session_players ORDER BY session_id, seat`)
	if err != nil {
		return fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sessionID int64
			p         domain.Player
		)
		if err := rows.Scan(&sessionID, &p.Account, &p.Position, &p.HasRolled); err != nil {
			return fmt.Errorf("scan player: %w", err)
		}
		sess, ok := byID[sessionID]
		if !ok {
			return fmt.Errorf("player row for missing session %d", sessionID)
		}
		sess.Players = append(sess.Players, p)
	}
	return rows.Err()
}

func (s *Store) loadOwnership(ctx context.Context, byID map[int64]*domain.Session) error {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT session_id, tile, account FROM tile_ownership`)
	if err != nil {
		return fmt.Errorf("query ownership: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sessionID int64
			tile      int
			account   string
		)
		if err := rows.Scan(&sessionID, &tile, &account); err != nil {
			return fmt.Errorf("scan ownership: %w", err)
		}
		sess, ok := byID[sessionID]
		if !ok {
			return fmt.Errorf("ownership row for missing session %d", sessionID)
		}
		sess.Ownership[tile] = account
	}
	return rows.Err()
}

func (s *Store) loadBalances(ctx context.Context) (map[string]int64, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT account, amount FROM balances`)
	if err != nil {
		return nil, fmt.Errorf("query balances: %w", err)
	}
	defer rows.Close()

	balances := make(map[string]int64)
	for rows.Next() {
		var (
			account string
			amount  int64
		)
		if err := rows.Scan(&account, &amount); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		balances[account] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}
	return balances, nil
}

// Journal returns up to limit events of sessionID with seq greater than afterSeq.
func (s *Store) Journal(ctx context.Context, sessionID uint64, afterSeq int64, limit int) ([]ports.JournalEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = defaultJournalLimit
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seq, session_id, kind, payload, created_at
		 FROM events
		 WHERE session_id = ? AND seq > ?
		 ORDER BY seq
		 LIMIT ?`,
		int64(sessionID), afterSeq, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []ports.JournalEntry
	for rows.Next() {
		var (
			entry     ports.JournalEntry
			sid       int64
			createdAt int64
		)
		if err := rows.Scan(&entry.Seq, &sid, &entry.Kind, &entry.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		entry.SessionID = uint64(sid)
		entry.CreatedAt = fromMillis(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// classify tags SQLite constraint failures with ErrConstraint.
func classify(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY,
			sqlite3lib.SQLITE_CONSTRAINT_UNIQUE,
			sqlite3lib.SQLITE_CONSTRAINT_CHECK,
			sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %w", ErrConstraint, err)
		}
	}
	return err
}

var (
	_ ports.SessionStore  = (*Store)(nil)
	_ ports.JournalReader = (*Store)(nil)
)
