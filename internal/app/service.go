package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"monopoly/internal/dice"
	"monopoly/internal/domain"
	"monopoly/internal/ledger"
	"monopoly/internal/ports"
)

// Publisher receives events after the invocation that produced them has committed.
type Publisher interface {
	Publish(ctx context.Context, events []Event)
}

// Engine runs board-game use-cases over the session registry and the token ledger.
//
// Every mutating entry point holds the write lock for its whole duration, so
// invocations form one total order. Reads share the read lock and only ever
// see committed sessions.
type Engine struct {
	mu sync.RWMutex

	id              string
	registry        *domain.Registry
	ledger          *ledger.Ledger
	board           domain.Board
	roller          dice.Roller
	startingBalance int64
	store           ports.SessionStore
	publisher       Publisher
	now             func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithBoard replaces the default sixteen-tile board.
func WithBoard(board domain.Board) Option {
	return func(e *Engine) { e.board = board }
}

// WithRoller replaces the crypto-seeded single die.
func WithRoller(roller dice.Roller) Option {
	return func(e *Engine) { e.roller = roller }
}

// WithStartingBalance sets the amount minted to each player on start.
func WithStartingBalance(amount int64) Option {
	return func(e *Engine) { e.startingBalance = amount }
}

// WithStore persists every commit through store.
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithPublisher delivers committed events to p.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithClock overrides time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine constructs an engine acting as identity against l.
// The ledger owner must register identity as minter before any session can start.
func NewEngine(identity string, l *ledger.Ledger, opts ...Option) (*Engine, error) {
	if identity == "" {
		return nil, errors.New("engine identity is required")
	}
	if l == nil {
		return nil, errors.New("ledger is required")
	}
	e := &Engine{
		id:              identity,
		registry:        domain.NewRegistry(),
		ledger:          l,
		board:           domain.DefaultBoard(),
		startingBalance: StartingBalance,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.board.Validate(); err != nil {
		return nil, fmt.Errorf("invalid board: %w", err)
	}
	if e.startingBalance <= 0 {
		return nil, errors.New("starting balance must be positive")
	}
	if e.roller == nil {
		roller, err := dice.NewRandRoller(dice.DefaultSpec(), nil)
		if err != nil {
			return nil, err
		}
		e.roller = roller
	}
	return e, nil
}

// Identity returns the account the engine mints under and collects payments into.
func (e *Engine) Identity() string {
	return e.id
}

// Board returns the board every session plays on.
func (e *Engine) Board() domain.Board {
	return e.board
}

// Restore rebuilds the registry and ledger balances from the store.
// It must run before the engine serves traffic.
func (e *Engine) Restore(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	snap, err := e.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	registry := domain.NewRegistry()
	for _, s := range snap.Sessions {
		if !registry.Put(s) {
			return fmt.Errorf("restore session %d: ids must be contiguous from 1", s.ID)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ledger.Restore(snap.Balances); err != nil {
		return fmt.Errorf("restore balances: %w", err)
	}
	e.registry = registry
	return nil
}

// commit applies one invocation: staged ledger changes, the persisted record and
// the registry swap happen together or not at all. Callers hold e.mu.
// Admitted work is never cancelled: ctx keeps its values but drops cancellation.
func (e *Engine) commit(ctx context.Context, next *domain.Session, stage func(tx *ledger.Tx) error, events []Event) error {
	ctx = context.WithoutCancel(ctx)
	err := e.ledger.Update(func(tx *ledger.Tx) error {
		if stage != nil {
			if err := stage(tx); err != nil {
				return err
			}
		}
		if e.store == nil {
			return nil
		}
		journal, err := e.journal(events)
		if err != nil {
			return err
		}
		if err := e.store.Commit(ctx, ports.Commit{Session: next, Balances: tx.Touched(), Journal: journal}); err != nil {
			return fmt.Errorf("store commit: %w", err)
		}
		return nil
	})
	if err != nil {
		return translateErr(err)
	}
	if next != nil {
		e.registry.Put(next)
	}
	if e.publisher != nil && len(events) > 0 {
		e.publisher.Publish(ctx, events)
	}
	return nil
}

func (e *Engine) journal(events []Event) ([]ports.JournalEntry, error) {
	at := e.now().UTC()
	entries := make([]ports.JournalEntry, 0, len(events))
	for _, ev := range events {
		payload, err := MarshalEvent(ev)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ports.JournalEntry{
			SessionID: ev.SessionID,
			Kind:      string(ev.Kind),
			Payload:   payload,
			CreatedAt: at,
		})
	}
	return entries, nil
}

// session returns a mutable copy of the committed session id.
func (e *Engine) session(id uint64) (*domain.Session, error) {
	s, ok := e.registry.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}
