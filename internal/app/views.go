package app

import (
	"context"
	"time"

	"monopoly/internal/domain"
)

// PlayerView is one account's standing in a session.
type PlayerView struct {
	Account    string
	Balance    int64
	Position   int
	HasRolled  bool
	OwnedTiles []int
	Member     bool // false when account is not seated; only Balance is then set
}

// SessionInfo is a read-only snapshot of a session.
type SessionInfo struct {
	ID            uint64
	Status        domain.Status
	Players       []domain.Player
	TurnIndex     int
	CurrentPlayer string
	Ownership     map[int]string
	BoardSize     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PlayerView returns account's position, roll flag, tiles and global token balance.
func (e *Engine) PlayerView(_ context.Context, id uint64, account string) (PlayerView, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.registry.Get(id)
	if !ok {
		return PlayerView{}, ErrSessionNotFound
	}
	view := PlayerView{Account: account, Balance: e.ledger.BalanceOf(account)}
	seat := s.Seat(account)
	if seat < 0 {
		return view, nil
	}
	p := s.Players[seat]
	view.Member = true
	view.Position = p.Position
	view.HasRolled = p.HasRolled
	view.OwnedTiles = s.OwnedTiles(account)
	return view, nil
}

// SessionInfo returns a copy of the committed session.
func (e *Engine) SessionInfo(_ context.Context, id uint64) (SessionInfo, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, ok := e.registry.Get(id)
	if !ok {
		return SessionInfo{}, ErrSessionNotFound
	}
	c := s.Clone()
	return SessionInfo{
		ID:            c.ID,
		Status:        c.Status,
		Players:       c.Players,
		TurnIndex:     c.TurnIndex,
		CurrentPlayer: c.CurrentPlayer(),
		Ownership:     c.Ownership,
		BoardSize:     e.board.Size,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}, nil
}

// SessionCounter returns the most recently allocated session id.
func (e *Engine) SessionCounter() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.registry.Counter()
}

// Balance reads account's ledger balance.
func (e *Engine) Balance(account string) int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.BalanceOf(account)
}
