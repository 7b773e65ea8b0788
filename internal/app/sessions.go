package app

import (
	"context"

	"monopoly/internal/domain"
	"monopoly/internal/ledger"
)

// CreateSession opens a waiting session seated with caller and returns its id.
func (e *Engine) CreateSession(ctx context.Context, caller string) (uint64, []Event, error) {
	if caller == "" {
		return 0, nil, ErrInvalidAccount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s := domain.NewSession(e.registry.NextID(), caller, e.now().UTC())
	events := []Event{{
		Kind:       EventSessionCreated,
		SessionID:  s.ID,
		Payload:    SessionCreatedPayload{Creator: caller},
		Recipients: s.Accounts(),
	}}
	if err := e.commit(ctx, s, nil, events); err != nil {
		return 0, nil, err
	}
	return s.ID, events, nil
}

// JoinSession seats caller in a waiting session with a free seat.
func (e *Engine) JoinSession(ctx context.Context, id uint64, caller string) ([]Event, error) {
	if caller == "" {
		return nil, ErrInvalidAccount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.session(id)
	if err != nil {
		return nil, err
	}
	if s.Status != domain.StatusWaiting {
		return nil, ErrInvalidStatus
	}
	if s.IsFull() {
		return nil, ErrSessionFull
	}
	if s.Seat(caller) >= 0 {
		return nil, ErrAlreadyJoined
	}

	s.Players = append(s.Players, domain.Player{Account: caller})
	s.UpdatedAt = e.now().UTC()
	events := []Event{{
		Kind:       EventPlayerJoined,
		SessionID:  s.ID,
		Payload:    PlayerJoinedPayload{Account: caller, Seat: len(s.Players) - 1},
		Recipients: s.Accounts(),
	}}
	if err := e.commit(ctx, s, nil, events); err != nil {
		return nil, err
	}
	return events, nil
}

// StartSession activates a waiting session and mints the starting balance to every player.
// Any caller may start a session; the mints and the status change commit together.
func (e *Engine) StartSession(ctx context.Context, id uint64, caller string) ([]Event, error) {
	if caller == "" {
		return nil, ErrInvalidAccount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.session(id)
	if err != nil {
		return nil, err
	}
	if s.Status != domain.StatusWaiting {
		return nil, ErrInvalidStatus
	}
	if len(s.Players) < domain.MinPlayersToStart {
		return nil, ErrInsufficientPlayers
	}

	s.Status = domain.StatusActive
	s.TurnIndex = 0
	s.UpdatedAt = e.now().UTC()

	accounts := s.Accounts()
	events := make([]Event, 0, len(accounts)+1)
	events = append(events, Event{
		Kind:       EventSessionStarted,
		SessionID:  s.ID,
		Payload:    SessionStartedPayload{Players: accounts, FirstTurn: s.CurrentPlayer()},
		Recipients: accounts,
	})
	for _, account := range accounts {
		events = append(events, Event{
			Kind:       EventTokensMinted,
			SessionID:  s.ID,
			Payload:    TokensMintedPayload{Account: account, Amount: e.startingBalance},
			Recipients: []string{account},
		})
	}

	mint := func(tx *ledger.Tx) error {
		for _, account := range accounts {
			if err := tx.Mint(e.id, account, e.startingBalance); err != nil {
				return err
			}
		}
		return nil
	}
	if err := e.commit(ctx, s, mint, events); err != nil {
		return nil, err
	}
	return events, nil
}
