package app

import (
	"context"

	"monopoly/internal/domain"
	"monopoly/internal/ledger"
)

// BuyTile sells tile to caller, who must be standing on it.
// The price moves from the buyer to the engine account; ownership is permanent for the session.
func (e *Engine) BuyTile(ctx context.Context, id uint64, tile int, caller string) ([]Event, error) {
	if caller == "" {
		return nil, ErrInvalidAccount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.session(id)
	if err != nil {
		return nil, err
	}
	if s.Status != domain.StatusActive {
		return nil, ErrInvalidStatus
	}
	seat := s.Seat(caller)
	if seat < 0 {
		return nil, ErrNotInSession
	}
	if !e.board.Contains(tile) {
		return nil, ErrInvalidTile
	}
	if s.Players[seat].Position != tile {
		return nil, ErrWrongPosition
	}
	price, forSale := e.board.Price(tile)
	if !forSale {
		return nil, ErrTileNotForSale
	}
	if _, owned := s.Ownership[tile]; owned {
		return nil, ErrAlreadyOwned
	}

	s.Ownership[tile] = caller
	s.Players[seat].HasRolled = false
	s.UpdatedAt = e.now().UTC()

	events := []Event{{
		Kind:       EventTilePurchased,
		SessionID:  s.ID,
		Payload:    TilePurchasedPayload{Account: caller, Tile: tile, Price: price},
		Recipients: s.Accounts(),
	}}
	pay := func(tx *ledger.Tx) error {
		return tx.Transfer(caller, e.id, price)
	}
	if err := e.commit(ctx, s, pay, events); err != nil {
		return nil, err
	}
	return events, nil
}

// Transfer moves amount of caller's tokens to another account.
// It runs through the engine so ledger writes share one order and one commit path.
func (e *Engine) Transfer(ctx context.Context, caller, to string, amount int64) ([]Event, error) {
	if caller == "" || to == "" {
		return nil, ErrInvalidAccount
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	events := []Event{{
		Kind:       EventTokensTransferred,
		Payload:    TokensTransferredPayload{From: caller, To: to, Amount: amount},
		Recipients: []string{caller, to},
	}}
	move := func(tx *ledger.Tx) error {
		return tx.Transfer(caller, to, amount)
	}
	if err := e.commit(ctx, nil, move, events); err != nil {
		return nil, err
	}
	return events, nil
}
