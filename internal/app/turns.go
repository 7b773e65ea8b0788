package app

import (
	"context"
	"fmt"

	"monopoly/internal/domain"
)

// RollDice moves the current player by a fresh roll and passes the turn.
// The turn advances whether or not the player buys afterwards.
func (e *Engine) RollDice(ctx context.Context, id uint64, caller string) (int, []Event, error) {
	if caller == "" {
		return 0, nil, ErrInvalidAccount
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.session(id)
	if err != nil {
		return 0, nil, err
	}
	if s.Status != domain.StatusActive {
		return 0, nil, ErrInvalidStatus
	}
	if s.CurrentPlayer() != caller {
		return 0, nil, ErrNotYourTurn
	}

	value := e.roller.Roll()
	if value <= 0 {
		return 0, nil, &Error{Code: CodeInternal, Message: fmt.Sprintf("roller produced %d", value)}
	}

	player := &s.Players[s.TurnIndex]
	player.Position = e.board.Advance(player.Position, value)
	player.HasRolled = true
	position := player.Position
	s.AdvanceTurn()
	s.UpdatedAt = e.now().UTC()

	events := []Event{{
		Kind:      EventDiceRolled,
		SessionID: s.ID,
		Payload: DiceRolledPayload{
			Account:  caller,
			Value:    value,
			Position: position,
			NextTurn: s.CurrentPlayer(),
		},
		Recipients: s.Accounts(),
	}}
	if err := e.commit(ctx, s, nil, events); err != nil {
		return 0, nil, err
	}
	return value, events, nil
}
