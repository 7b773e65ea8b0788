package bot

import (
	"context"
	"errors"
	"fmt"

	"monopoly/internal/app"
)

// ErrNotMyTurn is returned by Play when the session is waiting on someone else.
var ErrNotMyTurn = errors.New("bot: not this agent's turn")

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Turn reports what an agent did on its turn.
type Turn struct {
	Roll     int
	Position int
	Bought   bool
	Price    int64
}

// Play rolls for the agent and, if the strategy agrees, buys the tile it lands on.
func (a *Agent) Play(ctx context.Context, g Game, sessionID uint64) (Turn, error) {
	info, err := g.SessionInfo(ctx, sessionID)
	if err != nil {
		return Turn{}, err
	}
	if info.CurrentPlayer != a.ID {
		return Turn{}, ErrNotMyTurn
	}

	roll, _, err := g.RollDice(ctx, sessionID, a.ID)
	if err != nil {
		return Turn{}, fmt.Errorf("roll: %w", err)
	}
	view, err := g.PlayerView(ctx, sessionID, a.ID)
	if err != nil {
		return Turn{}, err
	}
	turn := Turn{Roll: roll, Position: view.Position}

	offer, ok, err := a.offer(ctx, g, sessionID, view)
	if err != nil || !ok || !a.Strategy.ShouldBuy(offer) {
		return turn, err
	}
	if _, err := g.BuyTile(ctx, sessionID, offer.Tile, a.ID); err != nil {
		// Lost a race or misjudged the price; the roll still stands.
		if app.CodeOf(err) == app.CodeInternal {
			return turn, fmt.Errorf("buy tile %d: %w", offer.Tile, err)
		}
		return turn, nil
	}
	turn.Bought = true
	turn.Price = offer.Price
	return turn, nil
}

func (a *Agent) offer(ctx context.Context, g Game, sessionID uint64, view app.PlayerView) (Offer, bool, error) {
	board := g.Board()
	price, ok := board.Price(view.Position)
	if !ok {
		return Offer{}, false, nil
	}
	info, err := g.SessionInfo(ctx, sessionID)
	if err != nil {
		return Offer{}, false, err
	}
	if _, taken := info.Ownership[view.Position]; taken {
		return Offer{}, false, nil
	}
	free := 0
	for tile := 0; tile < board.Size; tile++ {
		if _, buyable := board.Price(tile); !buyable {
			continue
		}
		if _, taken := info.Ownership[tile]; !taken {
			free++
		}
	}
	return Offer{
		Tile:    view.Position,
		Price:   price,
		Balance: view.Balance,
		Owned:   len(view.OwnedTiles),
		Free:    free,
	}, true, nil
}
