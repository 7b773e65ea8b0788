package bot

import (
	"context"

	"monopoly/internal/app"
	"monopoly/internal/domain"
)

// Game is the slice of the engine an agent plays through.
type Game interface {
	Board() domain.Board
	SessionInfo(ctx context.Context, id uint64) (app.SessionInfo, error)
	PlayerView(ctx context.Context, id uint64, account string) (app.PlayerView, error)
	RollDice(ctx context.Context, id uint64, caller string) (int, []app.Event, error)
	BuyTile(ctx context.Context, id uint64, tile int, caller string) ([]app.Event, error)
}

// Offer describes the tile a bot has just landed on.
type Offer struct {
	Tile    int
	Price   int64
	Balance int64
	Owned   int // tiles the bot already holds in this session
	Free    int // purchasable tiles nobody owns yet, including this one
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	ShouldBuy(offer Offer) bool
}

var _ Game = (*app.Engine)(nil)
var _ Seater = (*app.Engine)(nil)
