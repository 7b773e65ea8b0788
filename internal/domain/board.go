package domain

import (
	"errors"
	"fmt"
)

// DefaultBoardSize is the number of tiles on the board. Clients render the same count.
const DefaultBoardSize = 16

// StartTile is where every player begins. It is never for sale.
const StartTile = 0

// defaultTilePrices is indexed by tile id; a zero price means the tile cannot be bought.
var defaultTilePrices = []int64{0, 60, 60, 100, 100, 120, 140, 140, 160, 180, 180, 200, 220, 220, 240, 260}

var (
	ErrBoardTooSmall  = errors.New("board must have at least two tiles")
	ErrPriceTableSize = errors.New("price table length must match board size")
	ErrNegativePrice  = errors.New("tile prices must not be negative")
)

// Board is the fixed ring of tiles shared by every session of an engine.
type Board struct {
	Size   int
	Prices []int64
}

// DefaultBoard returns the standard sixteen-tile board.
func DefaultBoard() Board {
	return Board{
		Size:   DefaultBoardSize,
		Prices: append([]int64(nil), defaultTilePrices...),
	}
}

// Validate checks the board size and price table.
func (b Board) Validate() error {
	if b.Size < 2 {
		return ErrBoardTooSmall
	}
	if len(b.Prices) != b.Size {
		return fmt.Errorf("%w: got %d prices for %d tiles", ErrPriceTableSize, len(b.Prices), b.Size)
	}
	for tile, price := range b.Prices {
		if price < 0 {
			return fmt.Errorf("%w: tile %d", ErrNegativePrice, tile)
		}
	}
	return nil
}

// Contains reports whether tile is on the board.
func (b Board) Contains(tile int) bool {
	return tile >= 0 && tile < b.Size
}

// Price returns the purchase price of tile and whether it is for sale.
func (b Board) Price(tile int) (int64, bool) {
	if !b.Contains(tile) || tile == StartTile {
		return 0, false
	}
	price := b.Prices[tile]
	return price, price > 0
}

// Advance returns the tile reached by moving steps forward from position.
func (b Board) Advance(position, steps int) int {
	next := (position + steps) % b.Size
	if next < 0 {
		next += b.Size
	}
	return next
}
