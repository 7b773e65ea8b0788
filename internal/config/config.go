package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"monopoly/internal/dice"
	"monopoly/internal/domain"
)

// DefaultStartingBalance is minted to each player when a session starts.
const DefaultStartingBalance int64 = 1000

// GameConfig holds the engine-wide rules loaded from JSON.
// Zero values fall back to the defaults.
type GameConfig struct {
	BoardSize       int     `json:"board_size"`
	TilePrices      []int64 `json:"tile_prices"`
	StartingBalance int64   `json:"starting_balance"`
	DiceCount       int     `json:"dice_count"`
	DieFaces        int     `json:"die_faces"`
}

// Default returns the standard sixteen-tile, single-die rules.
func Default() GameConfig {
	board := domain.DefaultBoard()
	spec := dice.DefaultSpec()
	return GameConfig{
		BoardSize:       board.Size,
		TilePrices:      board.Prices,
		StartingBalance: DefaultStartingBalance,
		DiceCount:       spec.Count,
		DieFaces:        spec.Faces,
	}
}

// LoadGameConfig reads the game configuration from path.
// An empty path or a missing file yields the defaults.
func LoadGameConfig(path string) (GameConfig, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return GameConfig{}, fmt.Errorf("failed to read game config: %w", err)
	}
	return ParseGameConfig(data)
}

// ParseGameConfig decodes and validates a JSON game configuration.
func ParseGameConfig(data []byte) (GameConfig, error) {
	var c GameConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return GameConfig{}, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return GameConfig{}, err
	}
	return c, nil
}

func (c *GameConfig) applyDefaults() {
	def := Default()
	if c.BoardSize == 0 {
		c.BoardSize = def.BoardSize
	}
	// A custom board size needs its own price table.
	if len(c.TilePrices) == 0 && c.BoardSize == def.BoardSize {
		c.TilePrices = def.TilePrices
	}
	if c.StartingBalance == 0 {
		c.StartingBalance = def.StartingBalance
	}
	if c.DiceCount == 0 {
		c.DiceCount = def.DiceCount
	}
	if c.DieFaces == 0 {
		c.DieFaces = def.DieFaces
	}
}

// Validate checks that the board and dice are playable.
func (c GameConfig) Validate() error {
	if err := c.Board().Validate(); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}
	if err := c.DiceSpec().Validate(); err != nil {
		return fmt.Errorf("invalid dice: %w", err)
	}
	if c.StartingBalance <= 0 {
		return fmt.Errorf("starting_balance must be positive, got %d", c.StartingBalance)
	}
	return nil
}

func (c GameConfig) Board() domain.Board {
	return domain.Board{Size: c.BoardSize, Prices: append([]int64(nil), c.TilePrices...)}
}

func (c GameConfig) DiceSpec() dice.Spec {
	return dice.Spec{Count: c.DiceCount, Faces: c.DieFaces}
}
