package bot

import (
	"fmt"
	"math/rand"
	"strings"
)

// Level selects a purchasing strategy.
type Level int

const (
	LevelCautious Level = iota
	LevelRandom
	LevelCareful
	LevelGreedy
)

func (l Level) String() string {
	switch l {
	case LevelCautious:
		return "cautious"
	case LevelRandom:
		return "random"
	case LevelCareful:
		return "careful"
	case LevelGreedy:
		return "greedy"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a difficulty name to a Level.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cautious", "easy":
		return LevelCautious, nil
	case "random":
		return LevelRandom, nil
	case "careful", "medium", "":
		return LevelCareful, nil
	case "greedy", "hard":
		return LevelGreedy, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", name)
	}
}

// NewBrain creates a strategy for level. rng is only used by LevelRandom.
func NewBrain(level Level, rng *rand.Rand) (Brain, error) {
	switch level {
	case LevelCautious:
		return CautiousBot{}, nil
	case LevelRandom:
		if rng == nil {
			return nil, fmt.Errorf("random bot needs a source")
		}
		return &CoinFlipBot{P: 0.5, Rng: rng}, nil
	case LevelCareful:
		return CarefulBot{Tuning: DefaultTuning}, nil
	case LevelGreedy:
		return GreedyBot{}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
