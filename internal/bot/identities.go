package bot

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// Identity is a bot profile as stored in the identities file.
type Identity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "cautious", "random", "careful", "greedy"
}

// LoadIdentities reads bot profiles from a JSON array at path.
func LoadIdentities(path string) ([]Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot identities: %w", err)
	}
	var ids []Identity
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	for i, id := range ids {
		if id.UserID == "" {
			return nil, fmt.Errorf("bot identity %d has no user_id", i)
		}
	}
	return ids, nil
}

// DefaultIdentities is the roster used when no identities file is given.
func DefaultIdentities() []Identity {
	return []Identity{
		{UserID: "bot-ada", DisplayName: "Ada", Difficulty: "careful"},
		{UserID: "bot-bo", DisplayName: "Bo", Difficulty: "greedy"},
		{UserID: "bot-cy", DisplayName: "Cy", Difficulty: "random"},
		{UserID: "bot-di", DisplayName: "Di", Difficulty: "cautious"},
	}
}

// NewAgents builds one agent per identity.
func NewAgents(ids []Identity, rng *rand.Rand) ([]*Agent, error) {
	agents := make([]*Agent, 0, len(ids))
	for _, id := range ids {
		level, err := ParseLevel(id.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("bot %s: %w", id.UserID, err)
		}
		brain, err := NewBrain(level, rng)
		if err != nil {
			return nil, fmt.Errorf("bot %s: %w", id.UserID, err)
		}
		name := id.DisplayName
		if name == "" {
			name = id.UserID
		}
		agents = append(agents, &Agent{ID: id.UserID, Name: name, Strategy: brain})
	}
	return agents, nil
}
