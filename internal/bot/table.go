package bot

import (
	"context"
	"errors"
	"fmt"

	"monopoly/internal/app"
)

// Seater is the lobby half of the engine a table needs.
type Seater interface {
	CreateSession(ctx context.Context, caller string) (uint64, []app.Event, error)
	JoinSession(ctx context.Context, id uint64, caller string) ([]app.Event, error)
	StartSession(ctx context.Context, id uint64, caller string) ([]app.Event, error)
}

// Table seats a group of agents in one session and plays rounds.
type Table struct {
	SessionID uint64
	agents    map[string]*Agent
	game      Game
}

// Open creates a session for agents[0], seats the rest and starts it.
func Open(ctx context.Context, lobby Seater, g Game, agents []*Agent) (*Table, error) {
	if len(agents) == 0 {
		return nil, errors.New("bot: no agents to seat")
	}
	id, _, err := lobby.CreateSession(ctx, agents[0].ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	byID := make(map[string]*Agent, len(agents))
	byID[agents[0].ID] = agents[0]
	for _, a := range agents[1:] {
		if _, err := lobby.JoinSession(ctx, id, a.ID); err != nil {
			return nil, fmt.Errorf("seat %s: %w", a.ID, err)
		}
		byID[a.ID] = a
	}
	if _, err := lobby.StartSession(ctx, id, agents[0].ID); err != nil {
		return nil, fmt.Errorf("start session %d: %w", id, err)
	}
	return &Table{SessionID: id, agents: byID, game: g}, nil
}

// Step plays one turn for whichever agent is up.
func (t *Table) Step(ctx context.Context) (string, Turn, error) {
	info, err := t.game.SessionInfo(ctx, t.SessionID)
	if err != nil {
		return "", Turn{}, err
	}
	a, ok := t.agents[info.CurrentPlayer]
	if !ok {
		return info.CurrentPlayer, Turn{}, fmt.Errorf("bot: %s is not seated at this table", info.CurrentPlayer)
	}
	turn, err := a.Play(ctx, t.game, t.SessionID)
	return a.ID, turn, err
}

// Run plays rounds full rotations, calling observe after every turn when non-nil.
func (t *Table) Run(ctx context.Context, rounds int, observe func(agent string, turn Turn)) error {
	for i := 0; i < rounds*len(t.agents); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		id, turn, err := t.Step(ctx)
		if err != nil {
			return err
		}
		if observe != nil {
			observe(id, turn)
		}
	}
	return nil
}
