package bot

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"monopoly/internal/app"
	"monopoly/internal/dice"
	"monopoly/internal/ledger"
)

func newEngine(t *testing.T, rolls ...int) (*app.Engine, *ledger.Ledger) {
	t.Helper()
	l := ledger.New("owner", ledger.DefaultName, ledger.DefaultSymbol)
	if err := l.SetMinter("owner", app.DefaultEngineID); err != nil {
		t.Fatalf("set minter: %v", err)
	}
	e, err := app.NewEngine(app.DefaultEngineID, l, app.WithRoller(dice.NewSequence(rolls...)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e, l
}

func TestAgentPlaysTurn(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, 3)
	greedy := &Agent{ID: "greedy", Strategy: GreedyBot{}}
	cautious := &Agent{ID: "cautious", Strategy: CautiousBot{}}

	table, err := Open(ctx, e, e, []*Agent{greedy, cautious})
	if err != nil {
		t.Fatalf("open table: %v", err)
	}

	if _, err := cautious.Play(ctx, e, table.SessionID); !errors.Is(err, ErrNotMyTurn) {
		t.Fatalf("out of turn play err = %v, want ErrNotMyTurn", err)
	}

	turn, err := greedy.Play(ctx, e, table.SessionID)
	if err != nil {
		t.Fatalf("greedy play: %v", err)
	}
	if turn.Roll != 3 || turn.Position != 3 || !turn.Bought || turn.Price != 100 {
		t.Fatalf("greedy turn = %+v", turn)
	}

	// Landing on an owned tile is not an offer.
	turn, err = cautious.Play(ctx, e, table.SessionID)
	if err != nil {
		t.Fatalf("cautious play: %v", err)
	}
	if turn.Bought || turn.Position != 3 {
		t.Fatalf("cautious turn = %+v", turn)
	}

	view, err := e.PlayerView(ctx, table.SessionID, "greedy")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.Balance != app.StartingBalance-100 || len(view.OwnedTiles) != 1 {
		t.Fatalf("greedy view = %+v", view)
	}
}

func TestTableRunConservesSupply(t *testing.T) {
	ctx := context.Background()
	e, l := newEngine(t, 1, 2, 3, 4, 5, 6)
	agents, err := NewAgents(DefaultIdentities(), rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("agents: %v", err)
	}
	table, err := Open(ctx, e, e, agents)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	turns, bought := 0, int64(0)
	err = table.Run(ctx, 10, func(_ string, turn Turn) {
		turns++
		bought += turn.Price
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if turns != 40 {
		t.Fatalf("turns = %d, want 40", turns)
	}

	minted := int64(len(agents)) * app.StartingBalance
	if got := l.TotalSupply(); got != minted {
		t.Fatalf("total supply = %d, want %d", got, minted)
	}
	if got := l.BalanceOf(app.DefaultEngineID); got != bought {
		t.Fatalf("treasury = %d, want %d", got, bought)
	}
	var held int64
	for _, a := range agents {
		held += l.BalanceOf(a.ID)
		if l.BalanceOf(a.ID) < 0 {
			t.Fatalf("%s went negative", a.ID)
		}
	}
	if held+bought != minted {
		t.Fatalf("players %d + treasury %d != minted %d", held, bought, minted)
	}
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	e, _ := newEngine(t, 2)
	table, err := Open(context.Background(), e, e, []*Agent{
		{ID: "a", Strategy: GreedyBot{}},
		{ID: "b", Strategy: GreedyBot{}},
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := table.Run(ctx, 1, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestOpenNeedsTwoAgents(t *testing.T) {
	e, _ := newEngine(t, 1)
	if _, err := Open(context.Background(), e, e, nil); err == nil {
		t.Fatalf("expected error for empty table")
	}
	_, err := Open(context.Background(), e, e, []*Agent{{ID: "solo", Strategy: GreedyBot{}}})
	if !errors.Is(err, app.ErrInsufficientPlayers) {
		t.Fatalf("err = %v, want ErrInsufficientPlayers", err)
	}
}

func TestLoadIdentities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bots.json")
	body := `[{"user_id":"bot-1","display_name":"One","difficulty":"greedy"},{"user_id":"bot-2","difficulty":"easy"}]`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	ids, err := LoadIdentities(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	agents, err := NewAgents(ids, nil)
	if err != nil {
		t.Fatalf("agents: %v", err)
	}
	if len(agents) != 2 || agents[0].Name != "One" || agents[1].Name != "bot-2" {
		t.Fatalf("agents = %+v", agents)
	}
	if _, ok := agents[1].Strategy.(CautiousBot); !ok {
		t.Fatalf("easy bot strategy = %T", agents[1].Strategy)
	}

	if err := os.WriteFile(path, []byte(`[{"display_name":"nobody"}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadIdentities(path); err == nil {
		t.Fatalf("expected error for identity without user_id")
	}
}
