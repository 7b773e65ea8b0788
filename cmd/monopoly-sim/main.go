// Command monopoly-sim seats bots at in-memory tables and plays them out.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"monopoly/internal/app"
	"monopoly/internal/bot"
	"monopoly/internal/config"
	"monopoly/internal/dice"
	"monopoly/internal/ledger"
)

const simOwner = "sim-owner"

func main() {
	var (
		games    int
		rounds   int
		seed     int64
		botsPath string
		gamePath string
		verbose  bool
	)
	flag.IntVar(&games, "games", 10, "number of tables to play")
	flag.IntVar(&rounds, "rounds", 20, "full rotations per table")
	flag.Int64Var(&seed, "seed", 1, "seed for dice and random bots")
	flag.StringVar(&botsPath, "bots", "", "bot identities JSON (default: built-in roster)")
	flag.StringVar(&gamePath, "game-config", "", "game config JSON (default: built-in board)")
	flag.BoolVar(&verbose, "v", false, "log every turn")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if !verbose {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, games, rounds, seed, botsPath, gamePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, games, rounds int, seed int64, botsPath, gamePath string) error {
	gameCfg, err := config.LoadGameConfig(gamePath)
	if err != nil {
		return err
	}
	ids := bot.DefaultIdentities()
	if botsPath != "" {
		if ids, err = bot.LoadIdentities(botsPath); err != nil {
			return err
		}
	}

	rng := rand.New(rand.NewSource(seed))
	agents, err := bot.NewAgents(ids, rng)
	if err != nil {
		return err
	}
	roller, err := dice.NewRandRoller(gameCfg.DiceSpec(), rng)
	if err != nil {
		return err
	}
	l := ledger.New(simOwner, ledger.DefaultName, ledger.DefaultSymbol)
	if err := l.SetMinter(simOwner, app.DefaultEngineID); err != nil {
		return err
	}
	engine, err := app.NewEngine(app.DefaultEngineID, l,
		app.WithBoard(gameCfg.Board()),
		app.WithRoller(roller),
		app.WithStartingBalance(gameCfg.StartingBalance),
	)
	if err != nil {
		return err
	}

	tiles := make(map[string]int)
	for g := 0; g < games; g++ {
		log.Info().Msgf("starting game %d of %d...", g+1, games)
		table, err := bot.Open(ctx, engine, engine, agents)
		if err != nil {
			return err
		}
		err = table.Run(ctx, rounds, func(agent string, turn bot.Turn) {
			log.Debug().Str("bot", agent).Int("roll", turn.Roll).Int("tile", turn.Position).Bool("bought", turn.Bought).Msg("turn")
		})
		if err != nil {
			return err
		}
		info, err := engine.SessionInfo(ctx, table.SessionID)
		if err != nil {
			return err
		}
		for _, owner := range info.Ownership {
			tiles[owner]++
		}
		log.Info().Msgf("completed game %d with %d tiles sold", g+1, len(info.Ownership))
	}

	sort.Slice(agents, func(i, j int) bool { return l.BalanceOf(agents[i].ID) > l.BalanceOf(agents[j].ID) })
	fmt.Printf("%-12s %-10s %8s %6s\n", "bot", "strategy", "tokens", "tiles")
	for _, a := range agents {
		fmt.Printf("%-12s %-10T %8d %6d\n", a.Name, a.Strategy, l.BalanceOf(a.ID), tiles[a.ID])
	}
	fmt.Printf("treasury %d of %d minted\n", l.BalanceOf(app.DefaultEngineID), l.TotalSupply())
	return nil
}
