package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"monopoly/internal/app"
	"monopoly/internal/config"
	"monopoly/internal/dice"
	"monopoly/internal/ledger"
	"monopoly/internal/storage/sqlite"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule builds the game engine from the runtime env and registers RPCs and hooks.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	gameCfg, err := config.LoadGameConfig(env[EnvGameConfig])
	if err != nil {
		return err
	}

	owner := envOr(env, EnvLedgerOwner, defaultLedgerOwner)
	engineID := envOr(env, EnvEngineID, app.DefaultEngineID)
	l := ledger.New(owner, ledger.DefaultName, ledger.DefaultSymbol)
	if err := l.SetMinter(owner, engineID); err != nil {
		return fmt.Errorf("register engine as minter: %w", err)
	}

	roller, err := dice.NewRandRoller(gameCfg.DiceSpec(), nil)
	if err != nil {
		return err
	}
	wallets := NewNakamaEconomyAdapter(nk)
	opts := []app.Option{
		app.WithBoard(gameCfg.Board()),
		app.WithRoller(roller),
		app.WithStartingBalance(gameCfg.StartingBalance),
		app.WithPublisher(NewEventPublisher(nk, wallets, logger, engineID, owner)),
	}

	if path := env[EnvStorePath]; path != "" {
		store, err := sqlite.Open(path)
		if err != nil {
			return fmt.Errorf("open session store: %w", err)
		}
		opts = append(opts, app.WithStore(store))
	} else {
		logger.Warn("%s not set; game state will not survive a restart.", EnvStorePath)
	}

	e, err := app.NewEngine(engineID, l, opts...)
	if err != nil {
		return err
	}
	if err := e.Restore(ctx); err != nil {
		return err
	}

	engine = e
	economy = wallets

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	logger.Info("Monopoly Go module loaded: %d sessions restored, board of %d tiles.", e.SessionCounter(), gameCfg.BoardSize)
	return nil
}

func envOr(env map[string]string, key, fallback string) string {
	if v := env[key]; v != "" {
		return v
	}
	return fallback
}
