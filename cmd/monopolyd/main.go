// Command monopolyd serves the game engine over HTTP, persisting to SQLite.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"monopoly/internal/app"
	"monopoly/internal/config"
	"monopoly/internal/dice"
	"monopoly/internal/identity"
	"monopoly/internal/ledger"
	"monopoly/internal/ports/httpapi"
	"monopoly/internal/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("monopolyd stopped")
	}
}

func setupLogging(cfg config.ServerConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func run(ctx context.Context, cfg config.ServerConfig) error {
	gameCfg, err := config.LoadGameConfig(cfg.GameConfigPath)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("close store")
		}
	}()

	l := ledger.New(cfg.LedgerOwner, ledger.DefaultName, ledger.DefaultSymbol)
	if err := l.SetMinter(cfg.LedgerOwner, cfg.EngineID); err != nil {
		return fmt.Errorf("register engine as minter: %w", err)
	}

	var rng *rand.Rand
	if cfg.DiceSeed != 0 {
		rng = rand.New(rand.NewSource(cfg.DiceSeed))
		log.Warn().Int64("seed", cfg.DiceSeed).Msg("dice are seeded; rolls are predictable")
	}
	roller, err := dice.NewRandRoller(gameCfg.DiceSpec(), rng)
	if err != nil {
		return err
	}

	engine, err := app.NewEngine(cfg.EngineID, l,
		app.WithBoard(gameCfg.Board()),
		app.WithRoller(roller),
		app.WithStartingBalance(gameCfg.StartingBalance),
		app.WithStore(store),
		app.WithPublisher(httpapi.NewLogPublisher(log.With().Str("component", "events").Logger())),
	)
	if err != nil {
		return err
	}
	if err := engine.Restore(ctx); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	log.Info().Msgf("restored %d sessions from %s", engine.SessionCounter(), cfg.DBPath)

	ids := identity.NewService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	api := httpapi.NewServer(engine, ids,
		httpapi.WithJournal(store),
		httpapi.WithLogger(log.With().Str("component", "http").Logger()),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Msgf("listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
