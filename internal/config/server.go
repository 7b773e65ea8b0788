package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ServerConfig configures the standalone HTTP server.
type ServerConfig struct {
	HTTPAddr       string        `env:"MONOPOLY_HTTP_ADDR"     envDefault:":8080"`
	DBPath         string        `env:"MONOPOLY_DB_PATH"       envDefault:"monopoly.db"`
	GameConfigPath string        `env:"MONOPOLY_GAME_CONFIG"`
	JWTSecret      string        `env:"MONOPOLY_JWT_SECRET"`
	JWTIssuer      string        `env:"MONOPOLY_JWT_ISSUER"    envDefault:"monopoly"`
	TokenTTL       time.Duration `env:"MONOPOLY_TOKEN_TTL"     envDefault:"24h"`
	LedgerOwner    string        `env:"MONOPOLY_LEDGER_OWNER"  envDefault:"ledger-owner"`
	EngineID       string        `env:"MONOPOLY_ENGINE_ID"     envDefault:"monopoly-engine"`
	LogLevel       string        `env:"MONOPOLY_LOG_LEVEL"     envDefault:"info"`
	LogPretty      bool          `env:"MONOPOLY_LOG_PRETTY"`
	// DiceSeed makes rolls reproducible when non-zero.
	DiceSeed int64 `env:"MONOPOLY_DICE_SEED"`
}

// LoadServerConfig parses the process environment.
func LoadServerConfig() (ServerConfig, error) {
	return parseServerConfig(env.Options{})
}

// LoadServerConfigFrom parses environ instead of the process environment.
func LoadServerConfigFrom(environ map[string]string) (ServerConfig, error) {
	return parseServerConfig(env.Options{Environment: environ})
}

func parseServerConfig(opts env.Options) (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSecret == "" {
		return ServerConfig{}, fmt.Errorf("MONOPOLY_JWT_SECRET is required")
	}
	if cfg.LedgerOwner == cfg.EngineID {
		return ServerConfig{}, fmt.Errorf("ledger owner and engine id must differ")
	}
	return cfg, nil
}
