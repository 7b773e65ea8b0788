// Package httpapi serves the game engine over JSON/HTTP for deployments without Nakama.
package httpapi

import (
	"context"
	"net/http"

	"monopoly/internal/app"
	"monopoly/internal/ports"

	"github.com/rs/zerolog"
)

// Game is the engine surface the HTTP API drives.
type Game interface {
	CreateSession(ctx context.Context, caller string) (uint64, []app.Event, error)
	JoinSession(ctx context.Context, id uint64, caller string) ([]app.Event, error)
	StartSession(ctx context.Context, id uint64, caller string) ([]app.Event, error)
	RollDice(ctx context.Context, id uint64, caller string) (int, []app.Event, error)
	BuyTile(ctx context.Context, id uint64, tile int, caller string) ([]app.Event, error)
	Transfer(ctx context.Context, caller, to string, amount int64) ([]app.Event, error)
	PlayerView(ctx context.Context, id uint64, account string) (app.PlayerView, error)
	SessionInfo(ctx context.Context, id uint64) (app.SessionInfo, error)
	SessionCounter() uint64
	Balance(account string) int64
}

// Verifier resolves a bearer token to an account.
type Verifier interface {
	Verify(token string) (string, error)
}

// Server routes HTTP requests to the engine.
type Server struct {
	game     Game
	verifier Verifier
	journal  ports.JournalReader
	log      zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithJournal enables the session event history route.
func WithJournal(j ports.JournalReader) Option {
	return func(s *Server) { s.journal = j }
}

// WithLogger sets the access and error logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

func NewServer(game Game, verifier Verifier, opts ...Option) *Server {
	s := &Server{game: game, verifier: verifier, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)

	api := http.NewServeMux()
	api.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	api.HandleFunc("GET /v1/sessions/{id}", s.handleSessionInfo)
	api.HandleFunc("POST /v1/sessions/{id}/join", s.handleJoinSession)
	api.HandleFunc("POST /v1/sessions/{id}/start", s.handleStartSession)
	api.HandleFunc("POST /v1/sessions/{id}/roll", s.handleRollDice)
	api.HandleFunc("POST /v1/sessions/{id}/tiles/{tile}/buy", s.handleBuyTile)
	api.HandleFunc("GET /v1/sessions/{id}/players/{account}", s.handlePlayerView)
	api.HandleFunc("GET /v1/sessions/{id}/events", s.handleSessionEvents)
	api.HandleFunc("GET /v1/ledger/{account}", s.handleBalance)
	api.HandleFunc("POST /v1/ledger/transfer", s.handleTransfer)
	mux.Handle("/v1/", s.authenticate(api))

	return s.accessLog(mux)
}
