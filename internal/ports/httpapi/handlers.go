package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"monopoly/internal/app"
)

const maxJournalPage = 500

type playerJSON struct {
	Account   string `json:"account"`
	Position  int    `json:"position"`
	HasRolled bool   `json:"has_rolled"`
}

type tileJSON struct {
	Tile    int    `json:"tile"`
	Account string `json:"account"`
}

type sessionJSON struct {
	SessionID     uint64       `json:"session_id"`
	Status        string       `json:"status"`
	Players       []playerJSON `json:"players"`
	TurnIndex     int          `json:"turn_index"`
	CurrentPlayer string       `json:"current_player,omitempty"`
	Tiles         []tileJSON   `json:"tiles"`
	BoardSize     int          `json:"board_size"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type playerViewJSON struct {
	SessionID  uint64 `json:"session_id"`
	Account    string `json:"account"`
	Member     bool   `json:"member"`
	Balance    int64  `json:"balance"`
	Position   int    `json:"position"`
	HasRolled  bool   `json:"has_rolled"`
	OwnedTiles []int  `json:"owned_tiles"`
}

type rollJSON struct {
	SessionID uint64 `json:"session_id"`
	Value     int    `json:"value"`
	Position  int    `json:"position"`
	NextTurn  string `json:"next_turn"`
}

type balanceJSON struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}

type transferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

type eventJSON struct {
	Seq       int64     `json:"seq"`
	Kind      string    `json:"kind"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

type errorJSON struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.game.SessionCounter()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, _, err := s.game.CreateSession(r.Context(), callerFrom(r.Context()))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusCreated, id)
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	s.writeSession(w, r, http.StatusOK, id)
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if _, err := s.game.JoinSession(r.Context(), id, callerFrom(r.Context())); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, id)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if _, err := s.game.StartSession(r.Context(), id, callerFrom(r.Context())); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.writeSession(w, r, http.StatusOK, id)
}

func (s *Server) handleRollDice(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	value, events, err := s.game.RollDice(r.Context(), id, callerFrom(r.Context()))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	resp := rollJSON{SessionID: id, Value: value}
	for _, ev := range events {
		if rolled, ok := ev.Payload.(app.DiceRolledPayload); ok {
			resp.Position = rolled.Position
			resp.NextTurn = rolled.NextTurn
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuyTile(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	tile, err := strconv.Atoi(r.PathValue("tile"))
	if err != nil {
		writeError(w, http.StatusBadRequest, string(app.CodeInvalidArgument), "tile must be an integer")
		return
	}
	caller := callerFrom(r.Context())
	if _, err := s.game.BuyTile(r.Context(), id, tile, caller); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	s.writePlayerView(w, r, id, caller)
}

func (s *Server) handlePlayerView(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	s.writePlayerView(w, r, id, r.PathValue("account"))
}

func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if s.journal == nil {
		writeError(w, http.StatusNotImplemented, "unavailable", "event history requires persistent storage")
		return
	}
	if _, err := s.game.SessionInfo(r.Context(), id); err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	after, limit, err := pageParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(app.CodeInvalidArgument), err.Error())
		return
	}
	entries, err := s.journal.Journal(r.Context(), id, after, limit)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	out := make([]eventJSON, 0, len(entries))
	for _, entry := range entries {
		ev, err := app.UnmarshalEvent(entry.Payload)
		if err != nil {
			s.log.Error().Err(err).Int64("seq", entry.Seq).Msg("undecodable journal entry")
			continue
		}
		out = append(out, eventJSON{Seq: entry.Seq, Kind: string(ev.Kind), Payload: ev.Payload, CreatedAt: entry.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": id, "events": out})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	writeJSON(w, http.StatusOK, balanceJSON{Account: account, Balance: s.game.Balance(account)})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(app.CodeInvalidArgument), "invalid JSON body")
		return
	}
	caller := callerFrom(r.Context())
	if _, err := s.game.Transfer(r.Context(), caller, req.To, req.Amount); err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceJSON{Account: caller, Balance: s.game.Balance(caller)})
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, id uint64) {
	info, err := s.game.SessionInfo(r.Context(), id)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	players := make([]playerJSON, 0, len(info.Players))
	for _, p := range info.Players {
		players = append(players, playerJSON{Account: p.Account, Position: p.Position, HasRolled: p.HasRolled})
	}
	tiles := make([]tileJSON, 0, len(info.Ownership))
	for tile, account := range info.Ownership {
		tiles = append(tiles, tileJSON{Tile: tile, Account: account})
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i].Tile < tiles[j].Tile })

	writeJSON(w, status, sessionJSON{
		SessionID:     info.ID,
		Status:        string(info.Status),
		Players:       players,
		TurnIndex:     info.TurnIndex,
		CurrentPlayer: info.CurrentPlayer,
		Tiles:         tiles,
		BoardSize:     info.BoardSize,
		CreatedAt:     info.CreatedAt,
		UpdatedAt:     info.UpdatedAt,
	})
}

func (s *Server) writePlayerView(w http.ResponseWriter, r *http.Request, id uint64, account string) {
	view, err := s.game.PlayerView(r.Context(), id, account)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	owned := view.OwnedTiles
	if owned == nil {
		owned = []int{}
	}
	writeJSON(w, http.StatusOK, playerViewJSON{
		SessionID:  id,
		Account:    view.Account,
		Member:     view.Member,
		Balance:    view.Balance,
		Position:   view.Position,
		HasRolled:  view.HasRolled,
		OwnedTiles: owned,
	})
}

func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	code := app.CodeOf(err)
	status := httpStatus(code)
	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("engine failure")
		writeError(w, status, string(code), "internal error")
		return
	}
	var appErr *app.Error
	msg := err.Error()
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	writeError(w, status, string(code), msg)
}

func httpStatus(code app.Code) int {
	switch code {
	case app.CodeInvalidArgument:
		return http.StatusBadRequest
	case app.CodeNotFound:
		return http.StatusNotFound
	case app.CodeUnauthorized:
		return http.StatusForbidden
	case app.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, string(app.CodeInvalidArgument), "session id must be a positive integer")
		return 0, false
	}
	return id, true
}

func pageParams(r *http.Request) (int64, int, error) {
	q := r.URL.Query()
	var (
		after int64
		limit int
		err   error
	)
	if v := q.Get("after"); v != "" {
		if after, err = strconv.ParseInt(v, 10, 64); err != nil || after < 0 {
			return 0, 0, errors.New("after must be a non-negative integer")
		}
	}
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			return 0, 0, errors.New("limit must be a non-negative integer")
		}
	}
	if limit > maxJournalPage {
		limit = maxJournalPage
	}
	return after, limit, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorJSON{Code: code, Message: message})
}
