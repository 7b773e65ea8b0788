package nakama

import (
	"sort"

	"monopoly/internal/app"
)

// rpcRequest is the union of fields accepted by the monopoly RPCs.
type rpcRequest struct {
	SessionID uint64 `json:"session_id"`
	Tile      int    `json:"tile"`
	Account   string `json:"account"`
	To        string `json:"to"`
	Amount    int64  `json:"amount"`
}

type PlayerResponse struct {
	Account   string `json:"account"`
	Position  int    `json:"position"`
	HasRolled bool   `json:"has_rolled"`
}

type TileOwnerResponse struct {
	Tile    int    `json:"tile"`
	Account string `json:"account"`
}

type SessionInfoResponse struct {
	SessionID     uint64              `json:"session_id"`
	Status        string              `json:"status"`
	Players       []PlayerResponse    `json:"players"`
	TurnIndex     int                 `json:"turn_index"`
	CurrentPlayer string              `json:"current_player,omitempty"`
	Tiles         []TileOwnerResponse `json:"tiles"`
	BoardSize     int                 `json:"board_size"`
	CreatedAt     int64               `json:"created_at"`
	UpdatedAt     int64               `json:"updated_at"`
}

type PlayerViewResponse struct {
	SessionID  uint64 `json:"session_id"`
	Account    string `json:"account"`
	Member     bool   `json:"member"`
	Balance    int64  `json:"balance"`
	Position   int    `json:"position"`
	HasRolled  bool   `json:"has_rolled"`
	OwnedTiles []int  `json:"owned_tiles"`
}

type RollResponse struct {
	SessionID uint64 `json:"session_id"`
	Value     int    `json:"value"`
	Position  int    `json:"position"`
	NextTurn  string `json:"next_turn"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Balance int64  `json:"balance"`
}

func sessionInfoToResponse(info app.SessionInfo) SessionInfoResponse {
	players := make([]PlayerResponse, 0, len(info.Players))
	for _, p := range info.Players {
		players = append(players, PlayerResponse{Account: p.Account, Position: p.Position, HasRolled: p.HasRolled})
	}
	tiles := make([]TileOwnerResponse, 0, len(info.Ownership))
	for tile, account := range info.Ownership {
		tiles = append(tiles, TileOwnerResponse{Tile: tile, Account: account})
	}
	sort.Slice(tiles, func(i, j int) bool { return tiles[i].Tile < tiles[j].Tile })

	return SessionInfoResponse{
		SessionID:     info.ID,
		Status:        string(info.Status),
		Players:       players,
		TurnIndex:     info.TurnIndex,
		CurrentPlayer: info.CurrentPlayer,
		Tiles:         tiles,
		BoardSize:     info.BoardSize,
		CreatedAt:     info.CreatedAt.Unix(),
		UpdatedAt:     info.UpdatedAt.Unix(),
	}
}

func playerViewToResponse(id uint64, view app.PlayerView) PlayerViewResponse {
	owned := view.OwnedTiles
	if owned == nil {
		owned = []int{}
	}
	return PlayerViewResponse{
		SessionID:  id,
		Account:    view.Account,
		Member:     view.Member,
		Balance:    view.Balance,
		Position:   view.Position,
		HasRolled:  view.HasRolled,
		OwnedTiles: owned,
	}
}

// notificationFor returns the notification code, subject and content for ev.
func notificationFor(ev app.Event) (int, string, map[string]interface{}) {
	content := map[string]interface{}{"session_id": ev.SessionID}
	switch p := ev.Payload.(type) {
	case app.SessionCreatedPayload:
		content["creator"] = p.Creator
		return NotifySessionCreated, string(ev.Kind), content
	case app.PlayerJoinedPayload:
		content["account"] = p.Account
		content["seat"] = p.Seat
		return NotifyPlayerJoined, string(ev.Kind), content
	case app.SessionStartedPayload:
		content["players"] = p.Players
		content["first_turn"] = p.FirstTurn
		return NotifySessionStarted, string(ev.Kind), content
	case app.DiceRolledPayload:
		content["account"] = p.Account
		content["value"] = p.Value
		content["position"] = p.Position
		content["next_turn"] = p.NextTurn
		return NotifyDiceRolled, string(ev.Kind), content
	case app.TilePurchasedPayload:
		content["account"] = p.Account
		content["tile"] = p.Tile
		content["price"] = p.Price
		return NotifyTilePurchased, string(ev.Kind), content
	case app.TokensMintedPayload:
		content["account"] = p.Account
		content["amount"] = p.Amount
		return NotifyTokensMinted, string(ev.Kind), content
	case app.TokensTransferredPayload:
		content["from"] = p.From
		content["to"] = p.To
		content["amount"] = p.Amount
		return NotifyTokensTransferred, string(ev.Kind), content
	default:
		return 0, "", nil
	}
}
