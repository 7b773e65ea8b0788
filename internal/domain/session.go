package domain

import (
	"sort"
	"time"
)

// Status represents the lifecycle stage of a session.
type Status string

const (
	// StatusWaiting is the pre-game state where players can join.
	StatusWaiting Status = "waiting"
	// StatusActive is the in-game state where players roll and buy tiles.
	StatusActive Status = "active"
	// StatusFinished is reserved; no rule currently ends a session.
	StatusFinished Status = "finished"
)

const (
	// MaxPlayers is the seat capacity of a session.
	MaxPlayers = 4
	// MinPlayersToStart is the minimum number of seated players required to start.
	MinPlayersToStart = 2
)

// Player holds state for a participant in a session.
type Player struct {
	Account  string
	Position int // tile index in [0, board size)
	// HasRolled is set by a roll and cleared by a purchase.
	HasRolled bool
}

// Session holds the authoritative state for one game instance.
type Session struct {
	ID        uint64
	Status    Status
	Players   []Player       // join order = turn order
	TurnIndex int            // index into Players, valid while active
	Ownership map[int]string // tile id -> owning account
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession returns a waiting session seated with its creator.
func NewSession(id uint64, creator string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Status:    StatusWaiting,
		Players:   []Player{{Account: creator}},
		Ownership: make(map[int]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Seat returns the index of account in the player list, or -1.
func (s *Session) Seat(account string) int {
	for i, p := range s.Players {
		if p.Account == account {
			return i
		}
	}
	return -1
}

// IsFull reports whether every seat is taken.
func (s *Session) IsFull() bool {
	return len(s.Players) >= MaxPlayers
}

// CurrentPlayer returns the account whose turn it is, or "" when not active.
func (s *Session) CurrentPlayer() string {
	if s.Status != StatusActive || s.TurnIndex < 0 || s.TurnIndex >= len(s.Players) {
		return ""
	}
	return s.Players[s.TurnIndex].Account
}

// AdvanceTurn moves the turn to the next seat, wrapping around.
func (s *Session) AdvanceTurn() {
	if len(s.Players) == 0 {
		return
	}
	s.TurnIndex = (s.TurnIndex + 1) % len(s.Players)
}

// Accounts returns the seated accounts in join order.
func (s *Session) Accounts() []string {
	out := make([]string, len(s.Players))
	for i, p := range s.Players {
		out[i] = p.Account
	}
	return out
}

// OwnedTiles returns the tiles owned by account, ascending.
func (s *Session) OwnedTiles(account string) []int {
	tiles := make([]int, 0)
	for tile, owner := range s.Ownership {
		if owner == account {
			tiles = append(tiles, tile)
		}
	}
	sort.Ints(tiles)
	return tiles
}

// Clone returns a deep copy so callers can mutate without touching committed state.
func (s *Session) Clone() *Session {
	c := *s
	c.Players = append([]Player(nil), s.Players...)
	c.Ownership = make(map[int]string, len(s.Ownership))
	for tile, owner := range s.Ownership {
		c.Ownership[tile] = owner
	}
	return &c
}
