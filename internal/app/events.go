package app

// EventKind identifies emitted engine events.
type EventKind string

const (
	EventSessionCreated    EventKind = "session_created"
	EventPlayerJoined      EventKind = "player_joined"
	EventSessionStarted    EventKind = "session_started"
	EventDiceRolled        EventKind = "dice_rolled"
	EventTilePurchased     EventKind = "tile_purchased"
	EventTokensMinted      EventKind = "tokens_minted"
	EventTokensTransferred EventKind = "tokens_transferred"
)

// Event is an engine event with its intended recipients.
// Payload holds the struct matching Kind.
type Event struct {
	Kind       EventKind
	SessionID  uint64 // 0 for ledger-only events
	Payload    any
	Recipients []string // accounts; empty means nobody in particular
}

type SessionCreatedPayload struct {
	Creator string
}

type PlayerJoinedPayload struct {
	Account string
	Seat    int
}

type SessionStartedPayload struct {
	Players   []string
	FirstTurn string
}

type DiceRolledPayload struct {
	Account  string
	Value    int
	Position int
	NextTurn string
}

type TilePurchasedPayload struct {
	Account string
	Tile    int
	Price   int64
}

type TokensMintedPayload struct {
	Account string
	Amount  int64
}

type TokensTransferredPayload struct {
	From   string
	To     string
	Amount int64
}
