package app

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Journal wire layout. Field numbers are part of the stored format; never renumber.
const (
	fieldKind      protowire.Number = 1
	fieldSessionID protowire.Number = 2
	fieldAccount   protowire.Number = 3
	fieldValue     protowire.Number = 4 // seat, dice value or tile
	fieldPosition  protowire.Number = 5
	fieldAmount    protowire.Number = 6 // price or token amount
	fieldPlayers   protowire.Number = 7
	fieldNextTurn  protowire.Number = 8 // next or first turn account
	fieldTo        protowire.Number = 9
)

var ErrUnknownEventKind = errors.New("unknown event kind")

// MarshalEvent encodes ev in protobuf wire format for the event journal.
// Recipients are not encoded; they are derived from session state.
func MarshalEvent(ev Event) ([]byte, error) {
	b := protowire.AppendTag(nil, fieldKind, protowire.BytesType)
	b = protowire.AppendString(b, string(ev.Kind))
	if ev.SessionID != 0 {
		b = appendVarint(b, fieldSessionID, ev.SessionID)
	}

	switch p := ev.Payload.(type) {
	case SessionCreatedPayload:
		b = appendString(b, fieldAccount, p.Creator)
	case PlayerJoinedPayload:
		b = appendString(b, fieldAccount, p.Account)
		b = appendVarint(b, fieldValue, uint64(p.Seat))
	case SessionStartedPayload:
		for _, player := range p.Players {
			b = appendString(b, fieldPlayers, player)
		}
		b = appendString(b, fieldNextTurn, p.FirstTurn)
	case DiceRolledPayload:
		b = appendString(b, fieldAccount, p.Account)
		b = appendVarint(b, fieldValue, uint64(p.Value))
		b = appendVarint(b, fieldPosition, uint64(p.Position))
		b = appendString(b, fieldNextTurn, p.NextTurn)
	case TilePurchasedPayload:
		b = appendString(b, fieldAccount, p.Account)
		b = appendVarint(b, fieldValue, uint64(p.Tile))
		b = appendVarint(b, fieldAmount, uint64(p.Price))
	case TokensMintedPayload:
		b = appendString(b, fieldAccount, p.Account)
		b = appendVarint(b, fieldAmount, uint64(p.Amount))
	case TokensTransferredPayload:
		b = appendString(b, fieldAccount, p.From)
		b = appendString(b, fieldTo, p.To)
		b = appendVarint(b, fieldAmount, uint64(p.Amount))
	default:
		return nil, fmt.Errorf("%w: %s payload %T", ErrUnknownEventKind, ev.Kind, ev.Payload)
	}
	return b, nil
}

// wireEvent is the flat decoded form before the payload is rebuilt.
type wireEvent struct {
	kind      string
	sessionID uint64
	account   string
	value     uint64
	position  uint64
	amount    uint64
	players   []string
	nextTurn  string
	to        string
}

// UnmarshalEvent decodes a journal record produced by MarshalEvent.
func UnmarshalEvent(b []byte) (Event, error) {
	var w wireEvent
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Event{}, fmt.Errorf("decode event tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && isStringField(num):
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return Event{}, fmt.Errorf("decode event field %d: %w", num, protowire.ParseError(n))
			}
			w.setString(num, s)
			b = b[n:]
		case typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Event{}, fmt.Errorf("decode event field %d: %w", num, protowire.ParseError(n))
			}
			w.setVarint(num, v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Event{}, fmt.Errorf("skip event field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return w.event()
}

func isStringField(num protowire.Number) bool {
	switch num {
	case fieldKind, fieldAccount, fieldPlayers, fieldNextTurn, fieldTo:
		return true
	}
	return false
}

func (w *wireEvent) setString(num protowire.Number, s string) {
	switch num {
	case fieldKind:
		w.kind = s
	case fieldAccount:
		w.account = s
	case fieldPlayers:
		w.players = append(w.players, s)
	case fieldNextTurn:
		w.nextTurn = s
	case fieldTo:
		w.to = s
	}
}

func (w *wireEvent) setVarint(num protowire.Number, v uint64) {
	switch num {
	case fieldSessionID:
		w.sessionID = v
	case fieldValue:
		w.value = v
	case fieldPosition:
		w.position = v
	case fieldAmount:
		w.amount = v
	}
}

func (w *wireEvent) event() (Event, error) {
	ev := Event{Kind: EventKind(w.kind), SessionID: w.sessionID}
	switch ev.Kind {
	case EventSessionCreated:
		ev.Payload = SessionCreatedPayload{Creator: w.account}
	case EventPlayerJoined:
		ev.Payload = PlayerJoinedPayload{Account: w.account, Seat: int(w.value)}
	case EventSessionStarted:
		ev.Payload = SessionStartedPayload{Players: w.players, FirstTurn: w.nextTurn}
	case EventDiceRolled:
		ev.Payload = DiceRolledPayload{Account: w.account, Value: int(w.value), Position: int(w.position), NextTurn: w.nextTurn}
	case EventTilePurchased:
		ev.Payload = TilePurchasedPayload{Account: w.account, Tile: int(w.value), Price: int64(w.amount)}
	case EventTokensMinted:
		ev.Payload = TokensMintedPayload{Account: w.account, Amount: int64(w.amount)}
	case EventTokensTransferred:
		ev.Payload = TokensTransferredPayload{From: w.account, To: w.to, Amount: int64(w.amount)}
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownEventKind, w.kind)
	}
	return ev, nil
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}
