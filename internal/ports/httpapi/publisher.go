package httpapi

import (
	"context"

	"monopoly/internal/app"

	"github.com/rs/zerolog"
)

// LogPublisher writes every committed engine event to a zerolog logger.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish implements app.Publisher.
func (p *LogPublisher) Publish(_ context.Context, events []app.Event) {
	for _, ev := range events {
		p.log.Info().
			Str("kind", string(ev.Kind)).
			Uint64("session_id", ev.SessionID).
			Strs("recipients", ev.Recipients).
			Interface("payload", ev.Payload).
			Msg("event")
	}
}

var _ app.Publisher = (*LogPublisher)(nil)
