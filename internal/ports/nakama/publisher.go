package nakama

import (
	"context"

	"monopoly/internal/app"
	"monopoly/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Notifier is the subset of runtime.NakamaModule used to deliver events.
type Notifier interface {
	NotificationsSend(ctx context.Context, notifications []*runtime.NotificationSend) error
}

// EventPublisher delivers committed engine events as notifications and mirrors
// token movements into wallets. Both are best effort: the engine has already committed.
type EventPublisher struct {
	notifier Notifier
	economy  ports.EconomyPort
	logger   runtime.Logger
	// skip lists accounts that are not Nakama users, such as the engine treasury.
	skip map[string]bool
}

func NewEventPublisher(notifier Notifier, economy ports.EconomyPort, logger runtime.Logger, skip ...string) *EventPublisher {
	p := &EventPublisher{
		notifier: notifier,
		economy:  economy,
		logger:   logger,
		skip:     make(map[string]bool, len(skip)),
	}
	for _, account := range skip {
		p.skip[account] = true
	}
	return p
}

// Publish implements app.Publisher.
func (p *EventPublisher) Publish(ctx context.Context, events []app.Event) {
	if p.notifier != nil {
		if notifications := p.notifications(events); len(notifications) > 0 {
			if err := p.notifier.NotificationsSend(ctx, notifications); err != nil {
				p.logger.Warn("EventPublisher: failed to send %d notifications: %v", len(notifications), err)
			}
		}
	}
	if p.economy != nil {
		if updates := p.walletUpdates(events); len(updates) > 0 {
			if err := p.economy.UpdateBalances(ctx, updates); err != nil {
				p.logger.Error("EventPublisher: wallet mirror failed: %v", err)
			}
		}
	}
}

func (p *EventPublisher) notifications(events []app.Event) []*runtime.NotificationSend {
	var out []*runtime.NotificationSend
	for _, ev := range events {
		code, subject, content := notificationFor(ev)
		if code == 0 {
			p.logger.Warn("EventPublisher: no notification for event %s", ev.Kind)
			continue
		}
		for _, userID := range ev.Recipients {
			if p.skip[userID] {
				continue
			}
			out = append(out, &runtime.NotificationSend{
				UserID:     userID,
				Subject:    subject,
				Content:    content,
				Code:       code,
				Persistent: false,
			})
		}
	}
	return out
}

// walletUpdates turns token movements into per-user wallet deltas.
func (p *EventPublisher) walletUpdates(events []app.Event) []ports.WalletUpdate {
	var out []ports.WalletUpdate
	add := func(userID string, amount int64, ev app.Event) {
		if p.skip[userID] || amount == 0 {
			return
		}
		out = append(out, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Metadata: map[string]interface{}{
				"reason":     string(ev.Kind),
				"session_id": ev.SessionID,
			},
		})
	}
	for _, ev := range events {
		switch pl := ev.Payload.(type) {
		case app.TokensMintedPayload:
			add(pl.Account, pl.Amount, ev)
		case app.TilePurchasedPayload:
			add(pl.Account, -pl.Price, ev)
		case app.TokensTransferredPayload:
			add(pl.From, -pl.Amount, ev)
			add(pl.To, pl.Amount, ev)
		}
	}
	return out
}

var _ app.Publisher = (*EventPublisher)(nil)
