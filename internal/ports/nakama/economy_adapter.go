package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"monopoly/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

// WalletModule is the subset of runtime.NakamaModule the economy adapter needs.
type WalletModule interface {
	AccountGetId(ctx context.Context, userID string) (*api.Account, error)
	WalletUpdate(ctx context.Context, userID string, changeset map[string]int64, metadata map[string]interface{}, updateLedger bool) (map[string]int64, map[string]int64, error)
}

// NakamaEconomyAdapter implements ports.EconomyPort using Nakama's wallet system.
type NakamaEconomyAdapter struct {
	nk WalletModule
}

// NewNakamaEconomyAdapter creates a new economy adapter.
func NewNakamaEconomyAdapter(nk WalletModule) *NakamaEconomyAdapter {
	return &NakamaEconomyAdapter{nk: nk}
}

// GetBalance retrieves the mirrored token balance for a user.
func (a *NakamaEconomyAdapter) GetBalance(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account.Wallet == "" {
		return 0, nil
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
		return 0, fmt.Errorf("failed to unmarshal wallet: %w", err)
	}
	return wallet[WalletCurrency], nil
}

// UpdateBalances applies multiple wallet changes.
func (a *NakamaEconomyAdapter) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	for _, update := range updates {
		if update.Amount == 0 {
			continue
		}
		changes := map[string]int64{WalletCurrency: update.Amount}
		if _, _, err := a.nk.WalletUpdate(ctx, update.UserID, changes, update.Metadata, true); err != nil {
			return fmt.Errorf("failed to update wallet for user %s: %w", update.UserID, err)
		}
	}
	return nil
}

var _ ports.EconomyPort = (*NakamaEconomyAdapter)(nil)
