package ports

import "context"

// WalletUpdate represents a single currency change for a user.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort mirrors ledger movements into a host wallet system.
type EconomyPort interface {
	// GetBalance retrieves the mirrored token balance for a user.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies multiple wallet changes.
	// Called after the engine has committed, so failures never roll back game state.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
