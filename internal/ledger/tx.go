package ledger

import (
	"math"
	"sort"
)

const maxSupply = math.MaxInt64

// Tx stages balance changes inside Ledger.Update.
// Reads through a Tx observe its own pending writes.
type Tx struct {
	ledger   *Ledger
	pending  map[string]int64 // account -> new absolute balance
	supply   int64
	onCommit func()
}

// BalanceOf returns the staged balance of account.
func (tx *Tx) BalanceOf(account string) int64 {
	if balance, ok := tx.pending[account]; ok {
		return balance
	}
	return tx.ledger.balances[account]
}

// Mint stages the creation of amount units for account.
func (tx *Tx) Mint(caller, account string, amount int64) error {
	if tx.ledger.minter == "" || caller != tx.ledger.minter {
		return ErrUnauthorized
	}
	if account == "" {
		return ErrInvalidAccount
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if tx.supply > maxSupply-amount {
		return ErrSupplyOverflow
	}
	tx.pending[account] = tx.BalanceOf(account) + amount
	tx.supply += amount
	return nil
}

// Transfer stages a move of amount from one account to another.
func (tx *Tx) Transfer(from, to string, amount int64) error {
	if from == "" || to == "" {
		return ErrInvalidAccount
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	fromBalance := tx.BalanceOf(from)
	if fromBalance < amount {
		return ErrInsufficientBalance
	}
	tx.pending[from] = fromBalance - amount
	tx.pending[to] = tx.BalanceOf(to) + amount
	return nil
}

// Touched returns the staged balance of every account this Tx changed, sorted by account.
func (tx *Tx) Touched() []Balance {
	out := make([]Balance, 0, len(tx.pending))
	for account, amount := range tx.pending {
		out = append(out, Balance{Account: account, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Account < out[j].Account })
	return out
}

// Balance is one account's holding.
type Balance struct {
	Account string
	Amount  int64
}
