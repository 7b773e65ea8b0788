// Package ledger holds fungible token balances with a single privileged minter.
package ledger

import (
	"errors"
	"sync"
)

const (
	DefaultName   = "MonopolyToken"
	DefaultSymbol = "MONO"
)

var (
	ErrNotOwner              = errors.New("caller is not the ledger owner")
	ErrMinterLocked          = errors.New("minter already set")
	ErrUnauthorized          = errors.New("only the game engine can mint")
	ErrInvalidAccount        = errors.New("account is required")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrSupplyOverflow        = errors.New("mint would overflow total supply")
)

// Ledger is a fungible-token balance store. All mutations run under one lock.
type Ledger struct {
	mu sync.RWMutex

	name   string
	symbol string
	owner  string
	minter string

	balances    map[string]int64
	allowances  map[allowanceKey]int64
	totalSupply int64
}

type allowanceKey struct {
	owner   string
	spender string
}

// New constructs an empty ledger deployed by owner. Empty name/symbol fall back to defaults.
func New(owner, name, symbol string) *Ledger {
	if name == "" {
		name = DefaultName
	}
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Ledger{
		name:       name,
		symbol:     symbol,
		owner:      owner,
		balances:   make(map[string]int64),
		allowances: make(map[allowanceKey]int64),
	}
}

func (l *Ledger) Name() string   { return l.name }
func (l *Ledger) Symbol() string { return l.symbol }

// Decimals reports the display precision. Balances are whole units.
func (l *Ledger) Decimals() uint8 { return 0 }

// Owner returns the identity that deployed the ledger.
func (l *Ledger) Owner() string { return l.owner }

// Minter returns the registered minter, "" until SetMinter succeeds.
func (l *Ledger) Minter() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.minter
}

// SetMinter records the sole identity allowed to mint.
// Only the owner may call it, and only once: later calls fail with ErrMinterLocked.
func (l *Ledger) SetMinter(caller, minter string) error {
	if minter == "" {
		return ErrInvalidAccount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if caller != l.owner {
		return ErrNotOwner
	}
	if l.minter != "" {
		return ErrMinterLocked
	}
	l.minter = minter
	return nil
}

// BalanceOf returns the balance held by account.
func (l *Ledger) BalanceOf(account string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[account]
}

// TotalSupply returns the amount minted so far.
func (l *Ledger) TotalSupply() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.totalSupply
}

// Allowance returns how much spender may move out of owner's balance.
func (l *Ledger) Allowance(owner, spender string) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.allowances[allowanceKey{owner: owner, spender: spender}]
}

// Mint creates amount new units for account. caller must be the registered minter.
func (l *Ledger) Mint(caller, account string, amount int64) error {
	return l.Update(func(tx *Tx) error {
		return tx.Mint(caller, account, amount)
	})
}

// Transfer moves amount from one account to another.
func (l *Ledger) Transfer(from, to string, amount int64) error {
	return l.Update(func(tx *Tx) error {
		return tx.Transfer(from, to, amount)
	})
}

// Approve sets the amount spender may transfer on behalf of owner.
func (l *Ledger) Approve(owner, spender string, amount int64) error {
	if owner == "" || spender == "" {
		return ErrInvalidAccount
	}
	if amount < 0 {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[allowanceKey{owner: owner, spender: spender}] = amount
	return nil
}

// TransferFrom moves amount from owner to recipient using spender's allowance.
func (l *Ledger) TransferFrom(spender, owner, to string, amount int64) error {
	key := allowanceKey{owner: owner, spender: spender}
	return l.Update(func(tx *Tx) error {
		if l.allowances[key] < amount {
			return ErrInsufficientAllowance
		}
		if err := tx.Transfer(owner, to, amount); err != nil {
			return err
		}
		tx.onCommit = func() { l.allowances[key] -= amount }
		return nil
	})
}

// Update runs fn against a staged view of the ledger and applies its changes
// only when fn returns nil. The ledger lock is held for the whole call.
func (l *Ledger) Update(fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &Tx{ledger: l, pending: make(map[string]int64), supply: l.totalSupply}
	if err := fn(tx); err != nil {
		return err
	}
	for account, balance := range tx.pending {
		if balance == 0 {
			delete(l.balances, account)
			continue
		}
		l.balances[account] = balance
	}
	l.totalSupply = tx.supply
	if tx.onCommit != nil {
		tx.onCommit()
	}
	return nil
}

// Balances returns a copy of every non-zero balance.
func (l *Ledger) Balances() map[string]int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int64, len(l.balances))
	for account, balance := range l.balances {
		out[account] = balance
	}
	return out
}

// Restore replaces all balances with persisted values and recomputes supply.
func (l *Ledger) Restore(balances map[string]int64) error {
	var supply int64
	for account, balance := range balances {
		if account == "" {
			return ErrInvalidAccount
		}
		if balance < 0 {
			return ErrInvalidAmount
		}
		if supply > maxSupply-balance {
			return ErrSupplyOverflow
		}
		supply += balance
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[string]int64, len(balances))
	for account, balance := range balances {
		if balance > 0 {
			l.balances[account] = balance
		}
	}
	l.totalSupply = supply
	return nil
}
