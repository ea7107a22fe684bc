package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
)

type balanceKey struct {
	account address.Address
	asset   string
}

type inMemoryLedger struct {
	mu       sync.RWMutex
	balances map[balanceKey]decimal.Decimal
	active   map[address.Address]struct{}
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		balances: make(map[balanceKey]decimal.Decimal),
		active:   make(map[address.Address]struct{}),
	}
}

func (l *inMemoryLedger) Balance(_ context.Context, account address.Address, a asset.Asset) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[balanceKey{account, a.Code()}], nil
}

func (l *inMemoryLedger) Transfer(_ context.Context, from, to address.Address, a asset.Asset, amount decimal.Decimal) (TransactionResult, error) {
	if !amount.IsPositive() {
		return TransactionResult{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromKey := balanceKey{from, a.Code()}
	toKey := balanceKey{to, a.Code()}

	fromBalance := l.balances[fromKey]
	if fromBalance.LessThan(amount) {
		return TransactionResult{}, ErrInsufficientFunds
	}

	l.balances[fromKey] = fromBalance.Sub(amount)
	l.balances[toKey] = l.balances[toKey].Add(amount)
	l.active[from] = struct{}{}
	l.active[to] = struct{}{}

	return TransactionResult{
		TransactionID: uuid.NewString(),
		FromBalance:   l.balances[fromKey],
		ToBalance:     l.balances[toKey],
	}, nil
}

func (l *inMemoryLedger) Issue(_ context.Context, to address.Address, a asset.Asset, amount decimal.Decimal) (TransactionResult, error) {
	if !amount.IsPositive() {
		return TransactionResult{}, ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	issuanceKey := balanceKey{IssuanceAccount, a.Code()}
	toKey := balanceKey{to, a.Code()}

	l.balances[issuanceKey] = l.balances[issuanceKey].Sub(amount)
	l.balances[toKey] = l.balances[toKey].Add(amount)
	l.active[IssuanceAccount] = struct{}{}
	l.active[to] = struct{}{}

	return TransactionResult{
		TransactionID: uuid.NewString(),
		FromBalance:   l.balances[issuanceKey],
		ToBalance:     l.balances[toKey],
	}, nil
}

func (l *inMemoryLedger) HasActivity(_ context.Context, account address.Address) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.active[account]
	return ok, nil
}
