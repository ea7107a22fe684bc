package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
)

// Bank adapts a Ledger to the asset.Bank capability used by wallets.
type Bank struct {
	ledger Ledger
}

// NewBank wraps l.
func NewBank(l Ledger) *Bank {
	return &Bank{ledger: l}
}

// MoveValue posts amount of a from one account to another.
func (b *Bank) MoveValue(ctx context.Context, a asset.Asset, from, to address.Address, amount decimal.Decimal) error {
	_, err := b.ledger.Transfer(ctx, from, to, a, amount)
	return err
}

// HasActivity reports whether account has any ledger history.
func (b *Bank) HasActivity(ctx context.Context, account address.Address) (bool, error) {
	return b.ledger.HasActivity(ctx, account)
}

// BalanceOf returns the ledger balance of account in a.
func (b *Bank) BalanceOf(ctx context.Context, account address.Address, a asset.Asset) (decimal.Decimal, error) {
	return b.ledger.Balance(ctx, account, a)
}
