package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
)

var (
	// ErrInsufficientFunds occurs when the source account lacks available balance
	// to cover a requested posting.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned for zero or negative postings.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// IssuanceAccount is the ledger account debited when value is issued into the
// book. Its balance goes negative by the total amount issued per asset.
var IssuanceAccount = address.MustParse("0x00000000000000000000000000000000000000ff")

// TransactionResult captures the outcome of a ledger posting.
type TransactionResult struct {
	TransactionID string
	FromBalance   decimal.Decimal
	ToBalance     decimal.Decimal
}

// Ledger defines the contract implemented by ledger backends (e.g. Postgres).
// Accounts are created on first use; an unknown account has a zero balance.
type Ledger interface {
	Balance(ctx context.Context, account address.Address, a asset.Asset) (decimal.Decimal, error)
	Transfer(ctx context.Context, from, to address.Address, a asset.Asset, amount decimal.Decimal) (TransactionResult, error)
	Issue(ctx context.Context, to address.Address, a asset.Asset, amount decimal.Decimal) (TransactionResult, error)
	// HasActivity reports whether account has ever been posted to or from,
	// in any asset.
	HasActivity(ctx context.Context, account address.Address) (bool, error)
}
