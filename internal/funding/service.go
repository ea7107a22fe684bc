// Package funding credits ledger accounts from the issuance account. It backs
// the development faucet and has no place in production deployments.
package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/ledger"
)

// DefaultMaxDrip caps a single faucet credit.
var DefaultMaxDrip = decimal.NewFromInt(1_000)

var (
	ErrInvalidAccount = errors.New("account must not be the zero address")
	ErrDripTooLarge   = errors.New("amount exceeds faucet limit")
)

// Service issues test funds.
type Service struct {
	ledger  ledger.Ledger
	maxDrip decimal.Decimal
	logger  *slog.Logger
}

// NewService prepares a faucet over ledgerBackend. A non-positive maxDrip
// selects DefaultMaxDrip.
func NewService(ledgerBackend ledger.Ledger, maxDrip decimal.Decimal, logger *slog.Logger) (*Service, error) {
	if ledgerBackend == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if !maxDrip.IsPositive() {
		maxDrip = DefaultMaxDrip
	}
	return &Service{ledger: ledgerBackend, maxDrip: maxDrip, logger: logger}, nil
}

// DripInput names the account to credit.
type DripInput struct {
	Account address.Address
	Asset   asset.Asset
	Amount  decimal.Decimal
}

// DripResult represents the outcome of a faucet credit.
type DripResult struct {
	TransactionID string
	Account       address.Address
	Asset         asset.Asset
	Amount        decimal.Decimal
	Balance       decimal.Decimal
	CompletedAt   time.Time
}

// Drip credits input.Amount of input.Asset to input.Account.
func (s *Service) Drip(ctx context.Context, input DripInput) (DripResult, error) {
	if input.Account.IsZero() {
		return DripResult{}, ErrInvalidAccount
	}
	if !input.Amount.IsPositive() {
		return DripResult{}, ledger.ErrInvalidAmount
	}
	if input.Amount.GreaterThan(s.maxDrip) {
		return DripResult{}, fmt.Errorf("%w: %s > %s", ErrDripTooLarge, input.Amount, s.maxDrip)
	}

	res, err := s.ledger.Issue(ctx, input.Account, input.Asset, input.Amount)
	if err != nil {
		return DripResult{}, fmt.Errorf("issue: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("funding.drip",
			slog.String("account", input.Account.String()),
			slog.String("asset", input.Asset.Code()),
			slog.String("amount", input.Amount.String()),
			slog.String("transaction_id", res.TransactionID),
		)
	}

	return DripResult{
		TransactionID: res.TransactionID,
		Account:       input.Account,
		Asset:         input.Asset,
		Amount:        input.Amount,
		Balance:       res.ToBalance,
		CompletedAt:   time.Now().UTC(),
	}, nil
}
