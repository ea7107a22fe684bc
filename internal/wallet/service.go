package wallet

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
)

// Service exposes wallet operations by wallet address.
type Service struct {
	repo   Repository
	deps   Deps
	logger *slog.Logger
}

// NewService builds a wallet service instance.
func NewService(repo Repository, deps Deps, logger *slog.Logger) *Service {
	return &Service{repo: repo, deps: deps, logger: logger}
}

// Deploy stores a new uninitialized wallet at a fresh address.
func (s *Service) Deploy(ctx context.Context) (*Wallet, error) {
	id := uuid.New()
	w := New(address.FromSeed(id[:]), s.deps)
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Wallet returns the live wallet at addr.
func (s *Service) Wallet(ctx context.Context, addr address.Address) (*Wallet, error) {
	return s.repo.Get(ctx, addr)
}

// Get retrieves a wallet snapshot.
func (s *Service) Get(ctx context.Context, addr address.Address) (Info, error) {
	w, err := s.repo.Get(ctx, addr)
	if err != nil {
		return Info{}, err
	}
	return w.Info(), nil
}

// Initialize initializes the wallet at addr.
func (s *Service) Initialize(ctx context.Context, addr, owner address.Address, delegates []address.Address) (Info, error) {
	w, err := s.repo.Get(ctx, addr)
	if err != nil {
		return Info{}, err
	}
	if err := w.Initialize(ctx, owner, delegates); err != nil {
		return Info{}, err
	}
	return w.Info(), nil
}

// AddDelegate adds d to the delegates of the wallet at addr.
func (s *Service) AddDelegate(ctx context.Context, addr, caller, d address.Address) ([]address.Address, error) {
	w, err := s.repo.Get(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := w.AddDelegate(ctx, caller, d); err != nil {
		return nil, err
	}
	return w.Delegates(), nil
}

// RemoveDelegate removes d from the delegates of the wallet at addr.
func (s *Service) RemoveDelegate(ctx context.Context, addr, caller, d address.Address) ([]address.Address, error) {
	w, err := s.repo.Get(ctx, addr)
	if err != nil {
		return nil, err
	}
	if err := w.RemoveDelegate(ctx, caller, d); err != nil {
		return nil, err
	}
	return w.Delegates(), nil
}

// TransferInput captures the data needed to move funds out of a wallet.
type TransferInput struct {
	Wallet    address.Address
	Caller    address.Address
	Recipient address.Address
	Asset     asset.Asset
	Amount    decimal.Decimal
}

// TransferResult describes a completed transfer.
type TransferResult struct {
	Wallet        address.Address
	Recipient     address.Address
	Asset         asset.Asset
	Amount        decimal.Decimal
	WalletBalance decimal.Decimal
	CompletedAt   time.Time
}

// Transfer moves funds out of a wallet on behalf of its owner or a delegate.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	w, err := s.repo.Get(ctx, input.Wallet)
	if err != nil {
		return TransferResult{}, err
	}
	if err := w.Transfer(ctx, input.Caller, input.Recipient, input.Asset, input.Amount); err != nil {
		if s.logger != nil {
			s.logger.Warn("wallet.transfer rejected",
				slog.String("wallet", input.Wallet.String()),
				slog.String("caller", input.Caller.String()),
				slog.Any("error", err),
			)
		}
		return TransferResult{}, err
	}

	balance, err := w.Balance(ctx, input.Asset)
	if err != nil {
		return TransferResult{}, err
	}
	if s.logger != nil {
		s.logger.Info("wallet.transfer completed",
			slog.String("wallet", input.Wallet.String()),
			slog.String("caller", input.Caller.String()),
			slog.String("recipient", input.Recipient.String()),
			slog.String("asset", input.Asset.Code()),
			slog.String("amount", input.Amount.String()),
		)
	}

	return TransferResult{
		Wallet:        input.Wallet,
		Recipient:     input.Recipient,
		Asset:         input.Asset,
		Amount:        input.Amount,
		WalletBalance: balance,
		CompletedAt:   time.Now().UTC(),
	}, nil
}

// Deposit moves funds from sender into the wallet at addr.
func (s *Service) Deposit(ctx context.Context, addr, sender address.Address, a asset.Asset, amount decimal.Decimal) (Balance, error) {
	w, err := s.repo.Get(ctx, addr)
	if err != nil {
		return Balance{}, err
	}
	if err := w.Deposit(ctx, sender, a, amount); err != nil {
		return Balance{}, err
	}
	return s.balanceOf(ctx, w, a)
}

// Balance returns the holdings of the wallet at addr.
func (s *Service) Balance(ctx context.Context, addr address.Address, a asset.Asset) (Balance, error) {
	w, err := s.repo.Get(ctx, addr)
	if err != nil {
		return Balance{}, err
	}
	return s.balanceOf(ctx, w, a)
}

func (s *Service) balanceOf(ctx context.Context, w *Wallet, a asset.Asset) (Balance, error) {
	amount, err := w.Balance(ctx, a)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Wallet: w.Address(), Asset: a, Amount: amount, AsOf: time.Now().UTC()}, nil
}
