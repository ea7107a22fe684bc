package wallet

import (
	"context"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
)

// Repository keeps live wallet instances by address.
type Repository interface {
	Create(ctx context.Context, wallet *Wallet) error
	Get(ctx context.Context, addr address.Address) (*Wallet, error)
	Delete(ctx context.Context, addr address.Address) error
}
