package wallet

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
)

var (
	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("wallet already initialized")
	// ErrUnauthorized is returned when the caller lacks the required role.
	ErrUnauthorized = errors.New("caller is not authorized")
	// ErrTransferFailed wraps a failure of the underlying asset movement.
	ErrTransferFailed = errors.New("transfer failed")
	// ErrInvalidOwner is returned when initializing with the zero address.
	ErrInvalidOwner = errors.New("owner must not be the zero address")

	// ErrWalletNotFound is returned by repositories for unknown addresses.
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrWalletExists is returned when storing a wallet under a taken address.
	ErrWalletExists = errors.New("wallet exists")
)

// Info is a point-in-time snapshot of a wallet.
type Info struct {
	Address          address.Address
	Owner            address.Address
	Delegates        []address.Address
	Initialized      bool
	BlockInitialized uint64
}

// Balance encapsulates the holdings of a wallet in one asset.
type Balance struct {
	Wallet address.Address
	Asset  asset.Asset
	Amount decimal.Decimal
	AsOf   time.Time
}
