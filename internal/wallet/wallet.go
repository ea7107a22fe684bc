// Package wallet implements the delegated custody wallet: one owner who
// manages a set of delegates, and transfers that either may initiate.
package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/addrset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/chain"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/events"
)

// Deps are the collaborators a wallet calls out to.
type Deps struct {
	Bank   asset.Bank
	Clock  chain.Clock
	Events events.Emitter
}

// Wallet holds assets at its address. It starts uninitialized and becomes
// active after exactly one Initialize call. Every method is safe for
// concurrent use; each either commits fully or changes nothing.
type Wallet struct {
	mu               sync.RWMutex
	address          address.Address
	owner            address.Address
	delegates        *addrset.Set
	initialized      bool
	blockInitialized uint64

	deps Deps
}

// New returns an uninitialized wallet at addr.
func New(addr address.Address, deps Deps) *Wallet {
	if deps.Events == nil {
		deps.Events = events.Discard
	}
	return &Wallet{
		address:   addr,
		delegates: addrset.New(),
		deps:      deps,
	}
}

// Clone returns a fresh uninitialized wallet at addr sharing w's
// collaborators. None of w's state is copied.
func (w *Wallet) Clone(addr address.Address) *Wallet {
	return New(addr, w.deps)
}

// CloneDeferred is Clone with the clone's events held back until the
// returned Deferred is committed.
func (w *Wallet) CloneDeferred(addr address.Address) (*Wallet, *events.Deferred) {
	held := events.NewDeferred(w.deps.Events)
	deps := w.deps
	deps.Events = held
	return New(addr, deps), held
}

// Initialize sets the owner and the initial delegates. Anyone may call it,
// once. On any failure the wallet stays uninitialized.
func (w *Wallet) Initialize(ctx context.Context, owner address.Address, initialDelegates []address.Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.initialized {
		return ErrAlreadyInitialized
	}
	if owner.IsZero() {
		return ErrInvalidOwner
	}
	delegates, err := addrset.FromList(initialDelegates)
	if err != nil {
		return fmt.Errorf("seed delegates: %w", err)
	}

	w.owner = owner
	w.delegates = delegates
	w.initialized = true
	w.blockInitialized = w.deps.Clock.Advance()

	w.deps.Events.Emit(ctx, events.WalletInitialized(w.address, owner, w.blockInitialized))
	return nil
}

// AddDelegate grants d the right to transfer. Owner only.
func (w *Wallet) AddDelegate(ctx context.Context, caller, d address.Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isOwner(caller) {
		return ErrUnauthorized
	}
	if err := w.delegates.Add(d); err != nil {
		return err
	}

	w.deps.Events.Emit(ctx, events.DelegateAdded(w.address, d, w.deps.Clock.Advance()))
	return nil
}

// RemoveDelegate revokes d. Owner only.
func (w *Wallet) RemoveDelegate(ctx context.Context, caller, d address.Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isOwner(caller) {
		return ErrUnauthorized
	}
	if err := w.delegates.Remove(d); err != nil {
		return err
	}

	w.deps.Events.Emit(ctx, events.DelegateRemoved(w.address, d, w.deps.Clock.Advance()))
	return nil
}

// Transfer sends amount of a to recipient. The caller must be the owner or a
// current delegate at the time of the call.
func (w *Wallet) Transfer(ctx context.Context, caller, recipient address.Address, a asset.Asset, amount decimal.Decimal) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.canTransfer(caller) {
		return ErrUnauthorized
	}
	if err := w.deps.Bank.MoveValue(ctx, a, w.address, recipient, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	w.deps.Events.Emit(ctx, events.TransferExecuted(w.address, recipient, a, amount, w.deps.Clock.Advance()))
	return nil
}

// Deposit moves amount of a from sender into the wallet. Deposits are open to
// anyone whether or not the wallet is initialized.
func (w *Wallet) Deposit(ctx context.Context, sender address.Address, a asset.Asset, amount decimal.Decimal) error {
	if err := w.deps.Bank.MoveValue(ctx, a, sender, w.address, amount); err != nil {
		return fmt.Errorf("deposit: %w", err)
	}
	return nil
}

// Balance returns the wallet's holdings of a.
func (w *Wallet) Balance(ctx context.Context, a asset.Asset) (decimal.Decimal, error) {
	return w.deps.Bank.BalanceOf(ctx, w.address, a)
}

func (w *Wallet) isOwner(caller address.Address) bool {
	return w.initialized && caller == w.owner
}

func (w *Wallet) canTransfer(caller address.Address) bool {
	return w.isOwner(caller) || (w.initialized && w.delegates.Contains(caller))
}

func (w *Wallet) Address() address.Address {
	return w.address
}

// Owner returns the zero address until the wallet is initialized.
func (w *Wallet) Owner() address.Address {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.owner
}

func (w *Wallet) Initialized() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.initialized
}

func (w *Wallet) BlockInitialized() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.blockInitialized
}

// Delegates returns the delegates in their current order. Order changes
// when a delegate other than the last one is removed.
func (w *Wallet) Delegates() []address.Address {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.delegates.Members()
}

func (w *Wallet) IsDelegate(a address.Address) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.delegates.Contains(a)
}

func (w *Wallet) Info() Info {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Info{
		Address:          w.address,
		Owner:            w.owner,
		Delegates:        w.delegates.Members(),
		Initialized:      w.initialized,
		BlockInitialized: w.blockInitialized,
	}
}
