// Package registry keeps, per owner, the set of wallets that owner tracks.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/addrset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/chain"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/events"
)

// Factory produces initialized wallets.
type Factory interface {
	Instantiate(ctx context.Context, owner address.Address, delegates []address.Address) (address.Address, error)
}

// GuardedFactory is implemented by factories that let the caller veto the
// address a wallet would get before creating anything.
type GuardedFactory interface {
	InstantiateIf(ctx context.Context, owner address.Address, delegates []address.Address, admit func(address.Address) error) (address.Address, error)
}

// Discarder is implemented by factories that can undo an Instantiate.
type Discarder interface {
	Discard(ctx context.Context, wallet address.Address) error
}

// Registry maps owners to their wallets. The registry does not verify that
// a caller actually owns a wallet it records.
type Registry struct {
	mu             sync.RWMutex
	walletsByOwner map[address.Address]*addrset.Set
	blockCreated   uint64

	clock  chain.Clock
	events events.Emitter
	logger *slog.Logger
}

// New deploys an empty registry.
func New(clock chain.Clock, emitter events.Emitter, logger *slog.Logger) *Registry {
	if emitter == nil {
		emitter = events.Discard
	}
	return &Registry{
		walletsByOwner: make(map[address.Address]*addrset.Set),
		blockCreated:   clock.Advance(),
		clock:          clock,
		events:         emitter,
		logger:         logger,
	}
}

// CreateWallet has f produce a wallet owned by caller and records it under
// caller. A GuardedFactory is asked to check the caller's set first, so a
// collision fails before any wallet, block or event exists. Other factories
// are rolled back through Discard when recording fails.
func (r *Registry) CreateWallet(ctx context.Context, caller address.Address, f Factory, delegates []address.Address) (address.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		wallet address.Address
		err    error
	)
	if g, ok := f.(GuardedFactory); ok {
		wallet, err = g.InstantiateIf(ctx, caller, delegates, func(next address.Address) error {
			if set, ok := r.walletsByOwner[caller]; ok && set.Contains(next) {
				return fmt.Errorf("record wallet: %w", addrset.ErrAlreadyMember)
			}
			return nil
		})
	} else {
		wallet, err = f.Instantiate(ctx, caller, delegates)
	}
	if err != nil {
		return address.Zero, err
	}

	if err := r.setFor(caller).Add(wallet); err != nil {
		r.rollback(ctx, f, wallet)
		return address.Zero, fmt.Errorf("record wallet: %w", err)
	}

	r.events.Emit(ctx, events.WalletCreated(caller, wallet, r.clock.Advance()))
	return wallet, nil
}

// AddWallet records an existing wallet under caller.
func (r *Registry) AddWallet(ctx context.Context, caller, wallet address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.setFor(caller).Add(wallet); err != nil {
		return err
	}

	r.events.Emit(ctx, events.WalletAdded(caller, wallet, r.clock.Advance()))
	return nil
}

// RemoveWallet forgets wallet for caller. The wallet itself is untouched.
func (r *Registry) RemoveWallet(ctx context.Context, caller, wallet address.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.walletsByOwner[caller]
	if !ok {
		return addrset.ErrNotMember
	}
	if err := set.Remove(wallet); err != nil {
		return err
	}
	if set.Len() == 0 {
		delete(r.walletsByOwner, caller)
	}

	r.events.Emit(ctx, events.WalletRemoved(caller, wallet, r.clock.Advance()))
	return nil
}

// Wallets returns owner's wallets in their current order.
func (r *Registry) Wallets(owner address.Address) []address.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.walletsByOwner[owner]
	if !ok {
		return []address.Address{}
	}
	return set.Members()
}

func (r *Registry) TotalWallets(owner address.Address) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if set, ok := r.walletsByOwner[owner]; ok {
		return set.Len()
	}
	return 0
}

func (r *Registry) Contains(owner, wallet address.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.walletsByOwner[owner]
	return ok && set.Contains(wallet)
}

// Index returns owner's wallet at position i.
func (r *Registry) Index(owner address.Address, i int) (address.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.walletsByOwner[owner]
	if !ok {
		return address.Zero, addrset.ErrIndexOutOfRange
	}
	return set.At(i)
}

// IndexOf returns the position of wallet among owner's wallets.
func (r *Registry) IndexOf(owner, wallet address.Address) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.walletsByOwner[owner]
	if !ok {
		return 0, addrset.ErrNotMember
	}
	return set.IndexOf(wallet)
}

func (r *Registry) BlockCreated() uint64 {
	return r.blockCreated
}

// setFor returns owner's set, creating it. Callers hold the write lock.
func (r *Registry) setFor(owner address.Address) *addrset.Set {
	set, ok := r.walletsByOwner[owner]
	if !ok {
		set = addrset.New()
		r.walletsByOwner[owner] = set
	}
	return set
}

func (r *Registry) rollback(ctx context.Context, f Factory, wallet address.Address) {
	d, ok := f.(Discarder)
	if !ok {
		return
	}
	if err := d.Discard(ctx, wallet); err != nil && r.logger != nil {
		r.logger.Error("registry.rollback failed",
			slog.String("wallet", wallet.String()),
			slog.Any("error", err),
		)
	}
}
