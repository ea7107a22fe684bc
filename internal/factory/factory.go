// Package factory produces initialized wallets from a blueprint at
// addresses derived from the factory's address, a salt and a nonce.
package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/addrset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/chain"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/wallet"
)

var (
	// ErrFactoryNotFound is returned by a Catalog for unknown addresses.
	ErrFactoryNotFound = errors.New("factory not found")
	// ErrNotProduced is returned when discarding a wallet this factory did not create.
	ErrNotProduced = errors.New("wallet was not produced by this factory")
	// ErrAddressInUse is returned when the next derived address already has
	// a stored wallet or ledger history.
	ErrAddressInUse = fmt.Errorf("%w: derived address already in use", wallet.ErrWalletExists)
)

// Activity reports whether an account has ever held or moved value.
type Activity interface {
	HasActivity(ctx context.Context, account address.Address) (bool, error)
}

// Option configures a Factory.
type Option func(*Factory)

// WithSalt fixes the salt mixed into derived addresses. Factories get a
// random salt by default, so two factories at the same address never
// derive the same wallets.
func WithSalt(salt []byte) Option {
	return func(f *Factory) {
		f.salt = append([]byte(nil), salt...)
	}
}

// WithActivity makes the factory refuse derived addresses with history in a.
func WithActivity(a Activity) Option {
	return func(f *Factory) {
		f.activity = a
	}
}

// Factory clones its blueprint into fresh wallets. Produced wallets share the
// blueprint's collaborators and none of its state.
type Factory struct {
	mu           sync.Mutex
	address      address.Address
	salt         []byte
	blueprint    *wallet.Wallet
	store        wallet.Repository
	activity     Activity
	blockCreated uint64
	nonce        uint64
	produced     *addrset.Set
	logger       *slog.Logger
}

// New deploys a factory at addr producing copies of blueprint into store.
func New(addr address.Address, blueprint *wallet.Wallet, store wallet.Repository, clock chain.Clock, logger *slog.Logger, opts ...Option) *Factory {
	salt := uuid.New()
	f := &Factory{
		address:      addr,
		salt:         salt[:],
		blueprint:    blueprint,
		store:        store,
		blockCreated: clock.Advance(),
		produced:     addrset.New(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Instantiate creates a wallet owned by owner with the given delegates and
// returns its address. The wallet is stored only once initialized, so no
// one else can claim it first.
func (f *Factory) Instantiate(ctx context.Context, owner address.Address, delegates []address.Address) (address.Address, error) {
	return f.InstantiateIf(ctx, owner, delegates, nil)
}

// InstantiateIf is Instantiate, except that admit is shown the address the
// wallet would get before anything happens. If admit returns an error the
// call fails with it and changes nothing: the nonce is not consumed, no
// block passes and no event is emitted. The clone's own events are released
// only after it is stored. An address found in use is skipped for good.
func (f *Factory) InstantiateIf(ctx context.Context, owner address.Address, delegates []address.Address, admit func(address.Address) error) (address.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	addr := f.derive(f.nonce + 1)
	if admit != nil {
		if err := admit(addr); err != nil {
			return address.Zero, err
		}
	}
	if err := f.checkUnused(ctx, addr); err != nil {
		if errors.Is(err, ErrAddressInUse) {
			// never offered again
			f.nonce++
		}
		return address.Zero, err
	}

	w, held := f.blueprint.CloneDeferred(addr)
	if err := w.Initialize(ctx, owner, delegates); err != nil {
		return address.Zero, fmt.Errorf("initialize clone: %w", err)
	}
	if err := f.store.Create(ctx, w); err != nil {
		return address.Zero, fmt.Errorf("store clone: %w", err)
	}
	if err := f.produced.Add(addr); err != nil {
		return address.Zero, err
	}
	f.nonce++
	held.Commit(ctx)

	if f.logger != nil {
		f.logger.Info("factory.instantiate",
			slog.String("factory", f.address.String()),
			slog.String("wallet", addr.String()),
			slog.String("owner", owner.String()),
			slog.Uint64("nonce", f.nonce),
		)
	}
	return addr, nil
}

// checkUnused refuses addresses that already hold a wallet or have ledger
// history. Callers hold f.mu.
func (f *Factory) checkUnused(ctx context.Context, addr address.Address) error {
	if _, err := f.store.Get(ctx, addr); err == nil {
		return ErrAddressInUse
	} else if !errors.Is(err, wallet.ErrWalletNotFound) {
		return fmt.Errorf("check store: %w", err)
	}
	if f.activity == nil {
		return nil
	}
	used, err := f.activity.HasActivity(ctx, addr)
	if err != nil {
		return fmt.Errorf("check ledger history: %w", err)
	}
	if used {
		if f.logger != nil {
			f.logger.Warn("factory.address_in_use",
				slog.String("factory", f.address.String()),
				slog.String("wallet", addr.String()),
				slog.Uint64("nonce", f.nonce),
			)
		}
		return ErrAddressInUse
	}
	return nil
}

func (f *Factory) derive(nonce uint64) address.Address {
	return address.DeriveSalted(f.address, f.salt, nonce)
}

// CreateWallet is the public entrypoint for creating a wallet without
// registry bookkeeping.
func (f *Factory) CreateWallet(ctx context.Context, owner address.Address, delegates []address.Address) (address.Address, error) {
	return f.Instantiate(ctx, owner, delegates)
}

// Discard removes a wallet produced by this factory from the store.
func (f *Factory) Discard(ctx context.Context, addr address.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.produced.Contains(addr) {
		return ErrNotProduced
	}
	if err := f.store.Delete(ctx, addr); err != nil {
		return err
	}
	return f.produced.Remove(addr)
}

// Predict returns the address the next Instantiate call will use.
func (f *Factory) Predict() address.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.derive(f.nonce + 1)
}

// Salt returns the salt mixed into this factory's derived addresses.
func (f *Factory) Salt() []byte {
	return append([]byte(nil), f.salt...)
}

func (f *Factory) Address() address.Address {
	return f.address
}

// Blueprint returns the address of the wallet that produced wallets copy.
func (f *Factory) Blueprint() address.Address {
	return f.blueprint.Address()
}

func (f *Factory) BlockCreated() uint64 {
	return f.blockCreated
}

// Produced returns how many live wallets this factory has created.
func (f *Factory) Produced() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.produced.Len()
}
