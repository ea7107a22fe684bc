package factory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/addrset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/chain"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/events"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/ledger"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/logging"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/wallet"
)

var (
	factoryAddr   = address.MustParse("0x00000000000000000000000000000000000000fa")
	blueprintAddr = address.MustParse("0x00000000000000000000000000000000000000b1")
	owner         = address.MustParse("0x0000000000000000000000000000000000000001")
	delegate      = address.MustParse("0x0000000000000000000000000000000000000002")
)

var testSalt = []byte("factory-test")

type fixture struct {
	factory *Factory
	store   wallet.Repository
	ledger  ledger.Ledger
	journal *events.Journal
	clock   *chain.Counter
}

// boot builds a factory at factoryAddr over led, the way one server process
// does, with a fresh in-memory wallet store.
func boot(t *testing.T, led ledger.Ledger, opts ...Option) fixture {
	t.Helper()
	clock := chain.NewCounter(0)
	journal := events.NewJournal(logging.Discard())
	bank := ledger.NewBank(led)
	deps := wallet.Deps{Bank: bank, Clock: clock, Events: journal}
	store := wallet.NewMemoryRepository()
	blueprint := wallet.New(blueprintAddr, deps)
	opts = append([]Option{WithActivity(bank)}, opts...)
	return fixture{
		factory: New(factoryAddr, blueprint, store, clock, logging.Discard(), opts...),
		store:   store,
		ledger:  led,
		journal: journal,
		clock:   clock,
	}
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return boot(t, ledger.NewInMemory(), WithSalt(testSalt))
}

func TestNewRecordsBlueprintAndBlock(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, factoryAddr, f.factory.Address())
	require.Equal(t, blueprintAddr, f.factory.Blueprint())
	require.Equal(t, uint64(1), f.factory.BlockCreated())
}

func TestInstantiateReturnsInitializedWallet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	predicted := f.factory.Predict()
	addr, err := f.factory.Instantiate(ctx, owner, []address.Address{delegate})
	require.NoError(t, err)
	require.Equal(t, predicted, addr)
	require.Equal(t, address.DeriveSalted(factoryAddr, testSalt, 1), addr)

	w, err := f.store.Get(ctx, addr)
	require.NoError(t, err)
	require.True(t, w.Initialized())
	require.Equal(t, owner, w.Owner())
	require.Equal(t, []address.Address{delegate}, w.Delegates())

	// the instantiated wallet cannot be claimed by anyone else
	require.ErrorIs(t, w.Initialize(ctx, delegate, nil), wallet.ErrAlreadyInitialized)

	second, err := f.factory.CreateWallet(ctx, owner, nil)
	require.NoError(t, err)
	require.NotEqual(t, addr, second)
	require.Equal(t, 2, f.factory.Produced())
}

func TestInstantiateFailureStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	next := f.factory.Predict()
	_, err := f.factory.Instantiate(ctx, owner, []address.Address{delegate, delegate})
	require.ErrorIs(t, err, addrset.ErrAlreadyMember)

	_, err = f.factory.Instantiate(ctx, address.Zero, nil)
	require.ErrorIs(t, err, wallet.ErrInvalidOwner)

	require.Zero(t, f.factory.Produced())
	require.Zero(t, f.journal.Len())
	require.Zero(t, f.clock.Current()-f.factory.BlockCreated())
	require.Equal(t, next, f.factory.Predict())
	_, err = f.store.Get(ctx, next)
	require.ErrorIs(t, err, wallet.ErrWalletNotFound)
}

func TestBlueprintStateIsNeverCopied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.factory.blueprint.Initialize(ctx, delegate, []address.Address{owner}))

	addr, err := f.factory.Instantiate(ctx, owner, nil)
	require.NoError(t, err)
	w, err := f.store.Get(ctx, addr)
	require.NoError(t, err)
	require.Equal(t, owner, w.Owner())
	require.Empty(t, w.Delegates())
}

func TestDiscard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	addr, err := f.factory.Instantiate(ctx, owner, nil)
	require.NoError(t, err)

	require.ErrorIs(t, f.factory.Discard(ctx, blueprintAddr), ErrNotProduced)
	require.NoError(t, f.factory.Discard(ctx, addr))
	require.ErrorIs(t, f.factory.Discard(ctx, addr), ErrNotProduced)

	_, err = f.store.Get(ctx, addr)
	require.ErrorIs(t, err, wallet.ErrWalletNotFound)
	require.Zero(t, f.factory.Produced())
}

func TestCatalogResolve(t *testing.T) {
	c := NewCatalog()
	_, err := c.Resolve(address.Zero)
	require.ErrorIs(t, err, ErrFactoryNotFound)

	f := newFixture(t)
	c.Register(f.factory)

	got, err := c.Resolve(address.Zero)
	require.NoError(t, err)
	require.Same(t, f.factory, got)

	got, err = c.Resolve(factoryAddr)
	require.NoError(t, err)
	require.Same(t, f.factory, got)

	_, err = c.Resolve(owner)
	require.ErrorIs(t, err, ErrFactoryNotFound)
}

func TestRestartDoesNotReuseFundedAddresses(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	attacker := address.MustParse("0x00000000000000000000000000000000000000ee")

	first := boot(t, led)
	funded, err := first.factory.Instantiate(ctx, owner, nil)
	require.NoError(t, err)
	_, err = led.Issue(ctx, funded, asset.Native(), decimal.NewFromInt(100))
	require.NoError(t, err)

	// same factory address, nonce back at zero, wallet store empty
	second := boot(t, led)
	taken, err := second.factory.Instantiate(ctx, attacker, nil)
	require.NoError(t, err)
	require.NotEqual(t, funded, taken)

	w, err := second.store.Get(ctx, taken)
	require.NoError(t, err)
	bal, err := w.Balance(ctx, asset.Native())
	require.NoError(t, err)
	require.True(t, bal.IsZero())

	got, err := led.Balance(ctx, funded, asset.Native())
	require.NoError(t, err)
	require.Equal(t, "100", got.String())
}

func TestInstantiateSkipsAddressesWithLedgerHistory(t *testing.T) {
	ctx := context.Background()
	led := ledger.NewInMemory()
	attacker := address.MustParse("0x00000000000000000000000000000000000000ee")

	// two boots forced onto the same salt derive the same first address
	first := boot(t, led, WithSalt(testSalt))
	funded, err := first.factory.Instantiate(ctx, owner, nil)
	require.NoError(t, err)
	_, err = led.Issue(ctx, funded, asset.Native(), decimal.NewFromInt(100))
	require.NoError(t, err)

	second := boot(t, led, WithSalt(testSalt))
	require.Equal(t, funded, second.factory.Predict())

	_, err = second.factory.Instantiate(ctx, attacker, nil)
	require.ErrorIs(t, err, ErrAddressInUse)
	require.ErrorIs(t, err, wallet.ErrWalletExists)
	require.Zero(t, second.journal.Len())
	_, err = second.store.Get(ctx, funded)
	require.ErrorIs(t, err, wallet.ErrWalletNotFound)

	// the burned address is never offered again
	require.NotEqual(t, funded, second.factory.Predict())
	next, err := second.factory.Instantiate(ctx, attacker, nil)
	require.NoError(t, err)
	require.NotEqual(t, funded, next)
}

func TestInstantiateIfAdmitRejectionChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	taken := errors.New("taken")

	next := f.factory.Predict()
	block := f.clock.Current()
	var shown address.Address
	_, err := f.factory.InstantiateIf(ctx, owner, nil, func(a address.Address) error {
		shown = a
		return taken
	})
	require.ErrorIs(t, err, taken)
	require.Equal(t, next, shown)

	require.Equal(t, next, f.factory.Predict())
	require.Equal(t, block, f.clock.Current())
	require.Zero(t, f.journal.Len())
	require.Zero(t, f.factory.Produced())
}

type failingRepository struct {
	wallet.Repository
}

func (failingRepository) Create(context.Context, *wallet.Wallet) error {
	return errors.New("store down")
}

func TestStoreFailureEmitsNothing(t *testing.T) {
	clock := chain.NewCounter(0)
	journal := events.NewJournal(logging.Discard())
	deps := wallet.Deps{Bank: ledger.NewBank(ledger.NewInMemory()), Clock: clock, Events: journal}
	store := failingRepository{Repository: wallet.NewMemoryRepository()}
	f := New(factoryAddr, wallet.New(blueprintAddr, deps), store, clock, logging.Discard())

	next := f.Predict()
	_, err := f.Instantiate(context.Background(), owner, nil)
	require.Error(t, err)
	require.Zero(t, journal.Len())
	require.Zero(t, f.Produced())
	require.Equal(t, next, f.Predict())
}
