package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
)

var (
	accountA = address.MustParse("0x000000000000000000000000000000000000000a")
	accountB = address.MustParse("0x000000000000000000000000000000000000000b")
	token    = asset.Token(address.MustParse("0x00000000000000000000000000000000000000c0"))
)

func TestInMemoryLedger_TransferMaintainsBalance(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	// seed account a with funds via manual mutation (test helper)
	SeedBalance(l, accountA, asset.Native(), decimal.NewFromInt(10))

	res, err := l.Transfer(ctx, accountA, accountB, asset.Native(), decimal.RequireFromString("1.5"))
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if !res.FromBalance.Equal(decimal.RequireFromString("8.5")) {
		t.Fatalf("expected from balance 8.5, got %s", res.FromBalance)
	}
	if !res.ToBalance.Equal(decimal.RequireFromString("1.5")) {
		t.Fatalf("expected to balance 1.5, got %s", res.ToBalance)
	}

	ledgerImpl := l.(*inMemoryLedger)
	total := ledgerImpl.balances[balanceKey{accountA, "native"}].Add(ledgerImpl.balances[balanceKey{accountB, "native"}])
	if !total.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("ledger not balanced, total=%s", total)
	}
}

func TestInMemoryLedger_AssetsAreSeparate(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	SeedBalance(l, accountA, asset.Native(), decimal.NewFromInt(1))

	if _, err := l.Transfer(ctx, accountA, accountB, token, decimal.NewFromInt(1)); err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds in token, got %v", err)
	}

	bal, err := l.Balance(ctx, accountA, asset.Native())
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !bal.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("native balance should be untouched, got %s", bal)
	}
}

func TestInMemoryLedger_RejectsNonPositive(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	SeedBalance(l, accountA, asset.Native(), decimal.NewFromInt(5))

	for _, amt := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-1)} {
		if _, err := l.Transfer(ctx, accountA, accountB, asset.Native(), amt); err != ErrInvalidAmount {
			t.Fatalf("expected invalid amount for %s, got %v", amt, err)
		}
		if _, err := l.Issue(ctx, accountA, asset.Native(), amt); err != ErrInvalidAmount {
			t.Fatalf("expected invalid amount issuing %s, got %v", amt, err)
		}
	}
}

func TestInMemoryLedger_InsufficientLeavesBalances(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	SeedBalance(l, accountA, asset.Native(), decimal.NewFromInt(1))

	if _, err := l.Transfer(ctx, accountA, accountB, asset.Native(), decimal.NewFromInt(2)); err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	a, _ := l.Balance(ctx, accountA, asset.Native())
	b, _ := l.Balance(ctx, accountB, asset.Native())
	if !a.Equal(decimal.NewFromInt(1)) || !b.IsZero() {
		t.Fatalf("balances changed after failed transfer: a=%s b=%s", a, b)
	}
}

func TestInMemoryLedger_Issue(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	res, err := l.Issue(ctx, accountA, token, decimal.NewFromInt(3))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !res.ToBalance.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected balance 3, got %s", res.ToBalance)
	}
	if !res.FromBalance.Equal(decimal.NewFromInt(-3)) {
		t.Fatalf("expected issuance account at -3, got %s", res.FromBalance)
	}
}

func TestInMemoryLedger_ConcurrentTransfers(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	SeedBalance(l, accountA, asset.Native(), decimal.NewFromInt(100))
	ledgerImpl := l.(*inMemoryLedger)

	const workers = 10
	amount := decimal.NewFromInt(5)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := l.Transfer(ctx, accountA, accountB, asset.Native(), amount); err != nil {
				t.Errorf("transfer %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	total := ledgerImpl.balances[balanceKey{accountA, "native"}].Add(ledgerImpl.balances[balanceKey{accountB, "native"}])
	if !total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("ledger not balanced after concurrency, total=%s", total)
	}
}

func TestBankMovesThroughLedger(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	bank := NewBank(l)
	SeedBalance(l, accountA, token, decimal.NewFromInt(2))

	if err := bank.MoveValue(ctx, token, accountA, accountB, decimal.NewFromInt(2)); err != nil {
		t.Fatalf("move: %v", err)
	}
	got, err := bank.BalanceOf(ctx, accountB, token)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected 2, got %s", got)
	}
}

func TestInMemoryLedger_HasActivity(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	if active, _ := l.HasActivity(ctx, accountA); active {
		t.Fatalf("fresh account reported activity")
	}

	// a rejected posting leaves no trace
	if _, err := l.Transfer(ctx, accountA, accountB, asset.Native(), decimal.NewFromInt(1)); err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if active, _ := l.HasActivity(ctx, accountB); active {
		t.Fatalf("failed transfer marked recipient active")
	}

	if _, err := l.Issue(ctx, accountA, token, decimal.NewFromInt(2)); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := l.Transfer(ctx, accountA, accountB, token, decimal.NewFromInt(2)); err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	// both sides stay active after the balance drains back to zero
	for _, account := range []address.Address{accountA, accountB} {
		active, err := NewBank(l).HasActivity(ctx, account)
		if err != nil {
			t.Fatalf("has activity: %v", err)
		}
		if !active {
			t.Fatalf("expected %s to be active", account)
		}
	}
}
