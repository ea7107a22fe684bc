// Package events is the audit trail of wallet and registry state changes.
// Records are immutable once appended; nothing reads them back to make
// decisions.
package events

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/asset"
)

// Kind names an event.
type Kind string

const (
	KindWalletInitialized Kind = "WalletInitialized"
	KindDelegateAdded     Kind = "DelegateAdded"
	KindDelegateRemoved   Kind = "DelegateRemoved"
	KindTransferExecuted  Kind = "TransferExecuted"
	KindWalletCreated     Kind = "WalletCreated"
	KindWalletAdded       Kind = "WalletAdded"
	KindWalletRemoved     Kind = "WalletRemoved"
)

// Event is a single audit record. Fields that do not apply to Kind are left
// at their zero value.
type Event struct {
	ID        string
	Seq       uint64
	Block     uint64
	Kind      Kind
	Wallet    address.Address
	Owner     address.Address
	Delegate  address.Address
	Recipient address.Address
	Asset     asset.Asset
	Amount    decimal.Decimal
	At        time.Time
}

// Emitter accepts events. Emit never fails from the caller's point of view:
// the state change it describes has already committed.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Sink receives every event appended to a Journal.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// Discard drops every event.
var Discard Emitter = discard{}

type discard struct{}

func (discard) Emit(context.Context, Event) {}

func WalletInitialized(wallet, owner address.Address, block uint64) Event {
	return Event{Kind: KindWalletInitialized, Wallet: wallet, Owner: owner, Block: block}
}

func DelegateAdded(wallet, delegate address.Address, block uint64) Event {
	return Event{Kind: KindDelegateAdded, Wallet: wallet, Delegate: delegate, Block: block}
}

func DelegateRemoved(wallet, delegate address.Address, block uint64) Event {
	return Event{Kind: KindDelegateRemoved, Wallet: wallet, Delegate: delegate, Block: block}
}

func TransferExecuted(wallet, recipient address.Address, a asset.Asset, amount decimal.Decimal, block uint64) Event {
	return Event{Kind: KindTransferExecuted, Wallet: wallet, Recipient: recipient, Asset: a, Amount: amount, Block: block}
}

func WalletCreated(owner, wallet address.Address, block uint64) Event {
	return Event{Kind: KindWalletCreated, Owner: owner, Wallet: wallet, Block: block}
}

func WalletAdded(owner, wallet address.Address, block uint64) Event {
	return Event{Kind: KindWalletAdded, Owner: owner, Wallet: wallet, Block: block}
}

func WalletRemoved(owner, wallet address.Address, block uint64) Event {
	return Event{Kind: KindWalletRemoved, Owner: owner, Wallet: wallet, Block: block}
}

// Fields flattens e into string pairs, skipping fields that do not apply.
func (e Event) Fields() map[string]string {
	out := map[string]string{
		"id":    e.ID,
		"kind":  string(e.Kind),
		"seq":   strconv.FormatUint(e.Seq, 10),
		"block": strconv.FormatUint(e.Block, 10),
	}
	if !e.Wallet.IsZero() {
		out["wallet"] = e.Wallet.String()
	}
	if !e.Owner.IsZero() {
		out["owner"] = e.Owner.String()
	}
	if !e.Delegate.IsZero() {
		out["delegate"] = e.Delegate.String()
	}
	if e.Kind == KindTransferExecuted {
		out["recipient"] = e.Recipient.String()
		out["asset"] = e.Asset.Code()
		out["amount"] = e.Amount.String()
	}
	return out
}
