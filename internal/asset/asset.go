// Package asset describes what a wallet holds and the capability that moves it.
package asset

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
)

// Kind tells native currency apart from fungible tokens.
type Kind uint8

const (
	KindNative Kind = iota
	KindToken
)

const (
	nativeCode  = "native"
	tokenPrefix = "token:"
)

// ErrInvalidAsset is returned when an asset string cannot be parsed.
var ErrInvalidAsset = errors.New("invalid asset")

// Asset is either the ledger's native currency or a token identified by its
// contract address.
type Asset struct {
	kind     Kind
	contract address.Address
}

// Native returns the native currency.
func Native() Asset {
	return Asset{kind: KindNative}
}

// Token returns the token issued by contract.
func Token(contract address.Address) Asset {
	return Asset{kind: KindToken, contract: contract}
}

// FromAddress selects the asset by address: the zero address means native
// currency, anything else is a token contract.
func FromAddress(a address.Address) Asset {
	if a.IsZero() {
		return Native()
	}
	return Token(a)
}

// Parse accepts "native", "token:<address>", or a bare address handled as in
// FromAddress. The empty string is native.
func Parse(s string) (Asset, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, nativeCode):
		return Native(), nil
	case strings.HasPrefix(s, tokenPrefix):
		a, err := address.Parse(strings.TrimPrefix(s, tokenPrefix))
		if err != nil || a.IsZero() {
			return Asset{}, ErrInvalidAsset
		}
		return Token(a), nil
	default:
		a, err := address.Parse(s)
		if err != nil {
			return Asset{}, ErrInvalidAsset
		}
		return FromAddress(a), nil
	}
}

func (a Asset) Kind() Kind {
	return a.kind
}

func (a Asset) IsNative() bool {
	return a.kind == KindNative
}

// Contract returns the token contract; ok is false for native currency.
func (a Asset) Contract() (contract address.Address, ok bool) {
	return a.contract, a.kind == KindToken
}

// Code is the stable identifier used as a ledger key and on the wire.
func (a Asset) Code() string {
	if a.kind == KindNative {
		return nativeCode
	}
	return tokenPrefix + a.contract.String()
}

func (a Asset) String() string {
	return a.Code()
}

func (a Asset) MarshalText() ([]byte, error) {
	return []byte(a.Code()), nil
}

func (a *Asset) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Mover moves value of an asset between accounts. Implementations either move
// the full amount or fail without effect.
type Mover interface {
	MoveValue(ctx context.Context, a Asset, from, to address.Address, amount decimal.Decimal) error
}

// Balances reports holdings.
type Balances interface {
	BalanceOf(ctx context.Context, account address.Address, a Asset) (decimal.Decimal, error)
}

// Bank is a Mover that can also report balances.
type Bank interface {
	Mover
	Balances
}
