package address

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// Size is the binary size of an address.
	Size = 20
	// HexLen is the length of the hex encoding without the prefix.
	HexLen = Size * 2
	// Prefix is the prefix of hex encoded addresses.
	Prefix = "0x"
)

var (
	ErrAddressLen      = errors.New("bad address length")
	ErrAddressPrefix   = errors.New("bad address prefix")
	ErrAddressEncoding = errors.New("bad address encoding")
)

// Address identifies an account: a wallet, an owner, a delegate, a recipient or
// a token contract.
type Address [Size]byte

// Zero is the empty address. A wallet whose owner is Zero is uninitialized.
var Zero Address

// Parse decodes a 0x-prefixed hex string into an Address.
func Parse(s string) (Address, error) {
	if !strings.HasPrefix(s, Prefix) && !strings.HasPrefix(s, "0X") {
		return Address{}, ErrAddressPrefix
	}
	s = s[len(Prefix):]
	if len(s) != HexLen {
		return Address{}, ErrAddressLen
	}

	var a Address
	if _, err := hex.Decode(a[:], []byte(s)); err != nil {
		return Address{}, ErrAddressEncoding
	}
	return a, nil
}

// MustParse is like Parse but panics on malformed input. Meant for constants
// and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Derive returns the address of an account created by creator with the given
// nonce: the last 20 bytes of keccak256(creator || nonce).
func Derive(creator Address, nonce uint64) Address {
	return DeriveSalted(creator, nil, nonce)
}

// DeriveSalted is Derive with salt mixed in between creator and nonce:
// keccak256(creator || salt || nonce). An empty salt gives Derive.
func DeriveSalted(creator Address, salt []byte, nonce uint64) Address {
	buf := make([]byte, 0, Size+len(salt)+8)
	buf = append(buf, creator[:]...)
	buf = append(buf, salt...)
	buf = binary.BigEndian.AppendUint64(buf, nonce)
	return FromSeed(buf)
}

// FromSeed hashes arbitrary bytes into an address.
func FromSeed(seed []byte) Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(seed)
	sum := h.Sum(nil)

	var a Address
	copy(a[:], sum[len(sum)-Size:])
	return a
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// String returns the 0x-prefixed lowercase hex encoding.
func (a Address) String() string {
	return Prefix + hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	addr, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseList decodes every element of ss, failing on the first bad entry.
func ParseList(ss []string) ([]Address, error) {
	out := make([]Address, 0, len(ss))
	for _, s := range ss {
		a, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Strings encodes every address in as.
func Strings(as []Address) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.String()
	}
	return out
}
