// Package addrset implements an indexed set of addresses: a dense slice of
// members plus a position index, giving O(1) add, remove, membership and
// index lookups.
//
// Removal swaps the last member into the freed slot, so member order is only
// insertion order until the first removal.
package addrset

import (
	"errors"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
)

var (
	// ErrAlreadyMember is returned when adding an address that is in the set.
	ErrAlreadyMember = errors.New("address is already a member")
	// ErrNotMember is returned when removing or locating an absent address.
	ErrNotMember = errors.New("address is not a member")
	// ErrIndexOutOfRange is returned by At for an index past the end.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Set is not safe for concurrent use. Its owner serializes access.
type Set struct {
	members    []address.Address
	positionOf map[address.Address]int
}

// New returns an empty set.
func New() *Set {
	return &Set{positionOf: make(map[address.Address]int)}
}

// Add appends a to the set.
func (s *Set) Add(a address.Address) error {
	if _, ok := s.positionOf[a]; ok {
		return ErrAlreadyMember
	}
	s.members = append(s.members, a)
	s.positionOf[a] = len(s.members) - 1
	return nil
}

// Remove deletes a, moving the last member into its slot.
func (s *Set) Remove(a address.Address) error {
	i, ok := s.positionOf[a]
	if !ok {
		return ErrNotMember
	}

	lastIdx := len(s.members) - 1
	last := s.members[lastIdx]
	s.members[i] = last
	s.positionOf[last] = i

	s.members[lastIdx] = address.Zero
	s.members = s.members[:lastIdx]
	delete(s.positionOf, a)
	return nil
}

// Contains reports whether a is a member.
func (s *Set) Contains(a address.Address) bool {
	_, ok := s.positionOf[a]
	return ok
}

// IndexOf returns the current position of a.
func (s *Set) IndexOf(a address.Address) (int, error) {
	i, ok := s.positionOf[a]
	if !ok {
		return 0, ErrNotMember
	}
	return i, nil
}

// At returns the member at position i.
func (s *Set) At(i int) (address.Address, error) {
	if i < 0 || i >= len(s.members) {
		return address.Address{}, ErrIndexOutOfRange
	}
	return s.members[i], nil
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.members)
}

// Members returns a copy of the members in their current order.
func (s *Set) Members() []address.Address {
	out := make([]address.Address, len(s.members))
	copy(out, s.members)
	return out
}

// FromList builds a set from as, failing with ErrAlreadyMember on the first
// duplicate. Nothing is returned on failure.
func FromList(as []address.Address) (*Set, error) {
	s := New()
	for _, a := range as {
		if err := s.Add(a); err != nil {
			return nil, err
		}
	}
	return s, nil
}
