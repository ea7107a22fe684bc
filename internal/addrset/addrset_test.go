package addrset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ChicoBitcoinJoe/delegated-wallet/internal/address"
)

func addr(b byte) address.Address {
	var a address.Address
	a[address.Size-1] = b
	return a
}

// checkInvariant verifies positionOf and members describe the same set.
func checkInvariant(t *testing.T, s *Set) {
	t.Helper()
	require.Equal(t, len(s.members), len(s.positionOf))
	require.Equal(t, len(s.members), s.Len())
	for a, i := range s.positionOf {
		require.Less(t, i, len(s.members))
		require.Equal(t, a, s.members[i])
	}
}

func TestAddAndLookup(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(addr(1)))
	require.NoError(t, s.Add(addr(2)))
	require.NoError(t, s.Add(addr(3)))

	require.True(t, s.Contains(addr(2)))
	require.False(t, s.Contains(addr(9)))

	i, err := s.IndexOf(addr(3))
	require.NoError(t, err)
	require.Equal(t, 2, i)

	a, err := s.At(0)
	require.NoError(t, err)
	require.Equal(t, addr(1), a)

	require.Equal(t, []address.Address{addr(1), addr(2), addr(3)}, s.Members())
	checkInvariant(t, s)
}

func TestFailuresDoNotMutate(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(addr(1)))
	require.NoError(t, s.Add(addr(2)))
	before := s.Members()

	require.ErrorIs(t, s.Add(addr(1)), ErrAlreadyMember)
	require.ErrorIs(t, s.Remove(addr(7)), ErrNotMember)
	_, err := s.IndexOf(addr(7))
	require.ErrorIs(t, err, ErrNotMember)
	_, err = s.At(2)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.At(-1)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	require.Equal(t, before, s.Members())
	checkInvariant(t, s)
}

func TestRemoveSwapsLastIntoSlot(t *testing.T) {
	s, err := FromList([]address.Address{addr(0), addr(1), addr(2)})
	require.NoError(t, err)

	require.NoError(t, s.Remove(addr(0)))
	require.Equal(t, []address.Address{addr(2), addr(1)}, s.Members())

	i, err := s.IndexOf(addr(2))
	require.NoError(t, err)
	require.Equal(t, 0, i)
	checkInvariant(t, s)
}

func TestRemoveLastIsPlainPop(t *testing.T) {
	s, err := FromList([]address.Address{addr(0), addr(1), addr(2)})
	require.NoError(t, err)

	require.NoError(t, s.Remove(addr(2)))
	require.Equal(t, []address.Address{addr(0), addr(1)}, s.Members())
	checkInvariant(t, s)
}

func TestRemoveOnlyMember(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(addr(5)))
	require.NoError(t, s.Remove(addr(5)))

	require.Zero(t, s.Len())
	require.False(t, s.Contains(addr(5)))
	require.Empty(t, s.Members())
	checkInvariant(t, s)

	require.NoError(t, s.Add(addr(5)))
	i, err := s.IndexOf(addr(5))
	require.NoError(t, err)
	require.Zero(t, i)
}

func TestFromListRejectsDuplicates(t *testing.T) {
	s, err := FromList([]address.Address{addr(1), addr(2), addr(1)})
	require.ErrorIs(t, err, ErrAlreadyMember)
	require.Nil(t, s)
}

func TestMembersIsACopy(t *testing.T) {
	s, err := FromList([]address.Address{addr(1)})
	require.NoError(t, err)

	m := s.Members()
	m[0] = addr(9)
	require.True(t, s.Contains(addr(1)))
	a, err := s.At(0)
	require.NoError(t, err)
	require.Equal(t, addr(1), a)
}

func TestRandomOperationsKeepInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New()
	shadow := map[address.Address]bool{}

	for step := 0; step < 2000; step++ {
		a := addr(byte(rng.Intn(32)))
		if rng.Intn(2) == 0 {
			err := s.Add(a)
			if shadow[a] {
				require.ErrorIs(t, err, ErrAlreadyMember)
			} else {
				require.NoError(t, err)
				shadow[a] = true
			}
		} else {
			wasLast := s.Len() > 0 && s.members[s.Len()-1] == a
			var moved address.Address
			var slot int
			if shadow[a] && !wasLast {
				slot = s.positionOf[a]
				moved = s.members[s.Len()-1]
			}

			err := s.Remove(a)
			if !shadow[a] {
				require.ErrorIs(t, err, ErrNotMember)
			} else {
				require.NoError(t, err)
				delete(shadow, a)
				if !wasLast {
					i, err := s.IndexOf(moved)
					require.NoError(t, err)
					require.Equal(t, slot, i)
				}
			}
		}
		require.Equal(t, len(shadow), s.Len())
		checkInvariant(t, s)
	}
}
