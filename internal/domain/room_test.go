package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectRoomKeySymmetry(t *testing.T) {
	assert.Equal(t, DirectRoomKey("alice", "bob"), DirectRoomKey("bob", "alice"))
	assert.Equal(t, "dm_alice_bob", DirectRoomKey("bob", "alice"))
}

func TestDirectRoomKeyDistinctPairs(t *testing.T) {
	assert.NotEqual(t, DirectRoomKey("a", "b"), DirectRoomKey("a", "c"))
}

func TestSortedPair(t *testing.T) {
	lo, hi := SortedPair("z", "a")
	assert.Equal(t, "a", lo)
	assert.Equal(t, "z", hi)

	lo, hi = SortedPair("a", "z")
	assert.Equal(t, "a", lo)
	assert.Equal(t, "z", hi)
}
