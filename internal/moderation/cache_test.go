package moderation

import (
	"fmt"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func testCid(t *testing.T, s string) cid.Cid {
	t.Helper()
	mh, err := multihash.Sum([]byte(s), multihash.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.DagJSON, mh)
}

func TestCacheVerifyAndPromote(t *testing.T) {
	c := NewCache()
	origin := testCid(t, "peer-1-identity")

	require.False(t, c.IsVerified("peer-1", origin))

	var addr [20]byte
	c.AddPeer("peer-1", origin, addr)
	require.True(t, c.IsVerified("peer-1", origin))
	require.False(t, c.IsVerified("peer-1", testCid(t, "different")))
}

func TestCacheBan(t *testing.T) {
	c := NewCache()
	require.False(t, c.IsBanned("peer-2"))
	c.BanPeer("peer-2")
	require.True(t, c.IsBanned("peer-2"))
}

func TestCacheEvictsLeastRecentlyTouched(t *testing.T) {
	c := NewCache()
	for i := 0; i < maxEntries; i++ {
		c.AddPeer(fmt.Sprintf("peer-%d", i), testCid(t, fmt.Sprintf("id-%d", i)), [20]byte{})
	}

	// touch peer-0 so it is not the least recently used entry.
	_, ok := c.GetAddress("peer-0")
	require.True(t, ok)

	// one more insert must evict the least recently touched entry, which is
	// peer-1 (peer-0 was just promoted).
	c.AddPeer("peer-new", testCid(t, "id-new"), [20]byte{})

	_, ok = c.GetAddress("peer-1")
	require.False(t, ok)
	_, ok = c.GetAddress("peer-0")
	require.True(t, ok)
}

func TestSetsBanGrowth(t *testing.T) {
	s := NewSets(nil, nil)
	var addr [20]byte
	require.False(t, s.Grown())
	require.False(t, s.IsBanned(addr))

	s.Ban(addr)
	require.True(t, s.Grown())
	require.True(t, s.IsBanned(addr))

	s.Ban(addr)
	require.True(t, s.Grown())
}
