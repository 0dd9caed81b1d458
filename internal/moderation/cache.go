// Package moderation implements the Chat Aggregator's per-peer moderation
// cache and the runtime ban/mod sets it consults.
//
// spec.md §3 describes ModerationCache only by its external behavior (bounds
// it to the 100 most recently touched peers, promotes an entry on hit, never
// evicts on a timer); the retrieved original_source/ sources only show the
// cache's call sites (defluencer-cli/src/actors/chat.rs), not its internals,
// so the bounded-LRU shape below is original to streamchron, built from the
// stdlib's container/list the way every hand-rolled Go LRU is.
package moderation

import (
	"container/list"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
)

const maxEntries = 100

type entry struct {
	peerID  string
	origin  cid.Cid
	address common.Address
	banned  bool
}

// Cache tracks, per pubsub peer, the signed-identity origin it last verified
// against and whether it has been banned. It is not safe to share across
// Chat Aggregators but is safe for concurrent use within one.
type Cache struct {
	mu     sync.Mutex
	order  *list.List
	byPeer map[string]*list.Element
}

func NewCache() *Cache {
	return &Cache{
		order:  list.New(),
		byPeer: make(map[string]*list.Element, maxEntries),
	}
}

// IsBanned reports whether peer has been recorded as banned. Touching an
// entry here also promotes it, since a banned check is itself evidence the
// peer is still active.
func (c *Cache) IsBanned(peerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byPeer[peerID]
	if !ok {
		return false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).banned
}

// IsVerified reports whether peer's cached origin already matches origin,
// letting the Chat Aggregator skip a dag_get + signature check for repeat
// messages from the same peer.
func (c *Cache) IsVerified(peerID string, origin cid.Cid) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byPeer[peerID]
	if !ok {
		return false
	}
	e := el.Value.(*entry)
	if e.origin != origin {
		return false
	}
	c.order.MoveToFront(el)
	return true
}

// AddPeer records (or refreshes) a peer's verified origin and address,
// evicting the least recently touched entry if the cache is at capacity.
func (c *Cache) AddPeer(peerID string, origin cid.Cid, address common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byPeer[peerID]; ok {
		e := el.Value.(*entry)
		e.origin = origin
		e.address = address
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			delete(c.byPeer, oldest.Value.(*entry).peerID)
			c.order.Remove(oldest)
		}
	}

	el := c.order.PushFront(&entry{peerID: peerID, origin: origin, address: address})
	c.byPeer[peerID] = el
}

// GetAddress returns the address last recorded for peer, if any.
func (c *Cache) GetAddress(peerID string) (common.Address, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byPeer[peerID]
	if !ok {
		return common.Address{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*entry).address, true
}

// BanPeer marks peer as banned, creating a bare entry for it if the cache
// had never seen it (a ban can arrive for a peer whose identity record this
// process never resolved).
func (c *Cache) BanPeer(peerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byPeer[peerID]; ok {
		el.Value.(*entry).banned = true
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= maxEntries {
		oldest := c.order.Back()
		if oldest != nil {
			delete(c.byPeer, oldest.Value.(*entry).peerID)
			c.order.Remove(oldest)
		}
	}

	el := c.order.PushFront(&entry{peerID: peerID, banned: true})
	c.byPeer[peerID] = el
}
