// Package nameservice resolves and republishes the ban-set and mod-set
// records the Chat Aggregator needs at startup and shutdown (§6.3),
// reshaping original_source/streamer-cli/src/utils/dag_nodes.rs's
// get_from_ipns/update_ipns onto dagstore.Store plus an in-memory
// name -> CID pointer, since real IPNS key management is out of scope
// per spec.md §1.
package nameservice

import (
	"context"
	"sync"

	"github.com/ipfs/go-cid"

	"github.com/cmaflive/streamchron/internal/apperr"
	"github.com/cmaflive/streamchron/internal/dagstore"
)

// Service resolves and publishes named pointers to DAG nodes.
type Service struct {
	store *dagstore.Store

	mu   sync.RWMutex
	ptrs map[string]cid.Cid
}

func New(store *dagstore.Store) *Service {
	return &Service{store: store, ptrs: make(map[string]cid.Cid)}
}

// Resolve looks up name's current CID and decodes the DAG node it points to
// into out. A name with no published pointer yet decodes a zero-value out
// and returns nil, matching the original's "missing ban/mod list means
// empty set" bootstrap behavior.
func (s *Service) Resolve(ctx context.Context, name string, out any) error {
	s.mu.RLock()
	c, ok := s.ptrs[name]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	if err := s.store.DagGet(ctx, c, out); err != nil {
		return apperr.WrapConnectivity("resolve name "+name, err)
	}
	return nil
}

// Publish dag_puts content, pins it non-recursively, and repoints name at
// the resulting CID.
func (s *Service) Publish(ctx context.Context, name string, content any) (cid.Cid, error) {
	c, err := s.store.DagPut(ctx, content)
	if err != nil {
		return cid.Undef, apperr.WrapConnectivity("publish name "+name, err)
	}
	if err := s.store.Pin(ctx, c, false); err != nil {
		return cid.Undef, apperr.WrapConnectivity("pin published name "+name, err)
	}

	s.mu.Lock()
	s.ptrs[name] = c
	s.mu.Unlock()

	return c, nil
}
