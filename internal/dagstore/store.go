// Package dagstore is streamchron's concrete adapter over the
// content-addressed object store spec.md §1 treats as an external
// collaborator. It is in-memory only: a real deployment would swap this for
// a networked IPFS node, but the interface it satisfies (dag_put/dag_get/
// put/pin) is exactly the operation set §6.4 names.
package dagstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"
	ds "github.com/ipfs/go-datastore"
	dssync "github.com/ipfs/go-datastore/sync"
	"github.com/multiformats/go-multihash"

	"github.com/cmaflive/streamchron/internal/apperr"
)

// Store is the handle every actor receives. It wraps a single in-memory
// datastore behind a mutex-synced wrapper (ipfs/go-datastore's own pattern,
// the same one filecoin-project/storetheindex uses for its ingest-side
// bookkeeping datastores) so it is cheap to copy and share.
type Store struct {
	ds   ds.Datastore
	pins *pinSet
}

func New() *Store {
	return &Store{
		ds:   dssync.MutexWrap(ds.NewMapDatastore()),
		pins: newPinSet(),
	}
}

// Put stores raw bytes under a Raw-codec CID, returning the CID the bytes
// hash to (content-addressing: calling Put twice with the same bytes
// returns the same CID and is a no-op the second time).
func (s *Store) Put(ctx context.Context, data []byte) (cid.Cid, error) {
	c, err := cidFor(data, cid.Raw)
	if err != nil {
		return cid.Undef, apperr.WrapResource("compute raw cid", err)
	}
	if err := s.ds.Put(ctx, dsKey(c), data); err != nil {
		return cid.Undef, apperr.WrapResource("store raw block", err)
	}
	return c, nil
}

// Get returns the raw bytes previously stored under c.
func (s *Store) Get(ctx context.Context, c cid.Cid) ([]byte, error) {
	data, err := s.ds.Get(ctx, dsKey(c))
	if err != nil {
		return nil, apperr.WrapResource("fetch raw block", err)
	}
	return data, nil
}

// DagPut JSON-encodes node and stores it under a DagJSON-codec CID.
func (s *Store) DagPut(ctx context.Context, node any) (cid.Cid, error) {
	data, err := json.Marshal(node)
	if err != nil {
		return cid.Undef, apperr.WrapProtocol("encode dag node", err)
	}

	c, err := cidFor(data, cid.DagJSON)
	if err != nil {
		return cid.Undef, apperr.WrapResource("compute dag cid", err)
	}
	if err := s.ds.Put(ctx, dsKey(c), data); err != nil {
		return cid.Undef, apperr.WrapResource("store dag node", err)
	}
	return c, nil
}

// DagGet decodes the node stored under c into out.
func (s *Store) DagGet(ctx context.Context, c cid.Cid, out any) error {
	data, err := s.ds.Get(ctx, dsKey(c))
	if err != nil {
		return apperr.WrapResource("fetch dag node", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperr.WrapProtocol("decode dag node", err)
	}
	return nil
}

// Pin marks c, and every CID it JSON-references, as pinned. Non-recursive
// references (raw blocks inside nested maps/arrays this walk doesn't
// understand) are not followed; streamchron's own node shapes are all
// walked correctly since every link field is a bare CID or CID array.
func (s *Store) Pin(ctx context.Context, c cid.Cid, recursive bool) error {
	s.pins.add(c)
	if !recursive {
		return nil
	}

	data, err := s.ds.Get(ctx, dsKey(c))
	if err != nil {
		// Raw blocks and not-yet-seen CIDs have nothing further to walk.
		return nil
	}

	for _, child := range extractLinks(data) {
		if err := s.Pin(ctx, child, true); err != nil {
			return err
		}
	}
	return nil
}

// IsPinned reports whether c has been pinned.
func (s *Store) IsPinned(c cid.Cid) bool {
	return s.pins.has(c)
}

func dsKey(c cid.Cid) ds.Key {
	return ds.NewKey("/" + c.String())
}

func cidFor(data []byte, codec uint64) (cid.Cid, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, fmt.Errorf("hash block: %w", err)
	}
	return cid.NewCidV1(codec, mh), nil
}

// extractLinks walks a generic JSON value looking for CID strings so Pin can
// recurse without knowing the concrete Go type of the node it pinned.
func extractLinks(data []byte) []cid.Cid {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	var links []cid.Cid
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case string:
			if c, err := cid.Decode(val); err == nil {
				links = append(links, c)
			}
		case []any:
			for _, item := range val {
				walk(item)
			}
		case map[string]any:
			for _, item := range val {
				walk(item)
			}
		}
	}
	walk(raw)
	return links
}

type pinSet struct {
	mu sync.Mutex
	m  map[cid.Cid]struct{}
}

func newPinSet() *pinSet {
	return &pinSet{m: make(map[cid.Cid]struct{})}
}

func (p *pinSet) add(c cid.Cid) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[c] = struct{}{}
}

func (p *pinSet) has(c cid.Cid) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.m[c]
	return ok
}
