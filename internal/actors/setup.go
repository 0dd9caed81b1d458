package actors

import (
	"context"
	"log/slog"
	"path"
	"sort"

	"github.com/ipfs/go-cid"

	"github.com/cmaflive/streamchron/internal/apperr"
	"github.com/cmaflive/streamchron/internal/dagmodel"
	"github.com/cmaflive/streamchron/internal/dagstore"
)

// pendingRendition accumulates the three facts a rendition needs before a
// SetupNode can be minted for it: codec and bandwidth (from the master
// playlist) and its init segment's CID (from the Ingest Server).
type pendingRendition struct {
	codec     *string
	bandwidth *int
	initSeg   *cid.Cid
}

func (p *pendingRendition) ready() bool {
	return p.codec != nil && p.bandwidth != nil && p.initSeg != nil
}

// SetupAggregator collects one master playlist's renditions and their init
// segments, and mints a single SetupNode once every rendition is complete.
// It mirrors original_source/defluencer-cli/src/actors/setup.rs.
type SetupAggregator struct {
	store   *dagstore.Store
	videoTx chan<- VideoEvent
	log     *slog.Logger

	trackLen int
	pending  map[string]*pendingRendition
	done     bool
}

func NewSetupAggregator(store *dagstore.Store, videoTx chan<- VideoEvent) *SetupAggregator {
	return &SetupAggregator{
		store:   store,
		videoTx: videoTx,
		log:     slog.Default().With("component", "setup"),
		pending: make(map[string]*pendingRendition),
	}
}

// Run consumes setupRx until it is closed. Once a SetupNode has been
// successfully minted it keeps draining the channel (so the Ingest Server
// never blocks on a send) but does no further work, matching the original's
// receiver.close() self-shutdown.
func (a *SetupAggregator) Run(ctx context.Context, setupRx <-chan SetupEvent) error {
	a.log.Info("online")
	defer a.log.Info("offline")

	for ev := range setupRx {
		if a.done {
			continue
		}
		switch v := ev.(type) {
		case PlaylistEvent:
			a.processPlaylist(ctx, v.Renditions)
		case SetupSegmentEvent:
			a.processInitSegment(v.Path, v.CID)
			a.tryMint(ctx)
		}
	}
	return nil
}

func (a *SetupAggregator) processPlaylist(ctx context.Context, renditions []RenditionRef) {
	a.trackLen = len(renditions)

	// Processed in reverse, matching process_master_playlist's
	// `.into_iter().rev()` — harmless given the map accumulates by name, but
	// kept to stay faithful to the original's iteration order.
	for i := len(renditions) - 1; i >= 0; i-- {
		r := renditions[i]
		entry := a.entryFor(r.Name)
		codec := r.Codec
		bandwidth := r.Bandwidth
		entry.codec = &codec
		entry.bandwidth = &bandwidth
	}
	a.tryMint(ctx)
}

func (a *SetupAggregator) processInitSegment(segPath string, c cid.Cid) {
	name := path.Base(path.Dir(segPath))
	entry := a.entryFor(name)
	init := c
	entry.initSeg = &init
}

func (a *SetupAggregator) entryFor(name string) *pendingRendition {
	entry, ok := a.pending[name]
	if !ok {
		entry = &pendingRendition{}
		a.pending[name] = entry
	}
	return entry
}

// tryMint mints a SetupNode once every known rendition is complete. A
// dag_put failure here is logged with a Fatal-class error and tryMint
// returns without minting: the pending renditions are kept, the next setup
// event tries the mint again, and the stream is not aborted.
func (a *SetupAggregator) tryMint(ctx context.Context) {
	if len(a.pending) == 0 || len(a.pending) != a.trackLen {
		return
	}

	names := make([]string, 0, len(a.pending))
	for name, entry := range a.pending {
		if !entry.ready() {
			return
		}
		names = append(names, name)
	}

	renditions := make([]dagmodel.Rendition, 0, len(names))
	for _, name := range names {
		entry := a.pending[name]
		renditions = append(renditions, dagmodel.Rendition{
			Name:        name,
			Codec:       *entry.codec,
			Bandwidth:   *entry.bandwidth,
			InitSegment: *entry.initSeg,
		})
	}
	sort.Slice(renditions, func(i, j int) bool {
		return renditions[i].Bandwidth < renditions[j].Bandwidth
	})

	node := dagmodel.SetupNode{Renditions: renditions}
	c, err := a.store.DagPut(ctx, node)
	if err != nil {
		a.log.Error("setup node persistence failed, stream cannot continue",
			"err", apperr.WrapFatal("dag_put setup node", err))
		return
	}

	a.log.Info("setup node minted", "cid", c.String())
	a.videoTx <- SetupDoneEvent{Setup: c, RenditionCount: a.trackLen}
	a.done = true
}
