package actors

import (
	"context"
	"log/slog"
	"path"
	"strconv"

	"github.com/ipfs/go-cid"

	"github.com/cmaflive/streamchron/internal/dagmodel"
	"github.com/cmaflive/streamchron/internal/dagstore"
	"github.com/cmaflive/streamchron/internal/transport"
)

type pendingVideoNode struct {
	tracks   map[string]cid.Cid
	setup    cid.Cid
	hasSetup bool
	previous *cid.Cid
}

// VideoAggregator buffers media segments by rendition until every rendition
// has contributed to the same sequence index, mints the resulting
// VideoNode, and (if enabled) republishes its CID on the video pubsub topic.
// It mirrors original_source/streamer-cli/src/actors/video.rs.
type VideoAggregator struct {
	store *dagstore.Store
	log   *slog.Logger

	archiveTx   chan<- ArchiveEvent
	pubsubTopic transport.Topic

	trackLen int
	setup    cid.Cid
	hasSetup bool

	nodeMintCount int
	queue         []*pendingVideoNode
	previous      *cid.Cid
}

// NewVideoAggregator builds a Video Aggregator. pubsubTopic may be nil (the
// `file` subcommand forces video.pubsub_enable false regardless of config,
// per SPEC_FULL's supplemented file-mode wiring).
func NewVideoAggregator(store *dagstore.Store, archiveTx chan<- ArchiveEvent, pubsubTopic transport.Topic) *VideoAggregator {
	return &VideoAggregator{
		store:       store,
		log:         slog.Default().With("component", "video"),
		archiveTx:   archiveTx,
		pubsubTopic: pubsubTopic,
		queue:       make([]*pendingVideoNode, 0, 5),
	}
}

func (a *VideoAggregator) Run(ctx context.Context, videoRx <-chan VideoEvent) error {
	a.log.Info("online")
	defer a.log.Info("offline")

	for ev := range videoRx {
		switch v := ev.(type) {
		case MediaSegmentEvent:
			a.mediaSegment(ctx, v.Path, v.CID)
		case SetupDoneEvent:
			a.trackLen = v.RenditionCount
			a.setup = v.Setup
			a.hasSetup = true
		}
	}
	return nil
}

func (a *VideoAggregator) mediaSegment(ctx context.Context, segPath string, c cid.Cid) {
	quality := path.Base(path.Dir(segPath))

	stem := path.Base(segPath)
	if ext := path.Ext(stem); ext != "" {
		stem = stem[:len(stem)-len(ext)]
	}
	index, err := strconv.Atoi(stem)
	if err != nil {
		a.log.Warn("media segment path has non-numeric sequence, dropping", "path", segPath, "err", err)
		return
	}

	bufferIndex := index - a.nodeMintCount
	if bufferIndex < 0 {
		// A stale or duplicate arrival for an index already minted and
		// archived. The original panics on this underflow (usize
		// subtraction); streamchron drops the segment instead, since a
		// late duplicate cannot retroactively join a node that is gone.
		a.log.Warn("media segment older than mint cursor, dropping", "path", segPath, "index", index)
		return
	}

	if bufferIndex < len(a.queue) {
		node := a.queue[bufferIndex]
		node.tracks[quality] = c
		node.setup = a.setup
		node.hasSetup = a.hasSetup
		if bufferIndex == 0 {
			node.previous = a.previous
		}
	} else {
		node := &pendingVideoNode{
			tracks:   map[string]cid.Cid{quality: c},
			setup:    a.setup,
			hasSetup: a.hasSetup,
		}
		a.queue = append(a.queue, node)
	}

	for {
		mintedCID, ok := a.mintVideoNode(ctx)
		if !ok {
			break
		}

		if a.archiveTx != nil {
			a.archiveTx <- VideoArchiveEvent{CID: mintedCID}
		}

		if a.pubsubTopic != nil {
			if err := a.pubsubTopic.Publish(ctx, []byte(mintedCID.String())); err != nil {
				a.log.Error("video pubsub publish failed", "err", err)
			}
		}
	}
}

func (a *VideoAggregator) mintVideoNode(ctx context.Context) (cid.Cid, bool) {
	if len(a.queue) == 0 {
		return cid.Undef, false
	}

	node := a.queue[0]
	node.setup = a.setup
	node.hasSetup = a.hasSetup
	node.previous = a.previous

	if !node.hasSetup {
		return cid.Undef, false
	}
	if len(node.tracks) != a.trackLen {
		return cid.Undef, false
	}
	if node.previous == nil && a.nodeMintCount > 0 {
		return cid.Undef, false
	}

	dagNode := dagmodel.VideoNode{
		Tracks:   node.tracks,
		Setup:    node.setup,
		Previous: node.previous,
	}
	c, err := a.store.DagPut(ctx, dagNode)
	if err != nil {
		a.log.Error("video node dag_put failed, will retry on next arrival", "err", err)
		return cid.Undef, false
	}

	a.queue = a.queue[1:]
	a.nodeMintCount++
	a.previous = &c

	a.log.Info("video node minted", "cid", c.String())
	return c, true
}
