// Package actors implements the five long-lived components of the
// streaming pipeline: the Setup, Video, and Chat Aggregators and the
// Archivist (the Ingest Server itself lives in cmd/streamchron/app, since
// its job is translating HTTP into the events defined here). Every
// component owns its state exclusively and communicates only by sending
// values defined in this file over channels — no shared mutable state
// between actors, mirroring original_source/defluencer-cli's and
// streamer-cli's actor-per-goroutine design.
package actors

import "github.com/ipfs/go-cid"

// SetupEvent is one of PlaylistEvent or SetupSegmentEvent, the two things the
// Ingest Server can tell the Setup Aggregator about.
type SetupEvent interface{ isSetupEvent() }

// PlaylistEvent carries a decoded master playlist's renditions.
type PlaylistEvent struct {
	Renditions []RenditionRef
}

func (PlaylistEvent) isSetupEvent() {}

// RenditionRef names one variant from a master playlist before its init
// segment has arrived.
type RenditionRef struct {
	Name      string
	Codec     string
	Bandwidth int
}

// SetupSegmentEvent carries one init segment's path and stored CID.
type SetupSegmentEvent struct {
	Path string
	CID  cid.Cid
}

func (SetupSegmentEvent) isSetupEvent() {}

// VideoEvent is one of SetupDoneEvent or MediaSegmentEvent, the two things
// the Setup Aggregator (and the Ingest Server directly, for media) tell the
// Video Aggregator.
type VideoEvent interface{ isVideoEvent() }

// SetupDoneEvent carries the newly minted SetupNode's CID and the number of
// renditions it covers.
type SetupDoneEvent struct {
	Setup          cid.Cid
	RenditionCount int
}

func (SetupDoneEvent) isVideoEvent() {}

// MediaSegmentEvent carries one media segment's path and stored CID.
type MediaSegmentEvent struct {
	Path string
	CID  cid.Cid
}

func (MediaSegmentEvent) isVideoEvent() {}

// ArchiveEvent is one of ChatArchiveEvent, VideoArchiveEvent, or
// FinalizeEvent, the three things the Video and Chat Aggregators (and the
// shutdown signal handler) tell the Archivist.
type ArchiveEvent interface{ isArchiveEvent() }

// ChatArchiveEvent carries one minted chat message's CID.
type ChatArchiveEvent struct {
	CID cid.Cid
}

func (ChatArchiveEvent) isArchiveEvent() {}

// VideoArchiveEvent carries one minted VideoNode's CID.
type VideoArchiveEvent struct {
	CID cid.Cid
}

func (VideoArchiveEvent) isArchiveEvent() {}

// FinalizeEvent tells the Archivist the stream has ended: flush every
// partially-filled node up to the RootNode and stop.
type FinalizeEvent struct{}

func (FinalizeEvent) isArchiveEvent() {}
