// Package dagmodel defines the content-addressed DAG node shapes minted by
// streamchron: renditions, setup nodes, video nodes, and the timecode tree
// (second/minute/hour/day/root) that the Archivist builds up.
//
// Links are plain cid.Cid values. go-cid's own MarshalJSON/UnmarshalJSON
// already produce and accept the `{"/": "<cid-string>"}` shape, so nodes here
// don't need a wrapper type to interoperate with the rest of the IPLD
// ecosystem (this is the same shape original_source/linked-data/src/lib.rs's
// IPLDLink serializes to by hand).
package dagmodel

import "github.com/ipfs/go-cid"

// Rendition describes one HLS variant (a quality/audio track) once its
// codec, bandwidth, and init segment are all known. Renditions are sorted by
// ascending Bandwidth before being stored on a SetupNode.
type Rendition struct {
	Name          string  `json:"name"`
	Codec         string  `json:"codec"`
	Bandwidth     int     `json:"bandwidth"`
	InitSegment   cid.Cid `json:"initseg"`
}

// SetupNode is minted once per stream, after every rendition named in the
// master playlist has produced an init segment.
type SetupNode struct {
	Renditions []Rendition `json:"renditions"`
}

// VideoNode is minted once all renditions have produced a media segment for
// the same sequence index. Setup links back to the SetupNode; Previous
// chains video nodes together (nil only for the very first VideoNode of the
// stream).
type VideoNode struct {
	Tracks   map[string]cid.Cid `json:"tracks"`
	Setup    cid.Cid            `json:"setup"`
	Previous *cid.Cid           `json:"previous,omitempty"`
}

// SecondNode pairs one minted VideoNode with the chat messages that arrived
// while it was the open "current" node.
type SecondNode struct {
	Video cid.Cid   `json:"video"`
	Chat  []cid.Cid `json:"chat"`
}

// MinuteNode collects up to 60 SecondNode links in arrival order.
type MinuteNode struct {
	Seconds []cid.Cid `json:"seconds"`
}

// HourNode collects up to 60 MinuteNode links in arrival order.
type HourNode struct {
	Minutes []cid.Cid `json:"minutes"`
}

// DayNode collects HourNode links in arrival order. Unlike Minute/Hour it is
// never flushed mid-stream: it grows for the whole stream and is only sealed
// at Finalize.
type DayNode struct {
	Hours []cid.Cid `json:"hours"`
}

// RootNode is the single CID printed to standard output when a stream ends,
// the entry point for replaying the whole archive.
type RootNode struct {
	Timecode cid.Cid `json:"timecode"`
}
