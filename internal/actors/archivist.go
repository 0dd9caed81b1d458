package actors

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ipfs/go-cid"

	"github.com/cmaflive/streamchron/internal/dagmodel"
	"github.com/cmaflive/streamchron/internal/dagstore"
)

// Archivist rolls minted video and chat CIDs up the timecode tree —
// second -> minute -> hour -> day -> root — sealing each level once it
// fills, and flushes whatever is left open at Finalize. It mirrors
// original_source/streamer-cli/src/actors/archivist.rs.
type Archivist struct {
	store *dagstore.Store
	log   *slog.Logger

	buffer *dagmodel.SecondNode
	minute dagmodel.MinuteNode
	hour   dagmodel.HourNode
	day    dagmodel.DayNode
}

func NewArchivist(store *dagstore.Store) *Archivist {
	return &Archivist{
		store: store,
		log:   slog.Default().With("component", "archivist"),
	}
}

func (a *Archivist) Run(ctx context.Context, archiveRx <-chan ArchiveEvent) error {
	a.log.Info("online")
	defer a.log.Info("offline")

	for ev := range archiveRx {
		switch v := ev.(type) {
		case ChatArchiveEvent:
			a.archiveChatMessage(v.CID)
		case VideoArchiveEvent:
			a.archiveVideoSegment(ctx, v.CID)
		case FinalizeEvent:
			a.finalize(ctx)
			return nil
		}
	}
	return nil
}

func (a *Archivist) archiveChatMessage(c cid.Cid) {
	if a.buffer == nil {
		// No open SecondNode yet (no video has arrived); the message has
		// nothing to attach to and is dropped, matching the original.
		return
	}
	a.buffer.Chat = append(a.buffer.Chat, c)
}

func (a *Archivist) archiveVideoSegment(ctx context.Context, c cid.Cid) {
	old := a.buffer
	a.buffer = &dagmodel.SecondNode{Video: c}

	if old == nil {
		// First video of the stream: nothing to seal yet.
		return
	}
	a.collectSecond(ctx, old)

	if len(a.minute.Seconds) < 60 {
		return
	}
	a.collectMinute(ctx)

	if len(a.hour.Minutes) < 60 {
		return
	}
	a.collectHour(ctx)
}

func (a *Archivist) collectSecond(ctx context.Context, node *dagmodel.SecondNode) {
	c, err := a.store.DagPut(ctx, *node)
	if err != nil {
		a.log.Error("second node dag_put failed, contents dropped", "err", err)
		return
	}
	a.minute.Seconds = append(a.minute.Seconds, c)
}

func (a *Archivist) collectMinute(ctx context.Context) {
	c, err := a.store.DagPut(ctx, a.minute)
	if err != nil {
		a.log.Error("minute node dag_put failed, contents dropped", "err", err)
		a.minute = dagmodel.MinuteNode{}
		return
	}
	a.minute = dagmodel.MinuteNode{}
	a.hour.Minutes = append(a.hour.Minutes, c)
}

func (a *Archivist) collectHour(ctx context.Context) {
	c, err := a.store.DagPut(ctx, a.hour)
	if err != nil {
		a.log.Error("hour node dag_put failed, contents dropped", "err", err)
		a.hour = dagmodel.HourNode{}
		return
	}
	a.hour = dagmodel.HourNode{}
	a.day.Hours = append(a.day.Hours, c)
}

// finalize flushes every partially-filled level, seals the DayNode and
// RootNode, pins the whole tree recursively, and logs the RootNode CID to
// standard output per §6.6.
func (a *Archivist) finalize(ctx context.Context) {
	if a.buffer != nil {
		a.collectSecond(ctx, a.buffer)
		a.buffer = nil
	}
	if len(a.minute.Seconds) > 0 {
		a.collectMinute(ctx)
	}
	if len(a.hour.Minutes) > 0 {
		a.collectHour(ctx)
	}

	if len(a.day.Hours) == 0 {
		a.log.Info("stream archived 0 nodes")
		return
	}

	dayCid, err := a.store.DagPut(ctx, a.day)
	if err != nil {
		a.log.Error("day node dag_put failed, stream could not be archived", "err", err)
		return
	}

	rootCid, err := a.store.DagPut(ctx, dagmodel.RootNode{Timecode: dayCid})
	if err != nil {
		a.log.Error("root node dag_put failed, stream could not be archived", "err", err)
		return
	}

	if err := a.store.Pin(ctx, rootCid, true); err != nil {
		a.log.Error("root node pin failed", "err", err)
	}

	a.log.Info("stream archived", "root", rootCid.String())
	fmt.Println(rootCid.String())
}
