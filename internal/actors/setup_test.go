package actors

import (
	"context"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/cmaflive/streamchron/internal/dagmodel"
	"github.com/cmaflive/streamchron/internal/dagstore"
)

func testCid(t *testing.T, s string) cid.Cid {
	t.Helper()
	mh, err := multihash.Sum([]byte(s), multihash.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.Raw, mh)
}

func TestSetupAggregatorMintsOnceAllRenditionsComplete(t *testing.T) {
	ctx := context.Background()
	store := dagstore.New()
	videoCh := make(chan VideoEvent, 4)

	agg := NewSetupAggregator(store, videoCh)
	setupCh := make(chan SetupEvent, 8)

	done := make(chan struct{})
	go func() {
		_ = agg.Run(ctx, setupCh)
		close(done)
	}()

	setupCh <- PlaylistEvent{Renditions: []RenditionRef{
		{Name: "video", Codec: `video/mp4; codecs="avc1"`, Bandwidth: 640000},
		{Name: "audio", Codec: `audio/mp4; codecs="mp4a"`, Bandwidth: 128000},
	}}
	setupCh <- SetupSegmentEvent{Path: "video/init.mp4", CID: testCid(t, "video-init")}
	setupCh <- SetupSegmentEvent{Path: "audio/init.mp4", CID: testCid(t, "audio-init")}

	ev := <-videoCh
	done2, ok := ev.(SetupDoneEvent)
	require.True(t, ok)
	require.Equal(t, 2, done2.RenditionCount)

	var node dagmodel.SetupNode
	require.NoError(t, store.DagGet(ctx, done2.Setup, &node))
	require.Len(t, node.Renditions, 2)
	require.Equal(t, "audio", node.Renditions[0].Name) // sorted by ascending bandwidth
	require.Equal(t, "video", node.Renditions[1].Name)

	close(setupCh)
	<-done
}
