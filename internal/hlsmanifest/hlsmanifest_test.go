package hlsmanifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:6
#EXT-X-STREAM-INF:BANDWIDTH=640000,CODECS="avc1.64001f"
video/playlist.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=128000,CODECS="mp4a.40.2"
audio/playlist.m3u8
`

const mediaPlaylist = `#EXTM3U
#EXT-X-VERSION:6
#EXT-X-TARGETDURATION:2
#EXTINF:2.0,
0.m4s
`

func TestDecodeMasterPlaylist(t *testing.T) {
	renditions, ok, err := Decode([]byte(masterPlaylist))
	require.NoError(t, err)
	require.True(t, ok)

	want := []RenditionRef{
		{Name: "video", Codec: `video/mp4; codecs="avc1.64001f"`, Bandwidth: 640000},
		{Name: "audio", Codec: `audio/mp4; codecs="mp4a.40.2"`, Bandwidth: 128000},
	}
	if diff := cmp.Diff(want, renditions); diff != "" {
		t.Errorf("renditions mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeMediaPlaylistIsNotForwarded(t *testing.T) {
	renditions, ok, err := Decode([]byte(mediaPlaylist))
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, renditions)
}
