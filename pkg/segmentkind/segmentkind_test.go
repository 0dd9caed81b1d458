package segmentkind

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromExtension(t *testing.T) {
	require.Equal(t, Manifest, FromExtension(".m3u8"))
	require.Equal(t, Init, FromExtension(".mp4"))
	require.Equal(t, Media, FromExtension(".m4s"))
	require.Equal(t, Unknown, FromExtension(".txt"))
}

func TestExtensionFromKindRoundtrip(t *testing.T) {
	for _, k := range []Kind{Manifest, Init, Media} {
		ext, err := ExtensionFromKind(k)
		require.NoError(t, err)
		require.Equal(t, k, FromExtension(ext))
	}
}

func TestExtensionFromKindUnknown(t *testing.T) {
	_, err := ExtensionFromKind(Unknown)
	require.Error(t, err)
}
