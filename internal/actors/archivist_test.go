package actors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmaflive/streamchron/internal/dagstore"
)

func TestArchivistChatDroppedWithoutOpenSecond(t *testing.T) {
	store := dagstore.New()
	arch := NewArchivist(store)

	arch.archiveChatMessage(testCid(t, "chat-0"))
	require.Nil(t, arch.buffer)
}

func TestArchivistChatAttachesToOpenSecond(t *testing.T) {
	ctx := context.Background()
	store := dagstore.New()
	arch := NewArchivist(store)

	arch.archiveVideoSegment(ctx, testCid(t, "video-0"))
	arch.archiveChatMessage(testCid(t, "chat-0"))

	require.NotNil(t, arch.buffer)
	require.Contains(t, arch.buffer.Chat, testCid(t, "chat-0"))
}

func TestArchivistSealsMinuteAfter60Seconds(t *testing.T) {
	ctx := context.Background()
	store := dagstore.New()
	arch := NewArchivist(store)

	for i := 0; i < 61; i++ {
		arch.archiveVideoSegment(ctx, testCid(t, string(rune('a'+i%26))+"-video"))
	}

	require.Len(t, arch.minute.Seconds, 0)
	require.Len(t, arch.hour.Minutes, 1)
}

func TestArchivistFinalizeProducesRoot(t *testing.T) {
	ctx := context.Background()
	store := dagstore.New()
	arch := NewArchivist(store)

	arch.archiveVideoSegment(ctx, testCid(t, "video-0"))
	arch.finalize(ctx)

	require.Len(t, arch.day.Hours, 1)
}

func TestArchivistFinalizeWithNothingArchivedDoesNotPanic(t *testing.T) {
	ctx := context.Background()
	arch := NewArchivist(dagstore.New())
	arch.finalize(ctx)
	require.Empty(t, arch.day.Hours)
}
