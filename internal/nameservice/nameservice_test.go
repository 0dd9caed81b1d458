package nameservice

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/cmaflive/streamchron/internal/dagmodel"
	"github.com/cmaflive/streamchron/internal/dagstore"
)

func TestResolveUnknownNameIsEmpty(t *testing.T) {
	ctx := context.Background()
	svc := New(dagstore.New())

	var bans dagmodel.Bans
	require.NoError(t, svc.Resolve(ctx, "bans", &bans))
	require.Nil(t, bans.Banned)
}

func TestPublishThenResolve(t *testing.T) {
	ctx := context.Background()
	svc := New(dagstore.New())

	mods := dagmodel.Moderators{Mods: map[common.Address]struct{}{}}
	_, err := svc.Publish(ctx, "mods", mods)
	require.NoError(t, err)

	var got dagmodel.Moderators
	require.NoError(t, svc.Resolve(ctx, "mods", &got))
}
