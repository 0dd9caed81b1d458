package actors

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/cmaflive/streamchron/internal/dagmodel"
	"github.com/cmaflive/streamchron/internal/dagstore"
	"github.com/cmaflive/streamchron/internal/nameservice"
	"github.com/cmaflive/streamchron/internal/transport"
)

func signedEnvelope(t *testing.T, store *dagstore.Store, key string, peerID, text string) (transport.Message, dagmodel.SignedIdentity) {
	t.Helper()
	ctx := context.Background()

	priv, err := crypto.HexToECDSA(key)
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(priv.PublicKey)

	payload, err := json.Marshal(peerID)
	require.NoError(t, err)
	hash := crypto.Keccak256(append([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(payload))), payload...))
	sig, err := crypto.Sign(hash, priv)
	require.NoError(t, err)
	sig[64] += 27

	identity := dagmodel.SignedIdentity{Address: addr, PeerID: peerID, Signature: sig}
	originCid, err := store.DagPut(ctx, identity)
	require.NoError(t, err)

	env := dagmodel.Envelope{Kind: dagmodel.MessageKindChat, Text: text, Origin: originCid}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	return transport.Message{From: peerID, Data: data}, identity
}

func newTestChatAggregator(t *testing.T) (*ChatAggregator, *dagstore.Store, chan ArchiveEvent) {
	t.Helper()
	ctx := context.Background()
	store := dagstore.New()
	ns := nameservice.New(store)
	archiveCh := make(chan ArchiveEvent, 8)

	agg, err := OpenChatAggregator(ctx, store, ns, nil, archiveCh, "", "")
	require.NoError(t, err)
	return agg, store, archiveCh
}

func TestChatAggregatorAcceptsVerifiedChatMessage(t *testing.T) {
	ctx := context.Background()
	agg, store, archiveCh := newTestChatAggregator(t)

	const key = "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"
	msg, _ := signedEnvelope(t, store, key, "peerA", "hello world")

	agg.onPubsubMessage(ctx, msg)

	ev := <-archiveCh
	chatEv, ok := ev.(ChatArchiveEvent)
	require.True(t, ok)
	require.True(t, chatEv.CID.Defined())
}

func TestChatAggregatorRejectsPeerIDMismatch(t *testing.T) {
	ctx := context.Background()
	agg, store, archiveCh := newTestChatAggregator(t)

	const key = "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"
	msg, _ := signedEnvelope(t, store, key, "peerA", "hello")
	msg.From = "peerB" // claims to be a different peer than the signed identity names

	agg.onPubsubMessage(ctx, msg)

	select {
	case ev := <-archiveCh:
		t.Fatalf("unverified message should not be archived: %#v", ev)
	default:
	}
	require.True(t, agg.modDB.IsBanned("peerB"))
}

func TestChatAggregatorBanCommandRequiresModerator(t *testing.T) {
	ctx := context.Background()
	agg, store, _ := newTestChatAggregator(t)

	const modKey = "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"
	modMsg, modIdentity := signedEnvelope(t, store, modKey, "peerMod", "irrelevant")
	agg.onPubsubMessage(ctx, modMsg) // resolves peerMod's address into modDB, not yet a moderator

	const targetKey = "8f2a55949038a9610f50fb23b5883af3b4ecb3c3bb792cbcefbd1542c692bbc"
	targetPriv, err := crypto.HexToECDSA(targetKey)
	require.NoError(t, err)
	targetAddr := crypto.PubkeyToAddress(targetPriv.PublicKey)

	agg.updateBans("peerMod", targetAddr, "peerTarget")
	require.False(t, agg.bans.IsBanned(targetAddr))

	agg.mods.Mods[modIdentity.Address] = struct{}{}
	agg.updateBans("peerMod", targetAddr, "peerTarget")
	require.True(t, agg.bans.IsBanned(targetAddr))
	require.True(t, agg.modDB.IsBanned("peerTarget"))
}
