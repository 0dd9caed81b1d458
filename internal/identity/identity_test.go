package identity

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/cmaflive/streamchron/internal/dagmodel"
)

func signPeerID(t *testing.T, key string, peerID string) ([]byte, error) {
	t.Helper()

	priv, err := crypto.HexToECDSA(key)
	require.NoError(t, err)

	payload, err := json.Marshal(peerID)
	require.NoError(t, err)

	hash := crypto.Keccak256(append(
		[]byte(fmt.Sprintf("%s%d", signaturePrefix, len(payload))),
		payload...,
	))

	sig, err := crypto.Sign(hash, priv)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

func TestVerify(t *testing.T) {
	const key = "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"
	priv, err := crypto.HexToECDSA(key)
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(priv.PublicKey)

	peerID := "12D3KooWExample"
	sig, err := signPeerID(t, key, peerID)
	require.NoError(t, err)

	require.True(t, Verify(addr, peerID, sig))
}

func TestVerifyRejectsWrongAddress(t *testing.T) {
	const key = "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"
	peerID := "12D3KooWExample"
	sig, err := signPeerID(t, key, peerID)
	require.NoError(t, err)

	other := "8f2a55949038a9610f50fb23b5883af3b4ecb3c3bb792cbcefbd1542c692bbc"
	otherPriv, err := crypto.HexToECDSA(other)
	require.NoError(t, err)
	otherAddr := crypto.PubkeyToAddress(otherPriv.PublicKey)

	require.False(t, Verify(otherAddr, peerID, sig))
}

func TestVerifyRejectsBadSignatureLength(t *testing.T) {
	var addr [20]byte
	require.False(t, Verify(addr, "peer", []byte{1, 2, 3}))
}

func TestVerifyIdentity(t *testing.T) {
	const key = "fad9c8855b740a0b7ed4c221dbad0f33a83a49cad6b3fe8d5817ac83d38b6a19"
	priv, err := crypto.HexToECDSA(key)
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(priv.PublicKey)

	peerID := "12D3KooWExample"
	sig, err := signPeerID(t, key, peerID)
	require.NoError(t, err)

	id := dagmodel.SignedIdentity{Address: addr, PeerID: peerID, Signature: sig}
	require.True(t, VerifyIdentity(id))
}
