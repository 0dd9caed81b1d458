// Package identity verifies the signed-identity records chat peers publish,
// reproducing original_source/linked-data/src/signature.rs's
// SignedMessage::verify bit for bit using go-ethereum's secp256k1/keccak
// primitives instead of libsecp256k1 directly.
package identity

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/cmaflive/streamchron/internal/dagmodel"
)

const signaturePrefix = "\x19Ethereum Signed Message:\n"

// Verify recomputes the Ethereum personal-sign hash of the peer-id payload
// and checks the 65-byte signature recovers to the claimed address. The
// payload is whatever was actually signed; for a SignedIdentity that is the
// peer ID string re-encoded the same way the signer encoded it.
func Verify(addr common.Address, peerID string, signature []byte) bool {
	if len(signature) != 65 {
		return false
	}

	payload, err := json.Marshal(peerID)
	if err != nil {
		return false
	}

	hash := crypto.Keccak256(append(
		[]byte(fmt.Sprintf("%s%d", signaturePrefix, len(payload))),
		payload...,
	))

	sig := make([]byte, 65)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return false
	}

	return crypto.PubkeyToAddress(*pub) == addr
}

// VerifyIdentity is a convenience wrapper over a dagmodel.SignedIdentity.
func VerifyIdentity(id dagmodel.SignedIdentity) bool {
	return Verify(id.Address, id.PeerID, id.Signature)
}
