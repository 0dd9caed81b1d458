package dagmodel

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ipfs/go-cid"
)

// SignedIdentity is the linked-data record a chat peer publishes once and
// references by CID from every message it signs afterwards. It mirrors
// original_source/linked-data/src/signature.rs's generic SignedMessage<T>
// specialized to a peer identity payload.
type SignedIdentity struct {
	Address   common.Address `json:"address"`
	PeerID    string         `json:"peer_id"`
	Signature []byte         `json:"signature"`
}

// MessageKind discriminates the three chat envelope payloads. JSON-encoded
// as the envelope's "kind" field, Go's nearest equivalent of the Rust
// MessageType enum.
type MessageKind string

const (
	MessageKindChat MessageKind = "chat"
	MessageKindBan  MessageKind = "ban"
	MessageKindMod  MessageKind = "mod"
)

// Envelope is the payload published on the chat pubsub topic. Origin links
// back to the SignedIdentity that authenticated it.
type Envelope struct {
	Kind    MessageKind    `json:"kind"`
	Text    string         `json:"text,omitempty"`
	Address common.Address `json:"address,omitempty"`
	PeerID  string         `json:"peer_id,omitempty"`
	Origin  cid.Cid        `json:"origin"`
}

// Ban names a peer/address pair the Chat Aggregator has decided to block,
// the unit a moderator publishes to extend the ban set.
type Ban struct {
	Address common.Address `json:"address"`
	PeerID  string         `json:"peer_id"`
}

// Bans is the persisted, name-serviced set of banned addresses.
type Bans struct {
	Banned map[common.Address]struct{} `json:"banned"`
}

// Moderators is the persisted, name-serviced set of addresses allowed to
// issue Ban envelopes.
type Moderators struct {
	Mods map[common.Address]struct{} `json:"mods"`
}
