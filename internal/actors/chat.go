package actors

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cmaflive/streamchron/internal/apperr"
	"github.com/cmaflive/streamchron/internal/dagmodel"
	"github.com/cmaflive/streamchron/internal/dagstore"
	"github.com/cmaflive/streamchron/internal/identity"
	"github.com/cmaflive/streamchron/internal/moderation"
	"github.com/cmaflive/streamchron/internal/nameservice"
	"github.com/cmaflive/streamchron/internal/transport"
)

// Default names the ban and mod sets are published under, mirroring
// defluencer-cli/src/cli/moderation.rs's BANS_KEY/MODS_KEY constants. A
// deployment can override either via chat.mods/chat.bans (§6.5).
const (
	DefaultBansName = "bans"
	DefaultModsName = "mods"
)

// stoppingSentinel is published on the chat topic at shutdown to wake the
// subscription loop, which otherwise blocks forever waiting on the network.
const stoppingSentinel = "Stopping"

// ChatAggregator authenticates and moderates chat pubsub traffic, then
// hands surviving chat text to the Archivist. It mirrors
// original_source/defluencer-cli/src/actors/chat.rs.
type ChatAggregator struct {
	store *dagstore.Store
	log   *slog.Logger

	archiveTx chan<- ArchiveEvent
	topic     transport.Topic

	modDB *moderation.Cache
	bans  *moderation.Sets
	mods  *moderation.Sets

	bansName string

	// OnOutcome, if set, is called once per chat message processed, with
	// "accepted", "banned", or "rejected". Left nil by default so tests and
	// callers that don't care about metrics need not set it.
	OnOutcome func(outcome string)
}

// OpenChatAggregator resolves the ban and mod sets through the name service
// before the subscription loop starts, the startup half of the round trip
// whose shutdown half is Close. bansName/modsName default to
// DefaultBansName/DefaultModsName when empty.
func OpenChatAggregator(
	ctx context.Context,
	store *dagstore.Store,
	ns *nameservice.Service,
	topic transport.Topic,
	archiveTx chan<- ArchiveEvent,
	bansName, modsName string,
) (*ChatAggregator, error) {
	if bansName == "" {
		bansName = DefaultBansName
	}
	if modsName == "" {
		modsName = DefaultModsName
	}

	var banned dagmodel.Bans
	if err := ns.Resolve(ctx, bansName, &banned); err != nil {
		return nil, apperr.WrapConnectivity("resolve ban set", err)
	}

	var mods dagmodel.Moderators
	if err := ns.Resolve(ctx, modsName, &mods); err != nil {
		return nil, apperr.WrapConnectivity("resolve mod set", err)
	}

	return &ChatAggregator{
		store:     store,
		log:       slog.Default().With("component", "chat"),
		archiveTx: archiveTx,
		topic:     topic,
		modDB:     moderation.NewCache(),
		bans:      moderation.NewSets(banned.Banned, nil),
		mods:      moderation.NewSets(nil, mods.Mods),
		bansName:  bansName,
	}, nil
}

// Run subscribes to the chat topic and processes messages until it sees the
// shutdown sentinel or the subscription errors out.
func (a *ChatAggregator) Run(ctx context.Context) error {
	a.log.Info("online")
	defer a.log.Info("offline")

	sub, err := a.topic.Subscribe(ctx)
	if err != nil {
		return apperr.WrapConnectivity("subscribe chat topic", err)
	}
	defer sub.Cancel()

	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			return nil
		}
		if string(msg.Data) == stoppingSentinel {
			return nil
		}
		a.onPubsubMessage(ctx, msg)
	}
}

// Close republishes the ban set if it grew during the run, best-effort: a
// failure here is logged, never propagated, since shutdown must not hang on
// a network call.
func (a *ChatAggregator) Close(ctx context.Context, ns *nameservice.Service) {
	if !a.bans.Grown() {
		return
	}
	if _, err := ns.Publish(ctx, a.bansName, dagmodel.Bans{Banned: a.bans.Banned}); err != nil {
		a.log.Error("ban set republish failed", "err", err)
	}
}

func (a *ChatAggregator) onPubsubMessage(ctx context.Context, msg transport.Message) {
	peer := msg.From
	if peer == "" {
		return
	}
	if a.modDB.IsBanned(peer) {
		a.recordOutcome("banned")
		return
	}

	var env dagmodel.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		a.log.Warn("malformed chat envelope, dropping", "peer", peer, "err", err)
		a.recordOutcome("rejected")
		return
	}

	if a.modDB.IsVerified(peer, env.Origin) {
		a.processMessage(ctx, peer, env)
		return
	}
	a.resolveOrigin(ctx, peer, env)
}

func (a *ChatAggregator) resolveOrigin(ctx context.Context, peer string, env dagmodel.Envelope) {
	var signed dagmodel.SignedIdentity
	if err := a.store.DagGet(ctx, env.Origin, &signed); err != nil {
		a.log.Warn("chat origin unresolvable, dropping", "peer", peer, "err", err)
		a.recordOutcome("rejected")
		return
	}

	a.modDB.AddPeer(peer, env.Origin, signed.Address)

	if peer != signed.PeerID {
		a.modDB.BanPeer(peer)
		a.recordOutcome("banned")
		return
	}
	if !identity.VerifyIdentity(signed) {
		a.modDB.BanPeer(peer)
		a.recordOutcome("banned")
		return
	}
	if a.bans.IsBanned(signed.Address) {
		a.modDB.BanPeer(peer)
		a.recordOutcome("banned")
		return
	}

	a.processMessage(ctx, peer, env)
}

func (a *ChatAggregator) recordOutcome(outcome string) {
	if a.OnOutcome != nil {
		a.OnOutcome(outcome)
	}
}

func (a *ChatAggregator) processMessage(ctx context.Context, peer string, env dagmodel.Envelope) {
	switch env.Kind {
	case dagmodel.MessageKindChat:
		a.mintAndArchive(ctx, env.Text)
	case dagmodel.MessageKindBan:
		a.updateBans(peer, env.Address, env.PeerID)
	case dagmodel.MessageKindMod:
		// Moderator-set changes are not accepted at runtime over pubsub;
		// the mod set is only ever updated out of band (see SPEC_FULL's
		// excluded moderation CLI). Envelope is accepted, not acted on.
	}
}

func (a *ChatAggregator) mintAndArchive(ctx context.Context, text string) {
	c, err := a.store.DagPut(ctx, text)
	if err != nil {
		a.log.Error("chat message dag_put failed, dropping", "err", err)
		a.recordOutcome("rejected")
		return
	}
	a.archiveTx <- ChatArchiveEvent{CID: c}
	a.recordOutcome("accepted")
}

func (a *ChatAggregator) updateBans(peer string, address common.Address, bannedPeer string) {
	modAddr, ok := a.modDB.GetAddress(peer)
	if !ok {
		return
	}
	if !a.mods.IsMod(modAddr) {
		// Non-moderators cannot extend the ban set; the command is
		// silently ignored, matching the original's early return.
		return
	}

	a.modDB.BanPeer(bannedPeer)
	a.bans.Ban(address)
}
