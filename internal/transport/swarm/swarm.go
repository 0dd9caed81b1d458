// Package swarm is the `stream` subcommand's real pubsub backend: a
// libp2p-gossipsub swarm, the same stack petervdpas-goop2 depends on for its
// own peer-to-peer transport.
package swarm

import (
	"context"
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"

	"github.com/cmaflive/streamchron/internal/transport"
)

var log = logging.Logger("streamchron/swarm")

// Swarm owns one libp2p host and one gossipsub router; every topic handed
// out from it rides the same underlying connections.
type Swarm struct {
	host host.Host
	ps   *pubsub.PubSub
}

// New starts a libp2p host listening on listenAddr (a multiaddr string, for
// example "/ip4/0.0.0.0/tcp/4001") and wires a gossipsub router onto it.
func New(ctx context.Context, listenAddr string) (*Swarm, error) {
	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		return nil, fmt.Errorf("start libp2p host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("start gossipsub: %w", err)
	}

	log.Infow("libp2p host started", "peer_id", h.ID().String())

	return &Swarm{host: h, ps: ps}, nil
}

func (s *Swarm) Close() error {
	return s.host.Close()
}

// PeerID is the local peer's identity.
func (s *Swarm) PeerID() string {
	return s.host.ID().String()
}

// Topic joins (or returns the already-joined handle for) name.
func (s *Swarm) Topic(name string) (*Topic, error) {
	t, err := s.ps.Join(name)
	if err != nil {
		return nil, fmt.Errorf("join topic %q: %w", name, err)
	}
	return &Topic{t: t}, nil
}

// Topic wraps one joined gossipsub topic.
type Topic struct {
	t *pubsub.Topic
}

var _ transport.Topic = (*Topic)(nil)

func (t *Topic) Publish(ctx context.Context, data []byte) error {
	return t.t.Publish(ctx, data)
}

func (t *Topic) Subscribe(ctx context.Context) (transport.Subscription, error) {
	sub, err := t.t.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("subscribe topic %q: %w", t.t.String(), err)
	}
	return &subscription{sub: sub}, nil
}

func (t *Topic) Close() error {
	return t.t.Close()
}

type subscription struct {
	sub *pubsub.Subscription
}

func (s *subscription) Next(ctx context.Context) (transport.Message, error) {
	msg, err := s.sub.Next(ctx)
	if err != nil {
		return transport.Message{}, err
	}
	from := ""
	if msg.GetFrom() != "" {
		from = msg.GetFrom().String()
	}
	return transport.Message{From: from, Data: msg.GetData()}, nil
}

func (s *subscription) Cancel() {
	s.sub.Cancel()
}
