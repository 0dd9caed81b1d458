// Package localbus is the in-process pubsub backend for the `file`
// subcommand and for tests: an actual network is unnecessary to exercise
// the actor pipeline end to end.
package localbus

import (
	"context"
	"sync"

	"github.com/cmaflive/streamchron/internal/transport"
)

// Bus multiplexes named topics in memory. One Bus is shared by every
// localbus.Topic handed out from it, the same way one libp2p host backs
// every swarm.Topic.
type Bus struct {
	mu     sync.Mutex
	topics map[string]*topic
}

func NewBus() *Bus {
	return &Bus{topics: make(map[string]*topic)}
}

func (b *Bus) Topic(name string) *Topic {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[name]
	if !ok {
		t = &topic{}
		b.topics[name] = t
	}
	return &Topic{t: t}
}

type topic struct {
	mu   sync.Mutex
	subs []chan transport.Message
}

// Topic is one handle onto a named in-process topic.
type Topic struct {
	t *topic
}

var _ transport.Topic = (*Topic)(nil)

func (t *Topic) Publish(ctx context.Context, data []byte) error {
	t.t.mu.Lock()
	defer t.t.mu.Unlock()

	msg := transport.Message{Data: data}
	for _, ch := range t.t.subs {
		select {
		case ch <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (t *Topic) Subscribe(ctx context.Context) (transport.Subscription, error) {
	ch := make(chan transport.Message, 32)

	t.t.mu.Lock()
	t.t.subs = append(t.t.subs, ch)
	t.t.mu.Unlock()

	return &subscription{topic: t.t, ch: ch}, nil
}

func (t *Topic) Close() error { return nil }

type subscription struct {
	topic *topic
	ch    chan transport.Message
}

func (s *subscription) Next(ctx context.Context) (transport.Message, error) {
	select {
	case msg := <-s.ch:
		return msg, nil
	case <-ctx.Done():
		return transport.Message{}, ctx.Err()
	}
}

func (s *subscription) Cancel() {
	s.topic.mu.Lock()
	defer s.topic.mu.Unlock()

	for i, ch := range s.topic.subs {
		if ch == s.ch {
			s.topic.subs = append(s.topic.subs[:i], s.topic.subs[i+1:]...)
			break
		}
	}
}
