// Package transport abstracts the pubsub substrate the Video and Chat
// Aggregators publish and subscribe on, so neither cares whether it is
// talking to an in-process bus (the `file` subcommand, and tests) or a real
// libp2p swarm (the `stream` subcommand).
package transport

import "context"

// Message is one delivered pubsub item. From identifies the publishing peer
// where the transport can tell (the swarm backend; localbus leaves it
// empty since there is only one process).
type Message struct {
	From string
	Data []byte
}

// Subscription is an open, blocking read handle on a Topic.
type Subscription interface {
	// Next blocks until a message is available or ctx is done.
	Next(ctx context.Context) (Message, error)
	Cancel()
}

// Topic is the pubsub handle the aggregators depend on.
type Topic interface {
	Publish(ctx context.Context, data []byte) error
	Subscribe(ctx context.Context) (Subscription, error)
	Close() error
}
