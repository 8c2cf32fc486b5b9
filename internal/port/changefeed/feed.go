// Package changefeed defines the port for the durable change-event stream
// between the mutation path and the realtime fan-out.
package changefeed

import "context"

// Handler processes one message from the feed. Returning an error causes
// redelivery (at-least-once contract).
type Handler func(subject string, data []byte) error

// Feed is the event-stream abstraction the console's realtime updates ride
// on. Delivery is at-least-once; ordering is per entity by the store-assigned
// sequence number carried inside each event.
type Feed interface {
	// Publish sends a serialized change event to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject
	// pattern. The returned function stops the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (func(), error)
}
