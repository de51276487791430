package interfaces

import "context"

// EventPublisher emits domain events to an external broker. Publishing is
// best-effort and happens outside the transfer unit of work: a failed
// publish never fails a committed transfer.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
