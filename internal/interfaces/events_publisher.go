package interfaces

import "context"

// EventPublisher delivers domain events to downstream consumers. The key
// groups related events so they keep their relative order.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}
