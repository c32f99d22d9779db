package ports

import "context"

// Watchable defines an interface for stores that can notify about backend changes.
// This is typically used for hot-reload of a served catalog.
type Watchable interface {
	// Watch returns a channel that receives the name of each changed definition.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
