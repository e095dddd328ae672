package ports

import (
	"context"

	"github.com/google/uuid"
)

// INotifier publishes a typed event addressed to a set of recipients.
// Fire-and-forget: the core never observes an acknowledgment, and a failed
// publish is logged by the caller, never rolled back against storage.
type INotifier interface {
	Publish(ctx context.Context, topic string, recipients []uuid.UUID, payload any) error
	Close() error
}
