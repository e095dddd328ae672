package services

import (
	"context"

	"ride-dispatch/internal/dispatch-service/core/domain/model"
	"ride-dispatch/internal/dispatch-service/core/ports"
	"ride-dispatch/internal/mylogger"
)

// publishAll sends pending notifications in the order produced. Fan-out is a
// best-effort side channel: a failed publish is logged and swallowed, never
// rolled back against the storage commit that already happened.
func publishAll(ctx context.Context, log mylogger.Logger, notifier ports.INotifier, effects []model.NotifyEffect) {
	for _, e := range effects {
		if err := notifier.Publish(ctx, e.Topic, e.Recipients, e.Payload); err != nil {
			log.Error("failed to publish notification", err, "topic", e.Topic)
		}
	}
}
