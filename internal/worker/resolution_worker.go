// Package worker applies confirmed duplicate resolutions coming back from
// the review queue.
package worker

import (
	"context"
	"fmt"

	"bilancio/internal/amqp"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
)

// ResolutionWorker consumes confirmed resolutions and deletes the listed
// transactions with the service's guarded delete. Because the store may
// have changed since the review was requested, ids already gone are
// skipped silently rather than treated as failures.
type ResolutionWorker struct {
	service *services.ReconciliationService
	log     *applog.Logger
}

func NewResolutionWorker(service *services.ReconciliationService) *ResolutionWorker {
	return &ResolutionWorker{
		service: service,
		log:     applog.Default(applog.ComponentWorker),
	}
}

// HandleResolution processes one resolution message.
func (w *ResolutionWorker) HandleResolution(ctx context.Context, msg *amqp.ResolutionMessage) error {
	if !msg.Confirmed {
		w.log.InfoContext(ctx, "Resolution not confirmed, ignoring",
			"remove_ids", len(msg.RemoveIDs))
		return nil
	}
	if len(msg.RemoveIDs) == 0 {
		return nil
	}

	removed, skipped, err := w.service.RemoveDuplicates(ctx, msg.RemoveIDs)
	if err != nil {
		return fmt.Errorf("apply resolution: %w", err)
	}

	w.log.InfoContext(ctx, "Resolution applied",
		"requested", len(msg.RemoveIDs),
		applog.FieldRemoved, removed,
		applog.FieldSkipped, skipped)

	return nil
}
