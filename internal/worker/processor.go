package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/contractor-ledger/internal/worker/domain"
)

// processEvent records a single ledger event within the configured timeout.
func (w *Worker) processEvent(ctx context.Context, event *domain.LedgerEvent) error {
	eventCtx := context.WithoutCancel(ctx)
	if w.eventTimeout > 0 {
		var cancel context.CancelFunc
		eventCtx, cancel = context.WithTimeout(eventCtx, w.eventTimeout)
		defer cancel()
	}

	inserted, err := w.store.RecordEvent(eventCtx, event)
	if err != nil {
		return domain.NewRetryableError(fmt.Errorf("failed to record event %s: %w", event.EventID, err))
	}

	attrs := []any{
		slog.String("event_id", event.EventID.String()),
		slog.String("type", event.Type),
		slog.Int64("profile_id", event.ClientID),
		slog.String("amount", event.Amount.String()),
	}
	if !inserted {
		w.logger.Info("Duplicate ledger event skipped", attrs...)
		return nil
	}

	w.logger.Info("Ledger event recorded", attrs...)
	return nil
}
