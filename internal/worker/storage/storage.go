package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/cuongbtq/contractor-ledger/internal/worker/domain"
)

// Storage handles all database operations for the worker
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// RecordEvent appends the event to the audit table. It reports false when the
// event id was already recorded, which happens on redelivery.
func (s *Storage) RecordEvent(ctx context.Context, event *domain.LedgerEvent) (bool, error) {
	query := `
		INSERT INTO ledger_events (
			event_id, type, client_id, contractor_id, job_id,
			amount, balance_after, occurred_at, recorded_at
		) VALUES (
			:event_id, :type, :client_id, :contractor_id, :job_id,
			:amount, :balance_after, :occurred_at, NOW()
		)
		ON CONFLICT (event_id) DO NOTHING
	`

	result, err := s.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return false, fmt.Errorf("failed to record ledger event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Ledger event already recorded",
			slog.String("event_id", event.EventID.String()),
		)
		return false, nil
	}

	return true, nil
}
