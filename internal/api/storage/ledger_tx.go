package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
	"github.com/cuongbtq/contractor-ledger/internal/api/model"
)

// LedgerTx is the set of reads and writes available inside one ledger
// transaction. Reads that return rows to be modified take row locks.
type LedgerTx interface {
	LockProfile(ctx context.Context, id int64) (*model.Profile, error)
	LockJobCharge(ctx context.Context, jobID int64) (*model.JobCharge, error)
	ClientDebt(ctx context.Context, clientID int64) (decimal.Decimal, error)
	SetBalance(ctx context.Context, profileID int64, balance decimal.Decimal) error
	MarkJobPaid(ctx context.Context, jobID int64, paidAt time.Time) error
}

// InTx runs fn inside a database transaction, committing when fn returns nil
// and rolling back otherwise. The transaction is detached from ctx
// cancellation so a disconnecting caller never leaves it half-applied.
func (s *Storage) InTx(ctx context.Context, fn func(tx LedgerTx) error) (err error) {
	ctx = context.WithoutCancel(ctx)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error("Failed to roll back ledger transaction",
					slog.Any("error", rbErr),
				)
			}
		}
	}()

	if s.lockTimeout > 0 {
		// SET does not take bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	if err = fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

type ledgerTx struct {
	tx *sqlx.Tx
}

func (t *ledgerTx) LockProfile(ctx context.Context, id int64) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE p.id = $1 FOR UPDATE`

	var profile model.Profile
	if err := t.tx.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock profile %d: %w", id, err)
	}

	return &profile, nil
}

func (t *ledgerTx) LockJobCharge(ctx context.Context, jobID int64) (*model.JobCharge, error) {
	query := `
		SELECT j.id, j.price, j.paid, c.client_id, c.contractor_id
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE j.id = $1
		FOR UPDATE OF j
	`

	var charge model.JobCharge
	if err := t.tx.GetContext(ctx, &charge, query, jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock job %d: %w", jobID, err)
	}

	return &charge, nil
}

func (t *ledgerTx) ClientDebt(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	return clientDebt(ctx, t.tx, clientID)
}

func (t *ledgerTx) SetBalance(ctx context.Context, profileID int64, balance decimal.Decimal) error {
	query := `UPDATE profiles SET balance = $1, updated_at = NOW() WHERE id = $2`

	result, err := t.tx.ExecContext(ctx, query, balance, profileID)
	if err != nil {
		return fmt.Errorf("failed to update balance of profile %d: %w", profileID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (t *ledgerTx) MarkJobPaid(ctx context.Context, jobID int64, paidAt time.Time) error {
	query := `
		UPDATE jobs
		SET paid = TRUE,
		    payment_date = $1,
		    updated_at = NOW()
		WHERE id = $2
		  AND COALESCE(paid, FALSE) = FALSE
	`

	result, err := t.tx.ExecContext(ctx, query, paidAt, jobID)
	if err != nil {
		return fmt.Errorf("failed to mark job %d paid: %w", jobID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrJobAlreadyPaid
	}

	return nil
}
