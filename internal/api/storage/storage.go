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

const profileColumns = `p.id, p.first_name, p.last_name, p.profession, p.balance, p.type, p.created_at, p.updated_at`

const contractColumns = `c.id, c.terms, c.status, c.client_id, c.contractor_id, c.created_at, c.updated_at`

const jobColumns = `j.id, j.description, j.price, j.paid, j.payment_date, j.contract_id, j.created_at, j.updated_at`

// Storage is the ledger store backed by a pooled PostgreSQL handle.
type Storage struct {
	db          *sqlx.DB
	logger      *slog.Logger
	lockTimeout time.Duration
}

// Option customizes a Storage.
type Option func(*Storage)

// WithLockTimeout makes every ledger transaction wait at most d for a row lock.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Storage) {
		s.lockTimeout = d
	}
}

// NewStorage creates a new Storage instance
func NewStorage(db *sqlx.DB, logger *slog.Logger, opts ...Option) *Storage {
	s := &Storage{
		db:     db,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProfile loads a profile by id.
func (s *Storage) GetProfile(ctx context.Context, id int64) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE p.id = $1`

	var profile model.Profile
	if err := s.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// GetClient loads a profile by id only if it is a client.
func (s *Storage) GetClient(ctx context.Context, id int64) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles p WHERE p.id = $1 AND p.type = $2`

	var profile model.Profile
	if err := s.db.GetContext(ctx, &profile, query, id, model.ProfileTypeClient); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &profile, nil
}

// GetContractForProfile returns the contract only if profileID is its
// client or contractor.
func (s *Storage) GetContractForProfile(ctx context.Context, contractID, profileID int64) (*model.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts c
		WHERE c.id = $1
		  AND (c.client_id = $2 OR c.contractor_id = $2)
	`

	var contract model.Contract
	if err := s.db.GetContext(ctx, &contract, query, contractID, profileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	return &contract, nil
}

// ListActiveContracts returns the non-terminated contracts involving profileID.
func (s *Storage) ListActiveContracts(ctx context.Context, profileID int64) ([]model.Contract, error) {
	query := `
		SELECT ` + contractColumns + `
		FROM contracts c
		WHERE c.status <> $1
		  AND (c.client_id = $2 OR c.contractor_id = $2)
		ORDER BY c.id
	`

	contracts := []model.Contract{}
	if err := s.db.SelectContext(ctx, &contracts, query, model.ContractStatusTerminated, profileID); err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	return contracts, nil
}

// ListUnpaidJobs returns unpaid jobs on in-progress contracts involving profileID.
func (s *Storage) ListUnpaidJobs(ctx context.Context, profileID int64) ([]model.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE c.status = $1
		  AND (c.client_id = $2 OR c.contractor_id = $2)
		  AND COALESCE(j.paid, FALSE) = FALSE
		ORDER BY j.id
	`

	jobs := []model.Job{}
	if err := s.db.SelectContext(ctx, &jobs, query, model.ContractStatusInProgress, profileID); err != nil {
		return nil, fmt.Errorf("failed to list unpaid jobs: %w", err)
	}

	return jobs, nil
}

// FindJobContractor resolves the contractor owed for an unpaid job on one of
// clientID's contracts.
func (s *Storage) FindJobContractor(ctx context.Context, clientID, jobID int64) (*model.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.id = $1
		  AND c.client_id = $2
		  AND COALESCE(j.paid, FALSE) = FALSE
	`

	var contractor model.Profile
	if err := s.db.GetContext(ctx, &contractor, query, jobID, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve contractor: %w", err)
	}

	return &contractor, nil
}

// ClientDebt sums the prices of clientID's unpaid jobs.
func (s *Storage) ClientDebt(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	return clientDebt(ctx, s.db, clientID)
}

const clientDebtQuery = `
	SELECT COALESCE(SUM(j.price), 0)
	FROM jobs j
	JOIN contracts c ON c.id = j.contract_id
	WHERE c.client_id = $1
	  AND COALESCE(j.paid, FALSE) = FALSE
`

func clientDebt(ctx context.Context, q sqlx.QueryerContext, clientID int64) (decimal.Decimal, error) {
	var debt decimal.Decimal
	if err := sqlx.GetContext(ctx, q, &debt, clientDebtQuery, clientID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute client debt: %w", err)
	}
	return debt, nil
}
