package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
	"github.com/cuongbtq/contractor-ledger/internal/api/model"
	"github.com/cuongbtq/contractor-ledger/internal/api/storage"
)

// depositRatio caps a deposit at this fraction of the client's outstanding debt.
var depositRatio = decimal.RequireFromString("0.25")

// LedgerStore is the part of the storage layer the ledger operations need.
type LedgerStore interface {
	GetClient(ctx context.Context, id int64) (*model.Profile, error)
	FindJobContractor(ctx context.Context, clientID, jobID int64) (*model.Profile, error)
	ClientDebt(ctx context.Context, clientID int64) (decimal.Decimal, error)
	InTx(ctx context.Context, fn func(tx storage.LedgerTx) error) error
}

// EventPublisher receives ledger events after their transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
}

type LedgerService struct {
	store     LedgerStore
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

type PaymentInput struct {
	ClientID     int64
	ContractorID int64
	JobID        int64
}

type PaymentResult struct {
	JobID         int64
	Price         decimal.Decimal
	ClientBalance decimal.Decimal
	PaidAt        time.Time
}

type DepositResult struct {
	ClientID int64
	Amount   decimal.Decimal
	Balance  decimal.Decimal
}

// NewLedgerService wires the ledger operations. A nil publisher disables events.
func NewLedgerService(store LedgerStore, publisher EventPublisher, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ClientDebt returns the sum of the client's unpaid job prices, zero when
// nothing is owed.
func (s *LedgerService) ClientDebt(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		return decimal.Zero, domain.StoreFailure(err)
	}

	debt, err := s.store.ClientDebt(ctx, clientID)
	if err != nil {
		return decimal.Zero, domain.StoreFailure(err)
	}
	return debt, nil
}

// ResolveContractor finds the contractor owed for an unpaid job on one of the
// payer's contracts.
func (s *LedgerService) ResolveContractor(ctx context.Context, payer *model.Profile, jobID int64) (*model.Profile, error) {
	if !payer.IsClient() {
		return nil, domain.ErrForbidden
	}

	contractor, err := s.store.FindJobContractor(ctx, payer.ID, jobID)
	if err != nil {
		return nil, domain.StoreFailure(err)
	}
	return contractor, nil
}

// PayJob moves the job price from client to contractor and marks the job paid,
// all in one transaction.
func (s *LedgerService) PayJob(ctx context.Context, input PaymentInput) (*PaymentResult, error) {
	paidAt := s.now()
	var result PaymentResult

	err := s.store.InTx(ctx, func(tx storage.LedgerTx) error {
		charge, err := tx.LockJobCharge(ctx, input.JobID)
		if err != nil {
			return err
		}
		if charge.ClientID != input.ClientID || charge.ContractorID != input.ContractorID {
			return domain.ErrNotFound
		}
		if charge.IsPaid() {
			return domain.ErrJobAlreadyPaid
		}

		client, contractor, err := lockParties(ctx, tx, input.ClientID, input.ContractorID)
		if err != nil {
			return err
		}

		clientBalance := client.Balance.Sub(charge.Price)
		if clientBalance.IsNegative() {
			return domain.ErrInsufficientFunds
		}

		if err := tx.SetBalance(ctx, client.ID, clientBalance); err != nil {
			return err
		}
		if err := tx.SetBalance(ctx, contractor.ID, contractor.Balance.Add(charge.Price)); err != nil {
			return err
		}
		if err := tx.MarkJobPaid(ctx, charge.JobID, paidAt); err != nil {
			return err
		}

		result = PaymentResult{
			JobID:         charge.JobID,
			Price:         charge.Price,
			ClientBalance: clientBalance,
			PaidAt:        paidAt,
		}
		return nil
	})
	if err != nil {
		return nil, domain.StoreFailure(err)
	}

	s.logger.Info("Job paid",
		slog.Int64("profile_id", input.ClientID),
		slog.Int64("contractor_id", input.ContractorID),
		slog.Int64("job_id", result.JobID),
		slog.String("amount", result.Price.String()),
	)

	s.publish(ctx, input.ClientID, domain.NewPaymentEvent(
		input.ClientID, input.ContractorID, result.JobID, result.Price, result.ClientBalance, paidAt,
	))

	return &result, nil
}

// lockParties takes the row locks of both profiles in ascending id order so
// opposite-direction payments between the same pair cannot deadlock.
func lockParties(ctx context.Context, tx storage.LedgerTx, clientID, contractorID int64) (*model.Profile, *model.Profile, error) {
	first, second := clientID, contractorID
	if second < first {
		first, second = second, first
	}

	locked := make(map[int64]*model.Profile, 2)
	for _, id := range []int64{first, second} {
		profile, err := tx.LockProfile(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		locked[id] = profile
	}

	client, contractor := locked[clientID], locked[contractorID]
	if !client.IsClient() || !contractor.IsContractor() {
		return nil, nil, domain.ErrNotFound
	}
	return client, contractor, nil
}

// Deposit credits a client's balance. The amount may not exceed a quarter of
// the client's outstanding debt, computed after the client row is locked.
func (s *LedgerService) Deposit(ctx context.Context, clientID int64, amount decimal.Decimal) (*DepositResult, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}

	var result DepositResult

	err := s.store.InTx(ctx, func(tx storage.LedgerTx) error {
		client, err := tx.LockProfile(ctx, clientID)
		if err != nil {
			return err
		}
		if !client.IsClient() {
			return domain.ErrNotFound
		}

		debt, err := tx.ClientDebt(ctx, clientID)
		if err != nil {
			return err
		}

		limit := debt.Mul(depositRatio)
		if amount.GreaterThan(limit) {
			return &domain.DepositLimitError{Amount: amount, Limit: limit}
		}

		balance := client.Balance.Add(amount)
		if err := tx.SetBalance(ctx, clientID, balance); err != nil {
			return err
		}

		result = DepositResult{ClientID: clientID, Amount: amount, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, domain.StoreFailure(err)
	}

	s.logger.Info("Deposit processed",
		slog.Int64("profile_id", clientID),
		slog.String("amount", amount.String()),
	)

	s.publish(ctx, clientID, domain.NewDepositEvent(clientID, amount, result.Balance, s.now()))

	return &result, nil
}

func (s *LedgerService) publish(ctx context.Context, profileID int64, event domain.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Error("Failed to publish ledger event",
			slog.Int64("profile_id", profileID),
			slog.String("event_id", event.ID.String()),
			slog.String("type", string(event.Type)),
			slog.Any("error", err),
		)
	}
}
