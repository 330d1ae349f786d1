package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType doubles as the RabbitMQ routing key.
type EventType string

const (
	EventPaymentCompleted EventType = "ledger.payment.completed"
	EventDepositCompleted EventType = "ledger.deposit.completed"
)

// LedgerEvent describes a committed money movement.
type LedgerEvent struct {
	ID           uuid.UUID       `json:"event_id"`
	Type         EventType       `json:"type"`
	ClientID     int64           `json:"client_id"`
	ContractorID *int64          `json:"contractor_id,omitempty"`
	JobID        *int64          `json:"job_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NewPaymentEvent builds the event for a committed job payment.
func NewPaymentEvent(clientID, contractorID, jobID int64, price, clientBalance decimal.Decimal, at time.Time) LedgerEvent {
	return LedgerEvent{
		ID:           uuid.New(),
		Type:         EventPaymentCompleted,
		ClientID:     clientID,
		ContractorID: &contractorID,
		JobID:        &jobID,
		Amount:       price,
		BalanceAfter: clientBalance,
		OccurredAt:   at.UTC(),
	}
}

// NewDepositEvent builds the event for a committed deposit.
func NewDepositEvent(clientID int64, amount, balance decimal.Decimal, at time.Time) LedgerEvent {
	return LedgerEvent{
		ID:           uuid.New(),
		Type:         EventDepositCompleted,
		ClientID:     clientID,
		Amount:       amount,
		BalanceAfter: balance,
		OccurredAt:   at.UTC(),
	}
}
