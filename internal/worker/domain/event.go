package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

// LedgerEvent is a committed money movement as published by the API service.
type LedgerEvent struct {
	EventID      uuid.UUID       `json:"event_id" db:"event_id"`
	Type         string          `json:"type" db:"type"`
	ClientID     int64           `json:"client_id" db:"client_id"`
	ContractorID *int64          `json:"contractor_id,omitempty" db:"contractor_id"`
	JobID        *int64          `json:"job_id,omitempty" db:"job_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after" db:"balance_after"`
	OccurredAt   time.Time       `json:"occurred_at" db:"occurred_at"`
}

// EventMessage pairs a decoded event with the delivery to settle once it is handled.
type EventMessage struct {
	Event    *LedgerEvent
	Delivery amqp.Delivery
}

// ParseLedgerEvent decodes and validates a message body.
func ParseLedgerEvent(body []byte) (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}

func (e *LedgerEvent) Validate() error {
	if e.EventID == uuid.Nil {
		return fmt.Errorf("%w: missing event_id", ErrInvalidEvent)
	}
	if e.ClientID <= 0 {
		return fmt.Errorf("%w: missing client_id", ErrInvalidEvent)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidEvent)
	}

	switch e.Type {
	case EventTypePaymentCompleted:
		if e.JobID == nil || e.ContractorID == nil {
			return fmt.Errorf("%w: payment without job or contractor", ErrInvalidEvent)
		}
	case EventTypeDepositCompleted:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}
