package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when an id is unknown or a relationship chain is broken.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the acting profile has the wrong type for an operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInsufficientFunds is returned when a payment would drive the client balance negative.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDepositLimitExceeded is matched by every *DepositLimitError.
	ErrDepositLimitExceeded = errors.New("deposit limit exceeded")

	// ErrInvalidInput is returned for bad ranges, limits and amounts.
	ErrInvalidInput = errors.New("invalid input")

	// ErrReportLimitExceeded is an ErrInvalidInput reported with its own status.
	ErrReportLimitExceeded = fmt.Errorf("%w: can only request up to 100 clients", ErrInvalidInput)

	// ErrJobAlreadyPaid is returned when a job was paid between resolution and the transaction.
	ErrJobAlreadyPaid = errors.New("job already paid")

	// ErrStoreFailure wraps any other failure of the underlying store.
	ErrStoreFailure = errors.New("store failure")
)

// DepositLimitError reports the largest deposit the client may make right now.
type DepositLimitError struct {
	Amount decimal.Decimal
	Limit  decimal.Decimal
}

func (e *DepositLimitError) Error() string {
	return fmt.Sprintf("Can't deposit more than %s", e.Limit.String())
}

func (e *DepositLimitError) Is(target error) bool {
	return target == ErrDepositLimitExceeded
}

// StoreFailure wraps err with ErrStoreFailure unless it already carries a
// domain error.
func StoreFailure(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrNotFound,
		ErrForbidden,
		ErrInsufficientFunds,
		ErrDepositLimitExceeded,
		ErrInvalidInput,
		ErrJobAlreadyPaid,
		ErrStoreFailure,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}
