package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
	"github.com/cuongbtq/contractor-ledger/internal/api/model"
)

const (
	DefaultClientLimit = 2
	MaxClientLimit     = 100
	defaultReportSpan  = 24 * time.Hour
)

type ReportStore interface {
	BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionEarnings, error)
	BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientSpending, error)
}

// Period is an inclusive [Start, End] window over job payment dates.
type Period struct {
	Start time.Time
	End   time.Time
}

type ReportService struct {
	store ReportStore
	now   func() time.Time
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store, now: time.Now}
}

// ResolvePeriod fills missing bounds with the last day and rejects inverted
// ranges.
func (s *ReportService) ResolvePeriod(start, end *time.Time) (Period, error) {
	now := s.now()
	period := Period{Start: now.Add(-defaultReportSpan), End: now}
	if start != nil {
		period.Start = *start
	}
	if end != nil {
		period.End = *end
	}

	if period.Start.After(period.End) {
		return Period{}, fmt.Errorf("%w: end date can not be older than start date", domain.ErrInvalidInput)
	}
	return period, nil
}

// BestProfession returns nil when no job was paid in the period.
func (s *ReportService) BestProfession(ctx context.Context, period Period) (*model.ProfessionEarnings, error) {
	row, err := s.store.BestProfession(ctx, period.Start, period.End)
	if err != nil {
		return nil, domain.StoreFailure(err)
	}
	return row, nil
}

// BestClients returns at most limit clients, highest spender first.
func (s *ReportService) BestClients(ctx context.Context, period Period, limit int) ([]model.ClientSpending, error) {
	if limit > MaxClientLimit {
		return nil, domain.ErrReportLimitExceeded
	}
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidInput)
	}

	rows, err := s.store.BestClients(ctx, period.Start, period.End, limit)
	if err != nil {
		return nil, domain.StoreFailure(err)
	}
	return rows, nil
}
