package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
	"github.com/cuongbtq/contractor-ledger/internal/api/model"
)

func newTestReports(store ReportStore) *ReportService {
	svc := NewReportService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestReportService_ResolvePeriod(t *testing.T) {
	svc := newTestReports(&fakeReportStore{})
	start := time.Date(2020, 8, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 8, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     *time.Time
		end       *time.Time
		want      Period
		wantError bool
	}{
		{name: "defaults to last day", want: Period{Start: fixedNow.Add(-24 * time.Hour), End: fixedNow}},
		{name: "both bounds", start: &start, end: &end, want: Period{Start: start, End: end}},
		{name: "start only", start: &start, want: Period{Start: start, End: fixedNow}},
		{name: "equal bounds", start: &start, end: &start, want: Period{Start: start, End: start}},
		{name: "inverted", start: &end, end: &start, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolvePeriod(tt.start, tt.end)
			if tt.wantError {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReportService_BestProfession(t *testing.T) {
	period := Period{Start: fixedNow.Add(-time.Hour), End: fixedNow}

	t.Run("returns top profession", func(t *testing.T) {
		store := &fakeReportStore{profession: &model.ProfessionEarnings{Profession: "Programmer", TotalEarned: money("2683")}}
		got, err := newTestReports(store).BestProfession(context.Background(), period)
		require.NoError(t, err)
		assert.Equal(t, "Programmer", got.Profession)
		assert.Equal(t, period.Start, store.gotStart)
		assert.Equal(t, period.End, store.gotEnd)
	})

	t.Run("nil without paid jobs", func(t *testing.T) {
		got, err := newTestReports(&fakeReportStore{}).BestProfession(context.Background(), period)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("store failure", func(t *testing.T) {
		_, err := newTestReports(&fakeReportStore{err: errConnectionReset}).BestProfession(context.Background(), period)
		assert.ErrorIs(t, err, domain.ErrStoreFailure)
	})
}

func TestReportService_BestClients(t *testing.T) {
	period := Period{Start: fixedNow.Add(-time.Hour), End: fixedNow}
	clients := []model.ClientSpending{
		{ID: 4, FirstName: "Ash", LastName: "Kethcum", TotalSpent: money("2020")},
		{ID: 2, FirstName: "Mr", LastName: "Robot", TotalSpent: money("442")},
		{ID: 1, FirstName: "Harry", LastName: "Potter", TotalSpent: money("442")},
	}

	tests := []struct {
		name     string
		limit    int
		wantErr  error
		wantRows int
	}{
		{name: "default limit", limit: DefaultClientLimit, wantRows: 2},
		{name: "limit of one", limit: 1, wantRows: 1},
		{name: "max limit", limit: MaxClientLimit, wantRows: 3},
		{name: "over max", limit: MaxClientLimit + 1, wantErr: domain.ErrReportLimitExceeded},
		{name: "zero", limit: 0, wantErr: domain.ErrInvalidInput},
		{name: "negative", limit: -3, wantErr: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeReportStore{clients: clients}
			rows, err := newTestReports(store).BestClients(context.Background(), period, tt.limit)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, store.calls, "invalid limits must not reach the store")
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tt.wantRows)
			assert.Equal(t, tt.limit, store.gotLimit)
			for i := 1; i < len(rows); i++ {
				assert.False(t, rows[i].TotalSpent.GreaterThan(rows[i-1].TotalSpent))
			}
		})
	}
}

func TestReportLimitExceeded_IsInvalidInput(t *testing.T) {
	assert.ErrorIs(t, domain.ErrReportLimitExceeded, domain.ErrInvalidInput)
}
