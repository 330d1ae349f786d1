package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuongbtq/contractor-ledger/internal/api/domain"
	"github.com/cuongbtq/contractor-ledger/internal/api/model"
	"github.com/cuongbtq/contractor-ledger/internal/api/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeJob struct {
	price        decimal.Decimal
	paid         bool
	paidAt       *time.Time
	clientID     int64
	contractorID int64
}

type ledgerState struct {
	profiles map[int64]model.Profile
	jobs     map[int64]fakeJob
}

func (s ledgerState) clone() ledgerState {
	return ledgerState{profiles: maps.Clone(s.profiles), jobs: maps.Clone(s.jobs)}
}

// fakeLedgerStore applies a transaction's writes only when fn returns nil.
type fakeLedgerStore struct {
	state     ledgerState
	locks     []int64
	txCount   int
	markErr   error
	commitErr error
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{state: ledgerState{
		profiles: map[int64]model.Profile{},
		jobs:     map[int64]fakeJob{},
	}}
}

func (f *fakeLedgerStore) addClient(id int64, balance string) {
	f.state.profiles[id] = model.Profile{ID: id, FirstName: "client", Balance: money(balance), Type: model.ProfileTypeClient}
}

func (f *fakeLedgerStore) addContractor(id int64, balance, profession string) {
	f.state.profiles[id] = model.Profile{ID: id, Profession: profession, Balance: money(balance), Type: model.ProfileTypeContractor}
}

func (f *fakeLedgerStore) addJob(id, clientID, contractorID int64, price string, paid bool) {
	f.state.jobs[id] = fakeJob{price: money(price), paid: paid, clientID: clientID, contractorID: contractorID}
}

func (f *fakeLedgerStore) balance(id int64) decimal.Decimal {
	return f.state.profiles[id].Balance
}

func (f *fakeLedgerStore) GetClient(_ context.Context, id int64) (*model.Profile, error) {
	p, ok := f.state.profiles[id]
	if !ok || !p.IsClient() {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (f *fakeLedgerStore) FindJobContractor(_ context.Context, clientID, jobID int64) (*model.Profile, error) {
	job, ok := f.state.jobs[jobID]
	if !ok || job.clientID != clientID || job.paid {
		return nil, domain.ErrNotFound
	}
	p := f.state.profiles[job.contractorID]
	return &p, nil
}

func (f *fakeLedgerStore) ClientDebt(_ context.Context, clientID int64) (decimal.Decimal, error) {
	return debtOf(f.state, clientID), nil
}

func debtOf(state ledgerState, clientID int64) decimal.Decimal {
	debt := decimal.Zero
	for _, job := range state.jobs {
		if job.clientID == clientID && !job.paid {
			debt = debt.Add(job.price)
		}
	}
	return debt
}

func (f *fakeLedgerStore) InTx(_ context.Context, fn func(tx storage.LedgerTx) error) error {
	f.txCount++
	working := f.state.clone()
	if err := fn(&fakeLedgerTx{store: f, state: working}); err != nil {
		return err
	}
	if f.commitErr != nil {
		return f.commitErr
	}
	f.state = working
	return nil
}

type fakeLedgerTx struct {
	store *fakeLedgerStore
	state ledgerState
}

func (t *fakeLedgerTx) LockProfile(_ context.Context, id int64) (*model.Profile, error) {
	t.store.locks = append(t.store.locks, id)
	p, ok := t.state.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (t *fakeLedgerTx) LockJobCharge(_ context.Context, jobID int64) (*model.JobCharge, error) {
	job, ok := t.state.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	paid := job.paid
	return &model.JobCharge{
		JobID:        jobID,
		Price:        job.price,
		Paid:         &paid,
		ClientID:     job.clientID,
		ContractorID: job.contractorID,
	}, nil
}

func (t *fakeLedgerTx) ClientDebt(_ context.Context, clientID int64) (decimal.Decimal, error) {
	return debtOf(t.state, clientID), nil
}

func (t *fakeLedgerTx) SetBalance(_ context.Context, profileID int64, balance decimal.Decimal) error {
	p, ok := t.state.profiles[profileID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Balance = balance
	t.state.profiles[profileID] = p
	return nil
}

func (t *fakeLedgerTx) MarkJobPaid(_ context.Context, jobID int64, paidAt time.Time) error {
	if t.store.markErr != nil {
		return t.store.markErr
	}
	job, ok := t.state.jobs[jobID]
	if !ok || job.paid {
		return domain.ErrJobAlreadyPaid
	}
	job.paid = true
	job.paidAt = &paidAt
	t.state.jobs[jobID] = job
	return nil
}

type recordingPublisher struct {
	events []domain.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.LedgerEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type fakeReportStore struct {
	profession *model.ProfessionEarnings
	clients    []model.ClientSpending
	err        error

	gotStart time.Time
	gotEnd   time.Time
	gotLimit int
	calls    int
}

func (f *fakeReportStore) BestProfession(_ context.Context, start, end time.Time) (*model.ProfessionEarnings, error) {
	f.calls++
	f.gotStart, f.gotEnd = start, end
	return f.profession, f.err
}

func (f *fakeReportStore) BestClients(_ context.Context, start, end time.Time, limit int) ([]model.ClientSpending, error) {
	f.calls++
	f.gotStart, f.gotEnd, f.gotLimit = start, end, limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.clients) {
		return f.clients[:limit], nil
	}
	return f.clients, nil
}

var errConnectionReset = errors.New("connection reset by peer")
