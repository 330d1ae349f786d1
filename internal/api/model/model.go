package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money leaves the API as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProfileType discriminates the two kinds of account.
type ProfileType string

const (
	ProfileTypeClient     ProfileType = "client"
	ProfileTypeContractor ProfileType = "contractor"
)

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

type Profile struct {
	ID         int64           `db:"id" json:"id"`
	FirstName  string          `db:"first_name" json:"firstName"`
	LastName   string          `db:"last_name" json:"lastName"`
	Profession string          `db:"profession" json:"profession"`
	Balance    decimal.Decimal `db:"balance" json:"balance"`
	Type       ProfileType     `db:"type" json:"type"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`
}

func (p *Profile) IsClient() bool {
	return p != nil && p.Type == ProfileTypeClient
}

func (p *Profile) IsContractor() bool {
	return p != nil && p.Type == ProfileTypeContractor
}

type Contract struct {
	ID           int64          `db:"id" json:"id"`
	Terms        string         `db:"terms" json:"terms"`
	Status       ContractStatus `db:"status" json:"status"`
	ClientID     int64          `db:"client_id" json:"ClientId"`
	ContractorID int64          `db:"contractor_id" json:"ContractorId"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

type Job struct {
	ID          int64           `db:"id" json:"id"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Paid        *bool           `db:"paid" json:"paid"`
	PaymentDate *time.Time      `db:"payment_date" json:"paymentDate"`
	ContractID  int64           `db:"contract_id" json:"ContractId"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// IsPaid treats a NULL paid flag as unpaid.
func (j *Job) IsPaid() bool {
	return j.Paid != nil && *j.Paid
}

// JobCharge is a job together with the parties of its contract, read under
// a row lock at the start of a payment.
type JobCharge struct {
	JobID        int64           `db:"id"`
	Price        decimal.Decimal `db:"price"`
	Paid         *bool           `db:"paid"`
	ClientID     int64           `db:"client_id"`
	ContractorID int64           `db:"contractor_id"`
}

func (j *JobCharge) IsPaid() bool {
	return j.Paid != nil && *j.Paid
}

// ProfessionEarnings is one row of the best-profession report.
type ProfessionEarnings struct {
	Profession  string          `db:"profession" json:"profession"`
	TotalEarned decimal.Decimal `db:"total_earned" json:"total_earned"`
}

// ClientSpending is one row of the best-clients report.
type ClientSpending struct {
	ID         int64           `db:"id" json:"id"`
	FirstName  string          `db:"first_name" json:"firstName"`
	LastName   string          `db:"last_name" json:"lastName"`
	TotalSpent decimal.Decimal `db:"total_spent" json:"total_spent"`
}
