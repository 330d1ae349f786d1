package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/contractor-ledger/internal/api/model"
)

// Report queries read without locks; under concurrent payments they may lag
// slightly behind.

// BestProfession returns the contractor profession with the highest paid
// total in [start, end], or nil when nothing was paid in the window.
func (s *Storage) BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionEarnings, error) {
	query := `
		SELECT p.profession, SUM(j.price) AS total_earned
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE p.type = $1
		  AND j.paid = TRUE
		  AND j.payment_date >= $2
		  AND j.payment_date <= $3
		GROUP BY p.profession
		ORDER BY total_earned DESC, p.profession ASC
		LIMIT 1
	`

	var row model.ProfessionEarnings
	if err := s.db.GetContext(ctx, &row, query, model.ProfileTypeContractor, start, end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to aggregate best profession: %w", err)
	}

	return &row, nil
}

// BestClients returns up to limit clients ordered by paid total in [start, end].
func (s *Storage) BestClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientSpending, error) {
	query := `
		SELECT p.id, p.first_name, p.last_name, SUM(j.price) AS total_spent
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE p.type = $1
		  AND j.paid = TRUE
		  AND j.payment_date >= $2
		  AND j.payment_date <= $3
		GROUP BY p.id, p.first_name, p.last_name
		ORDER BY total_spent DESC, p.id ASC
		LIMIT $4
	`

	rows := []model.ClientSpending{}
	if err := s.db.SelectContext(ctx, &rows, query, model.ProfileTypeClient, start, end, limit); err != nil {
		return nil, fmt.Errorf("failed to aggregate best clients: %w", err)
	}

	return rows, nil
}
