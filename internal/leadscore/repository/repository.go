// Package repository implements the lead source against Postgres. The
// schema is owned by the upstream lead management system; this package only
// reads the columns the scorer needs and writes scores back.
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadscout_backend/internal/leadscore"
	"leadscout_backend/platform/apperr"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Read loads the scoring snapshot of one lead.
func (r *Repository) Read(ctx context.Context, id uuid.UUID) (*leadscore.LeadRecord, error) {
	var (
		lead   leadscore.LeadRecord
		phones []string
		raw    map[string]string
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id, phone_numbers, COALESCE(email, ''),
		       COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(address, ''), address_verified,
		       COALESCE(state, ''), COALESCE(county, ''),
		       COALESCE(verification_status, ''), ownership_verified,
		       COALESCE(raw_import_fields, '{}'::jsonb)
		FROM leads
		WHERE id = $1
	`, id).Scan(
		&lead.ID, &phones, &lead.Email,
		&lead.FirstName, &lead.LastName,
		&lead.Address, &lead.AddressVerified,
		&lead.State, &lead.County,
		&lead.VerificationStatus, &lead.OwnershipVerified,
		&raw,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}

	lead.PhoneNumbers = phones
	lead.RawImportFields = raw
	return &lead, nil
}

// ListPage returns a page of lead IDs ordered by ID for the backfill job.
// Pass uuid.Nil as after for the first page.
func (r *Repository) ListPage(ctx context.Context, after uuid.UUID, limit int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM leads
		WHERE id > $1
		ORDER BY id ASC
		LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// WriteScore persists a computed score back onto the lead row.
func (r *Repository) WriteScore(ctx context.Context, result *leadscore.LeadScoreResult) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET score = $2, score_category = $3, scored_at = $4
		WHERE id = $1
	`, result.LeadID, result.Score, result.Category, result.ScoredAt)
	return err
}

var _ leadscore.LeadSource = (*Repository)(nil)
