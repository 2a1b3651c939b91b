package repository

import (
	"context"
	"fmt"

	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type profileRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProfileRepository {
	return &profileRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "profile").Logger(),
	}
}

func (r *profileRepository) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	query := `
		SELECT id, full_name, cpf, phone, cep, address_line1, city, state, updated_at
		FROM profiles
		WHERE id = $1
	`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.FullName, &p.CPF, &p.Phone, &p.CEP, &p.AddressLine1, &p.City, &p.State, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query profile")
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	return &p, nil
}

func (r *profileRepository) Upsert(ctx context.Context, p *model.Profile) error {
	query := `
		INSERT INTO profiles (id, full_name, cpf, phone, cep, address_line1, city, state, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			cpf = EXCLUDED.cpf,
			phone = EXCLUDED.phone,
			cep = EXCLUDED.cep,
			address_line1 = EXCLUDED.address_line1,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.UserID, p.FullName, p.CPF, p.Phone, p.CEP, p.AddressLine1, p.City, p.State,
	).Scan(&p.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", p.UserID.String()).Msg("failed to upsert profile")
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}
