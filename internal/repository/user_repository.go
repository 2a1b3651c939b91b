package repository

import (
	"context"
	"fmt"

	"lensstore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type userRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool, logger zerolog.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, NULLIF($3, ''))
		RETURNING created_at
	`, user.ID, user.Email, user.PasswordHash).Scan(&user.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to create user")
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, hash)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to update password")
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
