package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/config"
)

// Seed is idempotent: it ensures a default department and the bootstrap
// admin account exist, and never overwrites an existing user.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if _, err := pool.Exec(ctx, `
    INSERT INTO departments (name) VALUES ('General Administration')
    ON CONFLICT (name) DO NOTHING
  `); err != nil {
		return err
	}

	if cfg.SeedAdminPassword == "" {
		return nil
	}
	return ensureAdminUser(ctx, pool, cfg.SeedAdminUsername, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, username, email, password string) error {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (name, username, email, job_number, role, password_hash)
    VALUES ($1, $2, $3, $4, $5, $6)
  `, "System Administrator", username, email, "0001", auth.RoleAdmin, hash)
	return err
}
