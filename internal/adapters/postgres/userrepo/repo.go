// Package userrepo is the Postgres implementation of the user repository.
package userrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ghumakkad/trip-share-api/internal/adapters/postgres"
	"github.com/ghumakkad/trip-share-api/internal/domain"
	"github.com/ghumakkad/trip-share-api/internal/ports/out/userrepo"
)

type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (external_id, email, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return userrepo.ErrAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	return r.get(ctx, `WHERE external_id = $1`, id)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (userrepo.User, error) {
	return r.get(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (r *Repo) List(ctx context.Context) ([]userrepo.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT external_id, email, password_hash, is_admin, created_at
		FROM users
		ORDER BY created_at, external_id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []userrepo.User
	for rows.Next() {
		var u userrepo.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func (r *Repo) get(ctx context.Context, where string, arg any) (userrepo.User, error) {
	var u userrepo.User
	err := r.pool.QueryRow(ctx, `
		SELECT external_id, email, password_hash, is_admin, created_at
		FROM users `+where, arg,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userrepo.User{}, userrepo.ErrNotFound
		}
		return userrepo.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}
