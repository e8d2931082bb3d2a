// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/internal/platform/database/schema"
	"github.com/taibuivan/epaper/internal/platform/dberr"
	"github.com/taibuivan/epaper/pkg/uuid"
)

const resourceAccount = "Account"

// userRepository implements [UserRepository] using pgx.
type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a PostgreSQL backed account store.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// FindByEmail looks the account up by its unique email.
func (repository *userRepository) FindByEmail(context context.Context, email string) (*User, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		SELECT %s, COALESCE(%s, ''), %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		t.ID, t.Name, t.Email, t.Password, t.CreatedAt, t.UpdatedAt,
		t.Table,
		t.Email,
	)

	var user User
	err := repository.pool.QueryRow(context, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, resourceAccount)
	}
	return &user, nil
}

// Create inserts the account; an empty name is stored as NULL.
func (repository *userRepository) Create(context context.Context, user *User) error {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING %s, %s`,
		t.Table, t.ID, t.Name, t.Email, t.Password,
		t.CreatedAt, t.UpdatedAt,
	)

	user.ID = uuid.New()
	err := repository.pool.QueryRow(context, query, user.ID, user.Name, user.Email, user.PasswordHash).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(MsgEmailExists)
		}
		return fmt.Errorf("postgres: failed to insert account: %w", err)
	}
	return nil
}
