// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/epaper/internal/platform/database/schema"
	"github.com/taibuivan/epaper/internal/platform/dberr"
	"github.com/taibuivan/epaper/internal/users/auth"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a new [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func selectColumns() string {
	t := schema.UserAccount
	return fmt.Sprintf("%s, COALESCE(%s, ''), %s, %s, %s",
		t.ID, t.Name, t.Email, t.CreatedAt, t.UpdatedAt)
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var user auth.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, dberr.Wrap(err, resourceUser)
	}
	return &user, nil
}

// FindByID loads the profile columns; the password hash is never selected.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*auth.User, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns(), t.Table, t.ID)
	return scanUser(repository.pool.QueryRow(context, query, id))
}

// UpdateName sets the display name and returns the updated row.
func (repository *PostgresRepository) UpdateName(context context.Context, id, name string) (*auth.User, error) {
	t := schema.UserAccount
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		t.Table, t.Name, t.UpdatedAt, t.ID, selectColumns(),
	)
	return scanUser(repository.pool.QueryRow(context, query, id, name))
}
