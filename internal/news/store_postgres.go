// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/epaper/internal/platform/database/schema"
	"github.com/taibuivan/epaper/internal/platform/dberr"
	"github.com/taibuivan/epaper/pkg/uuid"
)

const resourcePublication = "Publication"

// PostgresRepository implements [Repository] on news.publication.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed publication store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var publicationColumns = strings.Join(schema.NewsPublication.Columns(), ", ")

/*
Create inserts the publication in a single statement and returns its new ID.

Description: The ID is a UUIDv7 assigned here; CreatedAt is filled from the
database clock.
*/
func (repository *PostgresRepository) Create(context context.Context, publication *Publication) (string, error) {
	t := schema.NewsPublication
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`,
		t.Table, t.ID, t.Title, t.PublicationDate, t.IdentityKey, t.PageURLs, t.UploadedBy,
		t.CreatedAt,
	)

	id := uuid.New()
	var createdAt time.Time
	err := repository.pool.QueryRow(context, query,
		id,
		publication.Title,
		publication.PublicationDate,
		publication.IdentityKey,
		publication.PageURLs,
		publication.UploadedBy,
	).Scan(&createdAt)
	if err != nil {
		return "", fmt.Errorf("postgres: failed to insert publication: %w", err)
	}

	publication.CreatedAt = createdAt
	return id, nil
}

// ExistsByIdentityKey reports whether any publication uses the identity key.
func (repository *PostgresRepository) ExistsByIdentityKey(context context.Context, identityKey string) (bool, error) {
	t := schema.NewsPublication
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`, t.Table, t.IdentityKey)

	var exists bool
	if err := repository.pool.QueryRow(context, query, identityKey).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres: failed to check identity key: %w", err)
	}
	return exists, nil
}

// FindByID returns the publication with the given ID.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Publication, error) {
	t := schema.NewsPublication
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, publicationColumns, t.Table, t.ID)

	publication, err := scanPublication(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, resourcePublication)
	}
	return publication, nil
}

// FindLatestByDate returns the newest publication of a calendar date.
func (repository *PostgresRepository) FindLatestByDate(context context.Context, date time.Time) (*Publication, error) {
	t := schema.NewsPublication
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT 1`,
		publicationColumns, t.Table, t.PublicationDate, t.CreatedAt,
	)

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	publication, err := scanPublication(repository.pool.QueryRow(context, query, day))
	if err != nil {
		return nil, dberr.Wrap(err, resourcePublication)
	}
	return publication, nil
}

// List returns one page of publications, newest edition first, with the total
// count computed by a window function in the same query.
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Publication, int, error) {
	t := schema.NewsPublication
	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		ORDER BY %s DESC, %s DESC
		LIMIT $1 OFFSET $2`,
		publicationColumns, t.Table, t.PublicationDate, t.CreatedAt,
	)

	rows, err := repository.pool.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to list publications: %w", err)
	}
	defer rows.Close()

	publications := make([]*Publication, 0, limit)
	total := 0
	for rows.Next() {
		var publication Publication
		if err := rows.Scan(publicationFields(&publication, &total)...); err != nil {
			return nil, 0, fmt.Errorf("postgres: failed to scan publication: %w", err)
		}
		publications = append(publications, &publication)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres: failed to iterate publications: %w", err)
	}

	return publications, total, nil
}

// publicationFields returns scan targets in [schema.NewsPublicationTable.Columns]
// order, followed by any extra targets.
func publicationFields(publication *Publication, extra ...any) []any {
	return append([]any{
		&publication.ID,
		&publication.Title,
		&publication.PublicationDate,
		&publication.IdentityKey,
		&publication.PageURLs,
		&publication.UploadedBy,
		&publication.CreatedAt,
	}, extra...)
}

func scanPublication(row pgx.Row) (*Publication, error) {
	var publication Publication
	if err := row.Scan(publicationFields(&publication)...); err != nil {
		return nil, err
	}
	return &publication, nil
}
