package practices

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads practice rows.
type Repository interface {
	ListByCode(ctx context.Context, code string) ([]Practice, error)
	ListByID(ctx context.Context, id *string) ([]Practice, error)
}

type rowsQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository reads the practices table.
type PostgresRepository struct {
	db rowsQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("practices: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(q rowsQuerier) *PostgresRepository {
	if q == nil {
		panic("practices: querier required")
	}
	return &PostgresRepository{db: q}
}

const selectPractice = `
	SELECT id::text, practice_code, name,
		COALESCE(logo, ''), COALESCE(phone, ''), COALESCE(email, ''),
		COALESCE(website, ''), COALESCE(street_address, ''), COALESCE(city, ''),
		COALESCE(timezone, '')
	FROM practices
`

// ListByCode returns every practice published under the public code.
func (r *PostgresRepository) ListByCode(ctx context.Context, code string) ([]Practice, error) {
	return r.list(ctx, selectPractice+`WHERE practice_code = $1`, code)
}

// ListByID returns the practice with the given id. A nil id is valid and
// yields no rows.
func (r *PostgresRepository) ListByID(ctx context.Context, id *string) ([]Practice, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	return r.list(ctx, selectPractice+`WHERE id = $1`, *id)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]Practice, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("practices: select failed: %w", err)
	}
	defer rows.Close()

	var out []Practice
	for rows.Next() {
		var p Practice
		if err := rows.Scan(
			&p.ID,
			&p.Code,
			&p.Name,
			&p.Logo,
			&p.Phone,
			&p.Email,
			&p.Website,
			&p.StreetAddress,
			&p.City,
			&p.Timezone,
		); err != nil {
			return nil, fmt.Errorf("practices: scan failed: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("practices: rows: %w", err)
	}
	return out, nil
}

// InMemoryRepository keeps practices in a slice; used by tests and local runs
// without a database.
type InMemoryRepository struct {
	practices []Practice
}

// NewInMemoryRepository seeds an in-memory repository.
func NewInMemoryRepository(seed ...Practice) *InMemoryRepository {
	return &InMemoryRepository{practices: append([]Practice(nil), seed...)}
}

func (r *InMemoryRepository) ListByCode(_ context.Context, code string) ([]Practice, error) {
	var out []Practice
	for _, p := range r.practices {
		if p.Code == code {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) ListByID(_ context.Context, id *string) ([]Practice, error) {
	if id == nil {
		return nil, nil
	}
	var out []Practice
	for _, p := range r.practices {
		if p.ID == *id {
			out = append(out, p)
		}
	}
	return out, nil
}
