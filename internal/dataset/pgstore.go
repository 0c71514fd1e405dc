package dataset

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

// PGStore persists examples in Postgres, for fleets of parsers feeding
// one shared dataset. It satisfies the same Store interface as the
// filesystem store.
type PGStore struct {
	pool *pgxpool.Pool
}

// OpenPG connects to the database and applies the schema.
func OpenPG(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("dataset: connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("dataset: pinging postgres: %w", err)
	}

	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, string(sqlBytes)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("dataset: applying schema: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PGStore) Close() { s.pool.Close() }

// Save upserts one example by name, so rebuilding a dataset is
// idempotent.
func (s *PGStore) Save(ctx context.Context, name string, ex Example) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO examples(name, context, truth)
        VALUES ($1,$2,$3)
        ON CONFLICT (name) DO UPDATE
          SET context = EXCLUDED.context,
              truth = EXCLUDED.truth
    `, name, ex.Context, ex.Truth)
	if err != nil {
		return fmt.Errorf("dataset: saving example %s: %w", name, err)
	}
	return nil
}

// Load reads every example in name order, matching the filesystem
// store's deterministic enumeration.
func (s *PGStore) Load(ctx context.Context) ([]Example, error) {
	rows, err := s.pool.Query(ctx, `SELECT context, truth FROM examples ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("dataset: loading examples: %w", err)
	}
	defer rows.Close()

	var examples []Example
	for rows.Next() {
		var ex Example
		if err := rows.Scan(&ex.Context, &ex.Truth); err != nil {
			return nil, fmt.Errorf("dataset: scanning example: %w", err)
		}
		examples = append(examples, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dataset: iterating examples: %w", err)
	}
	return examples, nil
}
