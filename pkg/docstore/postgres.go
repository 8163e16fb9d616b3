package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/college-hq/advising-engine/pkg/apperrors"
)

// PostgresStore is a Store backed by a single JSONB documents table
// (see migrations/0001_create_documents.up.sql).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing connection pool. The pool is owned
// by the caller until Close is called on the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM engine_documents WHERE collection = $1 AND key = $2`,
		collection, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return value, nil
}

// Put implements Store with an upsert.
func (s *PostgresStore) Put(ctx context.Context, collection, key string, value []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO engine_documents (collection, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (collection, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		collection, key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

// Update implements Store. The current row is locked with
// SELECT ... FOR UPDATE inside a transaction, so concurrent updates on
// the same key serialize instead of losing writes.
func (s *PostgresStore) Update(ctx context.Context, collection, key string, fn UpdateFunc) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin update transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current []byte
	err = tx.QueryRow(ctx,
		`SELECT value FROM engine_documents WHERE collection = $1 AND key = $2 FOR UPDATE`,
		collection, key,
	).Scan(&current)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to read document for update: %w", err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO engine_documents (collection, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (collection, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		collection, key, next,
	)
	if err != nil {
		return fmt.Errorf("failed to write updated document: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}
	return nil
}

// Delete implements Store; deleting an absent key succeeds.
func (s *PostgresStore) Delete(ctx context.Context, collection, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM engine_documents WHERE collection = $1 AND key = $2`,
		collection, key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// Scan implements Store.
func (s *PostgresStore) Scan(ctx context.Context, collection string, fn ScanFunc) error {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM engine_documents WHERE collection = $1`,
		collection,
	)
	if err != nil {
		return fmt.Errorf("failed to scan collection: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan document row: %w", err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating documents: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ensure PostgresStore implements Store at compile time.
var _ Store = (*PostgresStore)(nil)
