// Package pgx implements the GraphStore interface on PostgreSQL. Entities
// and relationships live in two relational tables with their submitted
// attributes in jsonb columns; natural-key uniqueness is enforced by unique
// constraints covering both cardinality classes.
package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	pgxv5 "github.com/jackc/pgx/v5"

	"github.com/ecograph/backend/pkg/logger"
	"github.com/ecograph/backend/pkg/store"
)

type Store struct {
	pool *pgxpool.Pool
}

// NewStoreParams defines the connection parameters for creating a new Store.
type NewStoreParams struct {
	DatabaseURL string
}

// NewStore opens a connection pool against the graph database and verifies
// it is reachable. Table creation is handled by the migrations, not here.
func NewStore(ctx context.Context, params NewStoreParams) (*Store, error) {
	pool, err := pgxpool.New(ctx, params.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	logger.Info("[Store] Connected to Postgres graph store")
	return &Store{pool: pool}, nil
}

// WithTx runs fn inside one database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

// pgTx adapts one pgx transaction to the store.Tx interface.
type pgTx struct {
	tx pgxv5.Tx
}

// mapError translates driver errors into the store sentinels. Integrity
// violations (SQLSTATE class 23) become ErrConstraintViolation; anything
// that is not a server-reported error is treated as the database being
// unreachable.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23" {
			return fmt.Errorf("%w: %v", store.ErrConstraintViolation, err)
		}
		return err
	}
	return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
}
