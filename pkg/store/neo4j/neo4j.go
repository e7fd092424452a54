// Package neo4j implements the GraphStore interface on a Neo4j database.
// Entities are nodes labeled with their kind, relationships are typed edges;
// natural-key uniqueness is enforced with per-label constraints on name.
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"strings"

	neo4jv5 "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ecograph/backend/pkg/logger"
	"github.com/ecograph/backend/pkg/schema"
	"github.com/ecograph/backend/pkg/store"
)

type Store struct {
	driver neo4jv5.DriverWithContext
}

// NewStoreParams defines the connection parameters for creating a new Store.
type NewStoreParams struct {
	URI      string
	Username string
	Password string
}

// NewStore connects to Neo4j, verifies connectivity, and ensures the
// per-kind uniqueness constraints and id indexes exist.
func NewStore(ctx context.Context, params NewStoreParams) (*Store, error) {
	driver, err := neo4jv5.NewDriverWithContext(params.URI,
		neo4jv5.BasicAuth(params.Username, params.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}

	s := &Store{driver: driver}
	if err := s.ensureSchema(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, err
	}
	logger.Info("[Store] Connected to Neo4j", "uri", params.URI)
	return s, nil
}

// WithTx runs fn inside one explicit Neo4j transaction on a dedicated
// session.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	session := s.driver.NewSession(ctx, neo4jv5.SessionConfig{AccessMode: neo4jv5.AccessModeWrite})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return mapError(err)
	}
	if err := fn(&neoTx{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4jv5.SessionConfig{AccessMode: neo4jv5.AccessModeWrite})
	defer session.Close(ctx)

	for _, kind := range schema.EntityKinds() {
		prefix := strings.ToLower(kind)
		statements := []string{
			fmt.Sprintf("CREATE CONSTRAINT %s_name_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.name IS UNIQUE", prefix, kind),
			fmt.Sprintf("CREATE INDEX %s_id IF NOT EXISTS FOR (n:%s) ON (n.id)", prefix, kind),
		}
		for _, stmt := range statements {
			if _, err := session.Run(ctx, stmt, nil); err != nil {
				return fmt.Errorf("ensuring schema for %s: %w", kind, mapError(err))
			}
		}
	}
	return nil
}

// neoTx adapts one explicit Neo4j transaction to the store.Tx interface.
type neoTx struct {
	tx neo4jv5.ExplicitTransaction
}

func (t *neoTx) run(ctx context.Context, query string, params map[string]any) (neo4jv5.ResultWithContext, error) {
	result, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// mapError translates driver errors into the store sentinels: connectivity
// failures become ErrStoreUnavailable, schema constraint failures become
// ErrConstraintViolation.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if neo4jv5.IsConnectivityError(err) {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	var neoErr *neo4jv5.Neo4jError
	if errors.As(err, &neoErr) && strings.Contains(neoErr.Code, "ConstraintValidation") {
		return fmt.Errorf("%w: %v", store.ErrConstraintViolation, err)
	}
	return err
}
