// Package graph implements the upsert coordinator: the single write path of
// the ecosystem graph. Every entity or relationship submission runs through
// stateless validation, endpoint resolution, and graph-state checks, then
// creates a new record or merges into the one matching its natural key. The
// whole pipeline executes inside one store transaction, so a rejected
// submission leaves no partial write behind.
package graph

import (
	"fmt"
	"time"

	"github.com/ecograph/backend/pkg/store"
	"github.com/ecograph/backend/pkg/validate"
)

// Coordinator is the main client for writing to the ecosystem graph.
// It owns the validator and the graph-state checks that need store access.
//
// A Coordinator should be created using NewCoordinator and is safe for
// concurrent use.
type Coordinator struct {
	store     store.GraphStore
	validator *validate.Validator
	now       func() time.Time
}

// NewCoordinatorParams defines the configuration parameters for creating
// a new Coordinator.
//
// Store is the graph store adapter all writes go through.
// Now supplies the clock used for timestamps and current-year bounds;
// it defaults to time.Now and is overridden in tests.
type NewCoordinatorParams struct {
	Store store.GraphStore
	Now   func() time.Time
}

// NewCoordinator creates and returns a new Coordinator configured with
// the provided parameters.
//
// Example:
//
//	params := graph.NewCoordinatorParams{
//		Store: neo4jStore,
//	}
//	coordinator, err := graph.NewCoordinator(params)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Returns a pointer to Coordinator and an error if initialization fails.
func NewCoordinator(params NewCoordinatorParams) (*Coordinator, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	c := &Coordinator{
		store:     params.Store,
		validator: validate.NewValidator(validate.NewValidatorParams{Now: now}),
		now:       now,
	}

	return c, nil
}
