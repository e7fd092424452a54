package store

import (
	"context"
	"time"

	"github.com/ecograph/backend/pkg/common"
)

// GraphStore defines the interface for persisting and querying the ecosystem
// graph. It provides transactional access for natural-key upserts plus read
// operations for browsing, search, statistics, and the visualization
// projection. Adapters exist for Neo4j, Postgres, and an in-memory store
// used by tests and local development.
type GraphStore interface {
	// WithTx runs fn inside a single store transaction. The transaction
	// commits when fn returns nil and rolls back otherwise, so a rejected
	// submission leaves no partial write behind.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Tx is the unit-of-work view of the graph handed to WithTx callbacks.
//
// Entities are addressed by natural key (kind, name) on reads and by their
// surrogate ID on updates. Relationships are addressed by (kind, source ID,
// target ID, disambiguator); single-cardinality kinds pass an empty
// disambiguator. Lookups return ErrNotFound when nothing matches; writes
// that lose a uniqueness race return ErrConstraintViolation.
type Tx interface {
	GetEntity(ctx context.Context, kind, name string) (*common.Entity, error)
	CreateEntity(ctx context.Context, entity *common.Entity) error
	UpdateEntity(ctx context.Context, kind, id string, attrs map[string]any, now time.Time) error

	GetRelationship(ctx context.Context, kind, sourceID, targetID, disambiguator string) (*common.Relationship, error)
	CreateRelationship(ctx context.Context, rel *common.Relationship) error
	UpdateRelationship(ctx context.Context, kind, id string, attrs map[string]any, now time.Time) error
	RelationshipsByTarget(ctx context.Context, kind, targetID string) ([]common.Relationship, error)

	ListEntities(ctx context.Context, kind string, limit, offset int) ([]common.Entity, error)
	SearchEntities(ctx context.Context, query string, limit int) ([]common.Entity, error)
	CountEntities(ctx context.Context) (map[string]int64, error)
	CountRelationships(ctx context.Context) (map[string]int64, error)
	GraphData(ctx context.Context, limit int) (*common.GraphData, error)
}
