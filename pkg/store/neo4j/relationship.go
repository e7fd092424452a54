package neo4j

import (
	"context"
	"fmt"
	"time"

	neo4jv5 "github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/store"
)

func (t *neoTx) GetRelationship(ctx context.Context, kind, sourceID, targetID, disambiguator string) (*common.Relationship, error) {
	query := fmt.Sprintf(`MATCH (a {id: $source_id})-[r:%s {disambiguator: $disambiguator}]->(b {id: $target_id})
		RETURN r`, kind)
	result, err := t.run(ctx, query, map[string]any{
		"source_id":     sourceID,
		"target_id":     targetID,
		"disambiguator": disambiguator,
	})
	if err != nil {
		return nil, err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, mapError(err)
		}
		return nil, fmt.Errorf("%w: %s %s→%s", store.ErrNotFound, kind, sourceID, targetID)
	}
	raw, _ := result.Record().Get("r")
	rel, ok := raw.(neo4jv5.Relationship)
	if !ok {
		return nil, fmt.Errorf("unexpected record shape for %s edge", kind)
	}
	out := relationshipFromProps(kind, sourceID, targetID, rel.Props)
	return &out, nil
}

func (t *neoTx) CreateRelationship(ctx context.Context, rel *common.Relationship) error {
	query := fmt.Sprintf(`MATCH (a {id: $source_id}), (b {id: $target_id})
		CREATE (a)-[r:%s]->(b) SET r = $props
		RETURN r.id AS id`, rel.Kind)
	result, err := t.run(ctx, query, map[string]any{
		"source_id": rel.SourceID,
		"target_id": rel.TargetID,
		"props":     relationshipProps(rel),
	})
	if err != nil {
		return err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return mapError(err)
		}
		return fmt.Errorf("%w: endpoints of %s edge", store.ErrNotFound, rel.Kind)
	}
	return nil
}

func (t *neoTx) UpdateRelationship(ctx context.Context, kind, id string, attrs map[string]any, now time.Time) error {
	query := fmt.Sprintf("MATCH ()-[r:%s {id: $id}]->() SET r += $attrs, r.updated_at = $now RETURN r.id AS id", kind)
	result, err := t.run(ctx, query, map[string]any{
		"id":    id,
		"attrs": attrs,
		"now":   now.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return mapError(err)
		}
		return fmt.Errorf("%w: %s id %q", store.ErrNotFound, kind, id)
	}
	return nil
}

func (t *neoTx) RelationshipsByTarget(ctx context.Context, kind, targetID string) ([]common.Relationship, error) {
	query := fmt.Sprintf(`MATCH (a)-[r:%s]->(b {id: $target_id})
		RETURN r, a.id AS source_id ORDER BY r.id`, kind)
	result, err := t.run(ctx, query, map[string]any{"target_id": targetID})
	if err != nil {
		return nil, err
	}
	var out []common.Relationship
	for result.Next(ctx) {
		record := result.Record()
		raw, _ := record.Get("r")
		rel, ok := raw.(neo4jv5.Relationship)
		if !ok {
			continue
		}
		out = append(out, relationshipFromProps(kind, stringFromRecord(record, "source_id"), targetID, rel.Props))
	}
	if err := result.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
