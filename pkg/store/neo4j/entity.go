package neo4j

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ecograph/backend/pkg/common"
	"github.com/ecograph/backend/pkg/store"
)

func (t *neoTx) GetEntity(ctx context.Context, kind, name string) (*common.Entity, error) {
	query := fmt.Sprintf("MATCH (n:%s {name: $name}) RETURN n", kind)
	result, err := t.run(ctx, query, map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, mapError(err)
		}
		return nil, fmt.Errorf("%w: %s %q", store.ErrNotFound, kind, name)
	}
	node, ok := nodeFromRecord(result.Record(), "n")
	if !ok {
		return nil, fmt.Errorf("unexpected record shape for %s %q", kind, name)
	}
	return entityFromProps(kind, node.Props), nil
}

func (t *neoTx) CreateEntity(ctx context.Context, entity *common.Entity) error {
	query := fmt.Sprintf("CREATE (n:%s) SET n = $props", entity.Kind)
	result, err := t.run(ctx, query, map[string]any{"props": entityProps(entity)})
	if err != nil {
		return err
	}
	if _, err := result.Consume(ctx); err != nil {
		return mapError(err)
	}
	return nil
}

func (t *neoTx) UpdateEntity(ctx context.Context, kind, id string, attrs map[string]any, now time.Time) error {
	query := fmt.Sprintf("MATCH (n:%s {id: $id}) SET n += $attrs, n.updated_at = $now RETURN n.id AS id", kind)
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

func (t *neoTx) ListEntities(ctx context.Context, kind string, limit, offset int) ([]common.Entity, error) {
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf("MATCH (n:%s) RETURN n ORDER BY n.name SKIP $offset", kind)
	params := map[string]any{"offset": offset}
	if limit > 0 {
		query += " LIMIT $limit"
		params["limit"] = limit
	}

	result, err := t.run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	var out []common.Entity
	for result.Next(ctx) {
		if node, ok := nodeFromRecord(result.Record(), "n"); ok {
			out = append(out, *entityFromProps(kind, node.Props))
		}
	}
	if err := result.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (t *neoTx) SearchEntities(ctx context.Context, query string, limit int) ([]common.Entity, error) {
	needle := strings.TrimSpace(query)
	if needle == "" {
		return nil, nil
	}

	cypher := `MATCH (n)
		WHERE n.name IS NOT NULL AND toLower(n.name) CONTAINS toLower($query)
		RETURN n, labels(n) AS kinds
		ORDER BY labels(n)[0], n.name`
	params := map[string]any{"query": needle}
	if limit > 0 {
		cypher += " LIMIT $limit"
		params["limit"] = limit
	}

	result, err := t.run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	var out []common.Entity
	for result.Next(ctx) {
		record := result.Record()
		kind := kindFromLabels(record, "kinds")
		node, ok := nodeFromRecord(record, "n")
		if kind == "" || !ok {
			continue
		}
		out = append(out, *entityFromProps(kind, node.Props))
	}
	if err := result.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}
